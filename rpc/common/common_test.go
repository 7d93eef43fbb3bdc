package common

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/devlock/lib/lockmgr"
	"github.com/lni/dragonboat/v4/logger"
)

func validConfig() ServerConfig {
	return ServerConfig{
		Endpoint:         "0.0.0.0:8080",
		Devices:          []string{"LENOVO", "XBOX"},
		PollInterval:     10 * time.Second,
		PollLockTimeout:  5 * time.Second,
		ResetDuration:    time.Second,
		SlowDevices:      map[string]time.Duration{"XBOX": 30 * time.Second, "IPHONE": 2 * time.Second},
		ResetFailureRate: 0.5,
		LogLevel:         "info",
	}
}

func TestServerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *ServerConfig)
		wantErr bool
	}{
		{name: "Valid", modify: func(c *ServerConfig) {}},
		{name: "NoEndpoint", modify: func(c *ServerConfig) { c.Endpoint = "" }, wantErr: true},
		{name: "ZeroInterval", modify: func(c *ServerConfig) { c.PollInterval = 0 }, wantErr: true},
		{name: "ZeroIntervalWithoutDevices", modify: func(c *ServerConfig) { c.PollInterval, c.Devices = 0, nil }},
		{name: "FailureRate", modify: func(c *ServerConfig) { c.ResetFailureRate = 1.5 }, wantErr: true},
		{name: "NegativeRate", modify: func(c *ServerConfig) { c.ResetRate = -1 }, wantErr: true},
		{name: "LogLevel", modify: func(c *ServerConfig) { c.LogLevel = "verbose" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.modify(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfigString(t *testing.T) {
	c := validConfig()
	out := c.String()

	for _, want := range []string{"RPC SERVER", "POLLER", "LENOVO, XBOX", "unlimited", "disabled"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output is missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Slow Device IPHONE") > strings.Index(out, "Slow Device XBOX") {
		t.Errorf("slow devices are not sorted:\n%s", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	for input, want := range map[string]logger.LogLevel{
		"debug": logger.DEBUG,
		"INFO":  logger.INFO,
		"warn":  logger.WARNING,
		"error": logger.ERROR,
	} {
		got, err := ParseLogLevel(input)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := ParseLogLevel("loud"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestMessageTypeJSON(t *testing.T) {
	data, err := json.Marshal(NewTryResetRequest("XBOX", 5000))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"msg_type":"tryReset"`) {
		t.Errorf("message type not encoded as string: %s", data)
	}

	var msg Message
	if err := json.Unmarshal([]byte(`{"msg_type":"reboot"}`), &msg); err == nil {
		t.Errorf("expected error for unknown message type")
	}
}

func TestResponseFactories(t *testing.T) {
	resp := NewResetResponse("RESET OF (XBOX) WAS NO OK", errors.New("device reset failed"))
	if resp.Ok || resp.Err != "device reset failed" || resp.Result == "" {
		t.Errorf("unexpected reset response: %+v", resp)
	}

	status := NewStatusResponse(lockmgr.LockStatus{Owner: "a", Holds: 2, ResetInProgress: true, Waiters: 3}, true)
	if !status.Ok || !status.Held || !status.Reset || status.Waiters != 3 {
		t.Errorf("unexpected status response: %+v", status)
	}
}
