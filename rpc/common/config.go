package common

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of the devlock server.
type ServerConfig struct {
	// RPC api settings
	Endpoint string

	// Address of the metrics and stats endpoint (empty to disable)
	MetricsEndpoint string

	// Maximum time a reset request may take (0 for no limit)
	TimeoutSecond int64

	// Admission of priority resets (requests per second, 0 for no limit)
	ResetRate  float64
	ResetBurst int

	// Poller settings
	Devices         []string
	PollInterval    time.Duration
	PollLockTimeout time.Duration

	// Simulated reset settings
	ResetDuration    time.Duration
	SlowDevices      map[string]time.Duration
	ResetFailureRate float64

	// Logging configuration
	LogLevel string
}

// Validate checks the configuration for values the server cannot run with
func (c *ServerConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if len(c.Devices) > 0 && c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.ResetFailureRate < 0 || c.ResetFailureRate > 1 {
		return fmt.Errorf("reset failure rate must be between 0 and 1, got %v", c.ResetFailureRate)
	}
	if c.ResetRate < 0 {
		return fmt.Errorf("reset rate must not be negative, got %v", c.ResetRate)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	if c.ResetRate > 0 {
		addField("Reset Rate", fmt.Sprintf("%.2f/sec (burst %d)", c.ResetRate, c.ResetBurst))
	} else {
		addField("Reset Rate", "unlimited")
	}
	if c.MetricsEndpoint != "" {
		addField("Metrics Endpoint", c.MetricsEndpoint)
	} else {
		addField("Metrics Endpoint", "disabled")
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	// Poller
	addSection("Poller")
	addField("Devices", strings.Join(c.Devices, ", "))
	addField("Interval", c.PollInterval.String())
	addField("Lock Timeout", c.PollLockTimeout.String())

	// Simulated reset
	addSection("Reset")
	addField("Duration", c.ResetDuration.String())
	addField("Failure Rate", strconv.FormatFloat(c.ResetFailureRate, 'f', 2, 64))

	// Sort keys for consistent output
	var names []string
	for name := range c.SlowDevices {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		addField("Slow Device "+name, c.SlowDevices[name].String())
	}
	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints     []string
	TimeoutSecond int
	RetryCount    int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(int(math.Max(1, float64(c.RetryCount)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
