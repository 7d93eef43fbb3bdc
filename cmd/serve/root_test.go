package serve

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseSlowDevices(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]time.Duration
		wantErr bool
	}{
		{name: "Empty", input: "", want: map[string]time.Duration{}},
		{name: "Default", input: "XBOX=30s", want: map[string]time.Duration{"XBOX": 30 * time.Second}},
		{
			name:  "MixedCaseAndSpaces",
			input: " xbox = 30s , Ps5=1m500ms,",
			want:  map[string]time.Duration{"XBOX": 30 * time.Second, "PS5": time.Minute + 500*time.Millisecond},
		},
		{name: "MissingDuration", input: "XBOX", wantErr: true},
		{name: "MissingName", input: "=30s", wantErr: true},
		{name: "InvalidDuration", input: "XBOX=thirty", wantErr: true},
		{name: "NegativeDuration", input: "XBOX=-1s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSlowDevices(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("slow devices mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
