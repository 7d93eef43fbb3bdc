package device

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

var (
	// ErrResetFailed is returned when a reset ran but the device did not come back
	ErrResetFailed = errors.New("device reset failed")
	// ErrLockNotAcquired is returned when the device could not be locked in time
	ErrLockNotAcquired = errors.New("device lock not acquired")
)

// Outcome is the final state reported by a reset
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESSFULLY"
	OutcomeFailed  Outcome = "NO OK"
	OutcomeUnknown Outcome = "UNKNOWN"
)

// Result describes a single reset of a device
type Result struct {
	Device   string
	Outcome  Outcome
	Duration time.Duration
}

// String renders the result the way it is logged and returned to clients
func (r Result) String() string {
	return fmt.Sprintf("RESET OF (%s) WAS %s", r.Device, r.Outcome)
}

// IResetter performs the actual reset of a device. Implementations may take
// a long time and must return early once ctx is done.
type IResetter interface {
	// Reset resets the device with the given name.
	// It returns ErrResetFailed if the device did not come back and ctx.Err()
	// if the reset was interrupted.
	Reset(ctx context.Context, device string) (Result, error)
}

// FakeResetConfig configures the simulated reset
type FakeResetConfig struct {
	// Default is the time a reset takes if the device is not listed in SlowDevices
	Default time.Duration
	// SlowDevices maps upper case device names to their reset duration
	SlowDevices map[string]time.Duration
	// FailureRate is the probability (0..1) that a reset reports NO OK
	FailureRate float64
}

// DefaultFakeResetConfig returns the configuration used by the server by default
func DefaultFakeResetConfig() FakeResetConfig {
	return FakeResetConfig{
		Default:     time.Second,
		SlowDevices: map[string]time.Duration{"XBOX": 30 * time.Second},
		FailureRate: 0.5,
	}
}

// NewFakeResetter creates a resetter that only waits and reports a random outcome.
// Reset durations are recorded as timers in stats (nil uses the default registry).
func NewFakeResetter(config FakeResetConfig, stats gometrics.Registry) IResetter {
	if stats == nil {
		stats = gometrics.DefaultRegistry
	}

	slow := make(map[string]time.Duration, len(config.SlowDevices))
	for name, d := range config.SlowDevices {
		slow[strings.ToUpper(name)] = d
	}
	config.SlowDevices = slow

	return &fakeResetter{
		config: config,
		timers: map[Outcome]gometrics.Timer{
			OutcomeSuccess: gometrics.GetOrRegisterTimer("device.reset.success", stats),
			OutcomeFailed:  gometrics.GetOrRegisterTimer("device.reset.failed", stats),
			OutcomeUnknown: gometrics.GetOrRegisterTimer("device.reset.unknown", stats),
		},
	}
}

type fakeResetter struct {
	config FakeResetConfig
	timers map[Outcome]gometrics.Timer
}

// --------------------------------------------------------------------------
// Interface Methods (docu see device.IResetter)
// --------------------------------------------------------------------------

func (f *fakeResetter) Reset(ctx context.Context, device string) (Result, error) {
	start := time.Now()
	res := Result{Device: device}

	wait := f.config.Default
	if d, ok := f.config.SlowDevices[strings.ToUpper(device)]; ok {
		wait = d
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	var err error
	select {
	case <-timer.C:
		if rand.Float64() < f.config.FailureRate {
			res.Outcome, err = OutcomeFailed, ErrResetFailed
		} else {
			res.Outcome = OutcomeSuccess
		}
	case <-ctx.Done():
		res.Outcome, err = OutcomeUnknown, ctx.Err()
	}

	res.Duration = time.Since(start)
	f.timers[res.Outcome].Update(res.Duration)
	return res, err
}
