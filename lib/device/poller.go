package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	"golang.org/x/sync/errgroup"
)

// PollerConfig configures a Poller
type PollerConfig struct {
	// Devices are polled on every round
	Devices []string
	// Interval between the start of two rounds
	Interval time.Duration
	// LockTimeout is the maximum time a round waits for the lock of a device
	LockTimeout time.Duration
}

// PollResult is the outcome of polling a single device
type PollResult struct {
	Device   string
	Acquired bool
	Result   Result
	Err      error
}

// Poller periodically resets a fixed set of devices with normal access.
// Every device is polled independently, a device that cannot be locked in
// time is skipped until the next round.
type Poller struct {
	coordinator *Coordinator
	config      PollerConfig
	skipped     gometrics.Counter
	polled      gometrics.Counter
}

// NewPoller creates a new poller. Poll statistics are written to stats
// (nil uses the default registry).
func NewPoller(coordinator *Coordinator, config PollerConfig, stats gometrics.Registry) *Poller {
	if stats == nil {
		stats = gometrics.DefaultRegistry
	}
	return &Poller{
		coordinator: coordinator,
		config:      config,
		skipped:     gometrics.GetOrRegisterCounter("device.poll.skipped", stats),
		polled:      gometrics.GetOrRegisterCounter("device.poll.reset", stats),
	}
}

// Run polls all devices every Interval, starting immediately, until ctx is
// done. It returns once all polls that were started have finished.
func (p *Poller) Run(ctx context.Context) error {
	if p.config.Interval <= 0 {
		return fmt.Errorf("invalid poll interval %s", p.config.Interval)
	}
	g, gctx := errgroup.WithContext(ctx)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		Logger.Infof("*********************** START POLLING ************************")
		for _, device := range p.config.Devices {
			g.Go(func() error {
				p.pollDevice(gctx, device)
				return nil
			})
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return g.Wait()
		}
	}
}

// PollOnce polls all devices once and waits for the results.
// The results are in the order of the configured devices.
func (p *Poller) PollOnce(ctx context.Context) []PollResult {
	results := make([]PollResult, len(p.config.Devices))

	var g errgroup.Group
	for i, device := range p.config.Devices {
		g.Go(func() error {
			results[i] = p.pollDevice(ctx, device)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// pollDevice resets a single device if its lock can be acquired in time
func (p *Poller) pollDevice(ctx context.Context, device string) (res PollResult) {
	res.Device = device
	defer func() {
		if r := recover(); r != nil {
			Logger.Errorf("error while polling device %s: %v", device, r)
		}
	}()

	Logger.Infof("start polling device %s", device)
	result, err := p.coordinator.TryReset(ctx, device, p.config.LockTimeout)
	if errors.Is(err, ErrLockNotAcquired) {
		p.skipped.Inc(1)
		Logger.Infof("unable to acquire the lock within the timeout for device %s", device)
		return res
	}

	p.polled.Inc(1)
	res.Acquired, res.Result, res.Err = true, result, err
	if err != nil && !errors.Is(err, ErrResetFailed) {
		Logger.Errorf("error while polling device %s: %v", device, err)
		return res
	}
	Logger.Infof("%s", result)
	return res
}
