package device

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/devlock/lib/lockmgr"
	gometrics "github.com/rcrowley/go-metrics"
)

// fastResetConfig returns a reset configuration suited for tests
func fastResetConfig(failureRate float64) FakeResetConfig {
	return FakeResetConfig{
		Default:     5 * time.Millisecond,
		SlowDevices: map[string]time.Duration{"xbox": 200 * time.Millisecond},
		FailureRate: failureRate,
	}
}

// blockingResetter blocks every reset until release is closed
type blockingResetter struct {
	started chan string
	release chan struct{}
}

func (b *blockingResetter) Reset(ctx context.Context, device string) (Result, error) {
	b.started <- device
	select {
	case <-b.release:
		return Result{Device: device, Outcome: OutcomeSuccess}, nil
	case <-ctx.Done():
		return Result{Device: device, Outcome: OutcomeUnknown}, ctx.Err()
	}
}

type panicResetter struct{}

func (panicResetter) Reset(context.Context, string) (Result, error) {
	panic("device on fire")
}

func TestFakeResetter(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		stats := gometrics.NewRegistry()
		r := NewFakeResetter(fastResetConfig(0), stats)

		res, err := r.Reset(context.Background(), "LENOVO")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Outcome != OutcomeSuccess || res.String() != "RESET OF (LENOVO) WAS SUCCESSFULLY" {
			t.Errorf("unexpected result: %s", res)
		}
		if n := gometrics.GetOrRegisterTimer("device.reset.success", stats).Count(); n != 1 {
			t.Errorf("expected 1 timed reset, got %d", n)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		r := NewFakeResetter(fastResetConfig(1), gometrics.NewRegistry())

		res, err := r.Reset(context.Background(), "IPHONE")
		if !errors.Is(err, ErrResetFailed) {
			t.Fatalf("expected ErrResetFailed, got %v", err)
		}
		if res.String() != "RESET OF (IPHONE) WAS NO OK" {
			t.Errorf("unexpected result: %s", res)
		}
	})

	t.Run("SlowDeviceCancelled", func(t *testing.T) {
		r := NewFakeResetter(fastResetConfig(0), gometrics.NewRegistry())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		res, err := r.Reset(ctx, "Xbox")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
		if res.Outcome != OutcomeUnknown {
			t.Errorf("expected unknown outcome, got %s", res.Outcome)
		}
		if time.Since(start) >= 200*time.Millisecond {
			t.Errorf("cancelled reset ran to completion")
		}
	})
}

// TestPriorityResetBlocksNormalAccess verifies that timed resets are refused
// while a priority reset runs and succeed afterwards
func TestPriorityResetBlocksNormalAccess(t *testing.T) {
	registry := lockmgr.NewRegistry(nil)
	blocking := &blockingResetter{started: make(chan string, 1), release: make(chan struct{})}
	c := NewCoordinator(registry, blocking)

	done := make(chan error, 1)
	go func() {
		_, err := c.ResetWithPriority(context.Background(), "XBOX")
		done <- err
	}()
	<-blocking.started

	fast := NewCoordinator(registry, NewFakeResetter(fastResetConfig(0), gometrics.NewRegistry()))
	if _, err := fast.TryReset(context.Background(), "XBOX", 20*time.Millisecond); !errors.Is(err, ErrLockNotAcquired) {
		t.Fatalf("expected ErrLockNotAcquired during priority reset, got %v", err)
	}

	close(blocking.release)
	if err := <-done; err != nil {
		t.Fatalf("priority reset failed: %v", err)
	}

	if _, err := fast.TryReset(context.Background(), "XBOX", 20*time.Millisecond); err != nil {
		t.Fatalf("timed reset after priority reset failed: %v", err)
	}
	if n := registry.Len(); n != 0 {
		t.Errorf("expected empty registry, got %d records", n)
	}
}

// TestPriorityResetReleasesOnPanic verifies that the lock is released even if
// the reset panics
func TestPriorityResetReleasesOnPanic(t *testing.T) {
	registry := lockmgr.NewRegistry(nil)
	c := NewCoordinator(registry, panicResetter{})

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("expected the reset to panic")
			}
		}()
		_, _ = c.ResetWithPriority(context.Background(), "LENOVO")
	}()

	if _, ok := registry.Status("LENOVO"); ok {
		t.Fatalf("lock record survived the panic")
	}
	owner, ok := registry.TryLockWithTimeout(context.Background(), "LENOVO", 0)
	if !ok {
		t.Fatalf("device still locked after the panic")
	}
	registry.UnlockSafely("LENOVO", owner)
}

// TestPriorityResetCancelled verifies that a cancelled priority reset reports
// the cancellation and leaves the holder untouched
func TestPriorityResetCancelled(t *testing.T) {
	registry := lockmgr.NewRegistry(nil)
	owner, _ := registry.Lock(context.Background(), "XBOX", true)
	defer registry.Unlock("XBOX", owner, true)

	c := NewCoordinator(registry, NewFakeResetter(fastResetConfig(0), gometrics.NewRegistry()))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := c.ResetWithPriority(ctx, "XBOX")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if res.Outcome != OutcomeUnknown {
		t.Errorf("expected unknown outcome, got %s", res.Outcome)
	}
	if st, _ := registry.Status("XBOX"); st.Owner != owner || !st.ResetInProgress {
		t.Errorf("holder state changed: %+v", st)
	}
}

// TestPollOnceSkipsBusyDevices verifies that busy devices are skipped while
// the others are reset
func TestPollOnceSkipsBusyDevices(t *testing.T) {
	registry := lockmgr.NewRegistry(nil)
	stats := gometrics.NewRegistry()
	c := NewCoordinator(registry, NewFakeResetter(fastResetConfig(0), stats))
	p := NewPoller(c, PollerConfig{
		Devices:     []string{"LENOVO", "IPHONE", "XBOX"},
		Interval:    time.Hour,
		LockTimeout: 20 * time.Millisecond,
	}, stats)

	owner, _ := registry.Lock(context.Background(), "XBOX", true)
	results := p.PollOnce(context.Background())
	registry.Unlock("XBOX", owner, true)

	want := map[string]bool{"LENOVO": true, "IPHONE": true, "XBOX": false}
	for _, r := range results {
		if r.Acquired != want[r.Device] {
			t.Errorf("device %s: acquired=%v, want %v", r.Device, r.Acquired, want[r.Device])
		}
		if r.Acquired && (r.Err != nil || r.Result.Outcome != OutcomeSuccess) {
			t.Errorf("device %s: unexpected result %s (%v)", r.Device, r.Result, r.Err)
		}
	}
	if n := gometrics.GetOrRegisterCounter("device.poll.skipped", stats).Count(); n != 1 {
		t.Errorf("expected 1 skipped poll, got %d", n)
	}
	if n := registry.Len(); n != 0 {
		t.Errorf("expected empty registry, got %d records", n)
	}
}

// TestPollerRun verifies that the poller polls repeatedly and stops with its context
func TestPollerRun(t *testing.T) {
	registry := lockmgr.NewRegistry(nil)
	stats := gometrics.NewRegistry()
	c := NewCoordinator(registry, NewFakeResetter(fastResetConfig(0), stats))
	p := NewPoller(c, PollerConfig{
		Devices:     []string{"LENOVO", "IPHONE"},
		Interval:    10 * time.Millisecond,
		LockTimeout: 5 * time.Millisecond,
	}, stats)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	var runErr error
	go func() {
		defer wg.Done()
		runErr = p.Run(ctx)
	}()

	polled := gometrics.GetOrRegisterCounter("device.poll.reset", stats)
	deadline := time.Now().Add(2 * time.Second)
	for polled.Count() < 4 {
		if time.Now().After(deadline) {
			t.Fatalf("poller did not run repeatedly, %d polls", polled.Count())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	wg.Wait()
	if runErr != nil {
		t.Errorf("unexpected error from Run: %v", runErr)
	}
	if n := registry.Len(); n != 0 {
		t.Errorf("expected empty registry, got %d records", n)
	}
}

func TestPollerInvalidInterval(t *testing.T) {
	p := NewPoller(NewCoordinator(lockmgr.NewRegistry(nil), panicResetter{}), PollerConfig{}, gometrics.NewRegistry())
	if err := p.Run(context.Background()); err == nil {
		t.Errorf("expected an error for a zero interval")
	}
}
