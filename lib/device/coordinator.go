package device

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/devlock/lib/lockmgr"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("device")

// Coordinator runs resets of devices under the locks of a registry
type Coordinator struct {
	registry lockmgr.IPriorityLockRegistry
	resetter IResetter
}

// NewCoordinator creates a new coordinator for the given registry and resetter
func NewCoordinator(registry lockmgr.IPriorityLockRegistry, resetter IResetter) *Coordinator {
	return &Coordinator{
		registry: registry,
		resetter: resetter,
	}
}

// ResetWithPriority resets the device with priority over every other access.
// It waits for any running priority reset of the device, then blocks all other
// access until the reset is done. The lock is released on every exit path.
func (c *Coordinator) ResetWithPriority(ctx context.Context, device string) (Result, error) {
	owner, err := c.registry.Lock(ctx, device, true)
	if err != nil {
		return Result{Device: device, Outcome: OutcomeUnknown}, fmt.Errorf("waiting for device %s: %w", device, err)
	}
	defer c.registry.Unlock(device, owner, true)

	Logger.Infof("HIGH PRIORITY RESET FOR %s", device)
	return c.resetter.Reset(ctx, device)
}

// TryReset resets the device if it can be locked within timeout and no
// priority reset is running. Otherwise ErrLockNotAcquired is returned.
func (c *Coordinator) TryReset(ctx context.Context, device string, timeout time.Duration) (Result, error) {
	owner, ok := c.registry.TryLockWithTimeout(ctx, device, timeout)
	if !ok {
		return Result{Device: device, Outcome: OutcomeUnknown}, ErrLockNotAcquired
	}
	defer c.registry.UnlockSafely(device, owner)

	return c.resetter.Reset(ctx, device)
}
