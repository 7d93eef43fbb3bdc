package lockmgr

import (
	"context"
	"time"
)

// IPriorityLockRegistry defines the interface of the device lock registry.
// Every method is safe for concurrent use and is scoped to a single key.
type IPriorityLockRegistry interface {
	// Lock gates the caller on the given key.
	// With priority set, the caller waits until no other reset is running, marks
	// the key as being reset and returns holding the key exclusively.
	// Without priority, the caller only waits until no reset is running and
	// returns without holding anything.
	// The returned OwnerID must be passed to Unlock. The error is non-nil only
	// if ctx was cancelled while waiting, in which case nothing is held.
	Lock(ctx context.Context, key string, priority bool) (OwnerID, error)

	// Unlock releases what Lock established. It is a no-op if the key is unknown
	// or not held by owner. With priority set, the reset flag is cleared and all
	// parked callers are woken up before the key is released.
	// A normal Lock needs no Unlock. Calling Unlock(key, owner, false) after it
	// is harmless and is not counted as an unauthorized unlock.
	Unlock(key string, owner OwnerID, priority bool)

	// TryLockWithTimeout tries to hold the key exclusively within timeout.
	// It returns false if the timeout expired, ctx was cancelled or a reset is
	// in progress on the key. On success the caller must call UnlockSafely.
	// A timeout <= 0 makes a single non-blocking attempt.
	TryLockWithTimeout(ctx context.Context, key string, timeout time.Duration) (OwnerID, bool)

	// UnlockSafely releases a key held via TryLockWithTimeout. It is a no-op
	// if the key is unknown or not held by owner.
	UnlockSafely(key string, owner OwnerID)

	// Status returns a snapshot of the lock record of key.
	// The boolean is false if no record exists.
	Status(key string) (LockStatus, bool)

	// Len returns the number of lock records currently in the registry.
	Len() int
}

// LockStatus is a point in time view of a single lock record.
type LockStatus struct {
	// Owner is the current holder of the key (empty if not held)
	Owner OwnerID
	// Holds is the reentrant hold count of Owner
	Holds int
	// ResetInProgress is true while a priority holder owns the key
	ResetInProgress bool
	// Waiters is the number of callers queued for the key
	Waiters int
	// Refs is the number of in-flight operations referencing the record
	Refs int
}

// Held reports whether the key is currently held by anyone.
func (s LockStatus) Held() bool {
	return s.Holds > 0
}
