package lockmgr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// errLockTimeout is returned by lockRecord.lock when the expiry channel fires
var errLockTimeout = errors.New("lockmgr: timed out waiting for lock")

// expiredNow is a closed channel used for non-blocking acquisition attempts
var expiredNow = func() <-chan time.Time {
	ch := make(chan time.Time)
	close(ch)
	return ch
}()

// lockRecord is the state kept for a single key.
//
// It combines a reentrant, owner-aware mutex with a broadcast condition used to
// park callers while a reset is in progress. All fields are protected by guard.
// The broadcast primitives are channels that get closed and replaced, so a
// waiter that captured the channel under guard can never miss a wakeup.
type lockRecord struct {
	guard sync.Mutex

	owner           OwnerID
	holds           int
	waiters         int
	resetInProgress bool

	// released is closed every time the mutex becomes free
	released chan struct{}
	// resetCleared is closed every time a priority holder clears the reset flag
	resetCleared chan struct{}

	// refs counts in-flight registry operations using this record.
	// It is only incremented while the registry map entry is locked.
	refs atomic.Int32
}

func newLockRecord() *lockRecord {
	return &lockRecord{
		released:     make(chan struct{}),
		resetCleared: make(chan struct{}),
	}
}

// lock acquires the mutex for owner. It blocks until the mutex is free, ctx is
// done or expired fires. A nil expired channel waits without deadline.
// On error nothing is held.
func (r *lockRecord) lock(ctx context.Context, owner OwnerID, expired <-chan time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.guard.Lock()
	for {
		if r.holds == 0 {
			r.owner, r.holds = owner, 1
			r.guard.Unlock()
			return nil
		}
		if r.owner == owner {
			r.holds++
			r.guard.Unlock()
			return nil
		}

		// queue up until the current holder releases
		r.waiters++
		wake := r.released
		r.guard.Unlock()

		var err error
		select {
		case <-wake:
		case <-ctx.Done():
			err = ctx.Err()
		case <-expired:
			err = errLockTimeout
		}

		r.guard.Lock()
		r.waiters--
		if err != nil {
			r.guard.Unlock()
			return err
		}
	}
}

// unlock releases one hold of owner. If clearReset is set the reset flag is
// cleared and every caller parked in awaitResetCleared is woken up first.
// It returns false if owner does not hold the mutex.
func (r *lockRecord) unlock(owner OwnerID, clearReset bool) bool {
	r.guard.Lock()
	defer r.guard.Unlock()

	if r.holds == 0 || r.owner != owner {
		return false
	}
	if clearReset {
		r.resetInProgress = false
		close(r.resetCleared)
		r.resetCleared = make(chan struct{})
	}
	r.releaseLocked()
	return true
}

// releaseLocked drops a single hold. Must be called with guard held.
func (r *lockRecord) releaseLocked() {
	r.holds--
	if r.holds > 0 {
		return
	}
	r.owner = ""
	close(r.released)
	r.released = make(chan struct{})
}

// awaitResetCleared must be called by the current holder. It parks the caller
// while a reset is in progress, giving up the mutex while parked, and returns
// holding the mutex once the flag is clear. If claim is set the flag is raised
// in the same step the caller observed it clear.
//
// If ctx is done while parked the caller returns with ctx.Err() and without the
// hold it entered with. Outer reentrant holds are restored before returning.
func (r *lockRecord) awaitResetCleared(ctx context.Context, owner OwnerID, claim bool) error {
	for {
		r.guard.Lock()
		if !r.resetInProgress {
			if claim {
				r.resetInProgress = true
			}
			r.guard.Unlock()
			return nil
		}

		// park: give up every hold and remember how many there were
		holds := r.holds
		cleared := r.resetCleared
		r.holds = 1
		r.releaseLocked()
		r.guard.Unlock()

		select {
		case <-cleared:
		case <-ctx.Done():
			r.restoreOuterHolds(ctx, owner, holds-1)
			return ctx.Err()
		}

		if err := r.lock(ctx, owner, nil); err != nil {
			r.restoreOuterHolds(ctx, owner, holds-1)
			return err
		}
		r.guard.Lock()
		r.holds = holds
		r.guard.Unlock()
	}
}

// restoreOuterHolds reacquires the mutex for holds that were taken before the
// cancelled call. It ignores cancellation of ctx.
func (r *lockRecord) restoreOuterHolds(ctx context.Context, owner OwnerID, holds int) {
	if holds <= 0 {
		return
	}
	_ = r.lock(context.WithoutCancel(ctx), owner, nil)
	r.guard.Lock()
	r.holds = holds
	r.guard.Unlock()
}

// isResetInProgress reports the reset flag
func (r *lockRecord) isResetInProgress() bool {
	r.guard.Lock()
	defer r.guard.Unlock()
	return r.resetInProgress
}

// idle reports whether the record may be dropped from the registry:
// no holder, no queued waiter, no reset and no in-flight operation.
func (r *lockRecord) idle() bool {
	r.guard.Lock()
	defer r.guard.Unlock()
	return r.holds == 0 && r.waiters == 0 && !r.resetInProgress && r.refs.Load() == 0
}

func (r *lockRecord) status() LockStatus {
	r.guard.Lock()
	defer r.guard.Unlock()
	return LockStatus{
		Owner:           r.owner,
		Holds:           r.holds,
		ResetInProgress: r.resetInProgress,
		Waiters:         r.waiters,
		Refs:            int(r.refs.Load()),
	}
}
