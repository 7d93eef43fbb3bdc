package lockmgr

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestRecordReentrant verifies that the same owner can lock repeatedly and
// that the mutex is only free after the matching number of unlocks
func TestRecordReentrant(t *testing.T) {
	r := newLockRecord()
	ctx := context.Background()

	if err := r.lock(ctx, "a", nil); err != nil {
		t.Fatalf("first lock failed: %v", err)
	}
	if err := r.lock(ctx, "a", nil); err != nil {
		t.Fatalf("reentrant lock failed: %v", err)
	}
	if got := r.status().Holds; got != 2 {
		t.Fatalf("expected 2 holds, got %d", got)
	}

	if !r.unlock("a", false) {
		t.Fatalf("unlock by owner should succeed")
	}
	if err := r.lock(ctx, "b", expiredNow); !errors.Is(err, errLockTimeout) {
		t.Fatalf("expected timeout for other owner, got %v", err)
	}

	if !r.unlock("a", false) {
		t.Fatalf("second unlock by owner should succeed")
	}
	if err := r.lock(ctx, "b", expiredNow); err != nil {
		t.Fatalf("lock after full release failed: %v", err)
	}
}

// TestRecordUnlockByOther verifies that only the holder may unlock
func TestRecordUnlockByOther(t *testing.T) {
	r := newLockRecord()
	if r.unlock("a", false) {
		t.Errorf("unlock of free record should fail")
	}

	_ = r.lock(context.Background(), "a", nil)
	if r.unlock("b", true) {
		t.Errorf("unlock by non-holder should fail")
	}
	if st := r.status(); st.Owner != "a" || st.Holds != 1 {
		t.Errorf("holder state changed by foreign unlock: %+v", st)
	}
}

// TestRecordLockCancelled verifies that a cancelled waiter leaves the queue
func TestRecordLockCancelled(t *testing.T) {
	r := newLockRecord()
	_ = r.lock(context.Background(), "a", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.lock(ctx, "b", nil) }()

	waitFor(t, func() bool { return r.status().Waiters == 1 })
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("cancelled waiter did not return")
	}

	if st := r.status(); st.Waiters != 0 || st.Owner != "a" {
		t.Errorf("unexpected state after cancel: %+v", st)
	}
}

// TestRecordAwaitResetCleared verifies that a parked caller gives up the mutex
// and resumes holding it once the reset flag is cleared
func TestRecordAwaitResetCleared(t *testing.T) {
	r := newLockRecord()
	ctx := context.Background()

	// raise the reset flag without keeping the mutex, as a transition would
	r.guard.Lock()
	r.resetInProgress = true
	r.guard.Unlock()

	_ = r.lock(ctx, "waiter", nil)
	done := make(chan error, 1)
	go func() { done <- r.awaitResetCleared(ctx, "waiter", false) }()

	// the waiter must release the mutex while parked
	waitFor(t, func() bool { return !r.status().Held() })

	_ = r.lock(ctx, "resetter", nil)
	if !r.unlock("resetter", true) {
		t.Fatalf("resetter unlock failed")
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("await failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("parked caller was not woken up")
	}

	if st := r.status(); st.Owner != "waiter" || st.Holds != 1 || st.ResetInProgress {
		t.Errorf("unexpected state after wakeup: %+v", st)
	}
}

// TestRecordAwaitCancelledRestoresOuterHolds verifies that outer reentrant
// holds survive a cancelled wait
func TestRecordAwaitCancelledRestoresOuterHolds(t *testing.T) {
	r := newLockRecord()
	_ = r.lock(context.Background(), "a", nil)
	_ = r.lock(context.Background(), "a", nil)

	r.guard.Lock()
	r.resetInProgress = true
	r.guard.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.awaitResetCleared(ctx, "a", false); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	if st := r.status(); st.Owner != "a" || st.Holds != 1 {
		t.Errorf("expected the outer hold to be restored, got %+v", st)
	}
}

// waitFor polls cond until it holds or fails the test after a second
func waitFor(t testing.TB, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
