package lockmgr

import (
	"context"
	"errors"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("lockmgr")

type registryImpl struct {
	entries *xsync.MapOf[string, *lockRecord]
	metrics *registryMetrics
}

// NewRegistry creates a new, empty lock registry.
// The registry metrics are registered in set. If set is nil a private set is used.
// Only one registry should be created per set.
func NewRegistry(set *metrics.Set) IPriorityLockRegistry {
	if set == nil {
		set = metrics.NewSet()
	}

	lr := &registryImpl{
		entries: xsync.NewMapOf[string, *lockRecord](),
	}
	lr.metrics = newRegistryMetrics(set, lr.Len)
	return lr
}

// --------------------------------------------------------------------------
// Interface Methods (docu see lockmgr.IPriorityLockRegistry)
// --------------------------------------------------------------------------

func (lr *registryImpl) Lock(ctx context.Context, key string, priority bool) (OwnerID, error) {
	owner := ownerFor(ctx)
	rec := lr.acquireRecord(key)

	// Wait for the mutex, then for any running reset to finish
	err := rec.lock(ctx, owner, nil)
	if err == nil {
		err = rec.awaitResetCleared(ctx, owner, priority)
	}
	if err != nil {
		lr.metrics.cancelled.Inc()
		Logger.Errorf("interrupted while waiting for the lock on device %s: %v", key, err)
		lr.releaseRecord(key, rec)
		return "", err
	}

	if priority {
		lr.metrics.acquiredPriority.Inc()
		lr.releaseRecord(key, rec)
		return owner, nil
	}

	// Normal access only passes the gate: the mutex is not kept
	rec.unlock(owner, false)
	lr.metrics.acquiredNormal.Inc()
	lr.releaseRecord(key, rec)
	return owner, nil
}

func (lr *registryImpl) Unlock(key string, owner OwnerID, priority bool) {
	rec, ok := lr.entries.Load(key)
	if !ok || !rec.unlock(owner, priority) {
		// A normal Lock holds nothing, so releasing it is expected to miss
		if priority {
			lr.metrics.unauthorized.Inc()
		}
		return
	}
	lr.tryReclaim(key)
}

func (lr *registryImpl) TryLockWithTimeout(ctx context.Context, key string, timeout time.Duration) (OwnerID, bool) {
	owner := ownerFor(ctx)
	rec := lr.acquireRecord(key)
	defer lr.releaseRecord(key, rec)

	expired := expiredNow
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	if err := rec.lock(ctx, owner, expired); err != nil {
		if errors.Is(err, errLockTimeout) {
			lr.metrics.timeouts.Inc()
			Logger.Infof("timeout while acquiring the lock on device %s", key)
		} else {
			lr.metrics.cancelled.Inc()
			Logger.Errorf("interrupted while waiting for the lock on device %s: %v", key, err)
		}
		return "", false
	}
	Logger.Infof("lock acquired with timeout on device %s", key)

	// A reset in progress always wins over timed access
	if rec.isResetInProgress() {
		rec.unlock(owner, false)
		lr.metrics.rejected.Inc()
		Logger.Infof("reset in progress on device %s, lock released", key)
		return "", false
	}

	lr.metrics.acquiredTry.Inc()
	return owner, true
}

func (lr *registryImpl) UnlockSafely(key string, owner OwnerID) {
	rec, ok := lr.entries.Load(key)
	if !ok || !rec.unlock(owner, false) {
		lr.metrics.unauthorized.Inc()
		return
	}
	Logger.Infof("lock safely released on device %s", key)
	lr.tryReclaim(key)
}

func (lr *registryImpl) Status(key string) (LockStatus, bool) {
	rec, ok := lr.entries.Load(key)
	if !ok {
		return LockStatus{}, false
	}
	return rec.status(), true
}

func (lr *registryImpl) Len() int {
	return lr.entries.Size()
}

// --------------------------------------------------------------------------
// Record lifecycle
// --------------------------------------------------------------------------

// acquireRecord returns the record of key, creating it if needed, and takes an
// in-flight reference on it. Lookup, insert and reference are a single atomic
// step with respect to tryReclaim, so a returned record is never discarded
// before releaseRecord is called.
func (lr *registryImpl) acquireRecord(key string) *lockRecord {
	rec, _ := lr.entries.Compute(key, func(rec *lockRecord, loaded bool) (*lockRecord, bool) {
		if !loaded {
			rec = newLockRecord()
			lr.metrics.created.Inc()
		}
		rec.refs.Add(1)
		return rec, false
	})
	return rec
}

// releaseRecord drops the reference taken by acquireRecord and tries to
// reclaim the record
func (lr *registryImpl) releaseRecord(key string, rec *lockRecord) {
	rec.refs.Add(-1)
	lr.tryReclaim(key)
}

// tryReclaim removes the record of key if it is idle. This is best-effort:
// a busy record is left in place and a later release will try again.
func (lr *registryImpl) tryReclaim(key string) {
	removed := false
	lr.entries.Compute(key, func(rec *lockRecord, loaded bool) (*lockRecord, bool) {
		if !loaded {
			return nil, true
		}
		if rec.idle() {
			removed = true
			return nil, true
		}
		return rec, false
	})

	if removed {
		lr.metrics.reclaimed.Inc()
		Logger.Debugf("lock removed for device %s", key)
	}
}
