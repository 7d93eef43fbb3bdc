// Package lockmgr implements a process local, key scoped lock registry with
// two access tiers: normal access and high-priority "reset" access. It is used
// to coordinate work on devices, where the key is the device name.
//
// The registry keeps one lock record per key. Records are created lazily on
// first use and reclaimed again once nobody holds, waits for or references
// them. Different keys are fully independent: no lock is ever held across the
// operations of two keys.
//
// Core Functionality:
//   - Priority (reset) access that blocks every other caller of the key
//   - Normal access that only waits for a running reset to finish
//   - Timed try-lock that grants exclusive access for normal work
//   - Ownership checked release that silently ignores non-holders
//   - Best-effort reclamation of idle records
//
// Access Tiers:
//
//	The two tiers are deliberately asymmetric:
//
//	- Lock(ctx, key, true) waits until no other reset runs on key, raises the
//	  reset flag and returns holding the key. It is released with
//	  Unlock(key, owner, true), which clears the flag and wakes every parked
//	  caller before releasing the key.
//
//	- Lock(ctx, key, false) takes the key only for the duration of the reset
//	  check and releases it again before returning. It is a gate, not a lock:
//	  two normal callers may proceed at the same time.
//
//	- TryLockWithTimeout(ctx, key, d) is the normal tier that does hold the
//	  key across the caller's work. It is rejected (returns false and holds
//	  nothing) if a reset is in progress, and must be released with
//	  UnlockSafely(key, owner).
//
// Ownership:
//
//	Goroutines have no identity, so every acquisition is done on behalf of an
//	OwnerID. Callers may attach an owner to the context with WithOwner, which
//	makes repeated acquisitions by the same owner reentrant. Without an
//	attached owner every acquisition uses a fresh one.
//
// Reclamation:
//
//	Every operation takes an in-flight reference on the record inside the same
//	atomic map update that looks the record up (xsync.MapOf.Compute). A record
//	is only removed, again inside an atomic map update, when it has no holder,
//	no queued waiter, no reset in progress and no in-flight reference. A caller
//	can therefore never end up holding a record that was already discarded.
//
// Cancellation:
//
//	Every wait observes the context passed in. A cancelled caller holds
//	nothing afterwards and never raises the reset flag.
//
// Usage Example:
//
//	registry := lockmgr.NewRegistry(nil)
//
//	// High priority reset
//	owner, err := registry.Lock(ctx, "XBOX", true)
//	if err != nil {
//	    return err
//	}
//	defer registry.Unlock("XBOX", owner, true)
//
//	// Timed normal access
//	if owner, ok := registry.TryLockWithTimeout(ctx, "XBOX", 5*time.Second); ok {
//	    defer registry.UnlockSafely("XBOX", owner)
//	    // ...
//	}
package lockmgr
