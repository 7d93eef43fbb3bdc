// Package device contains the collaborators that use the lock registry of the
// lockmgr package to reset devices.
//
//   - IResetter performs the reset itself. NewFakeResetter returns a simulated
//     reset that waits for a configurable time and reports a random outcome.
//   - Coordinator runs resets under the registry locks, either with priority
//     (ResetWithPriority) or with timed normal access (TryReset).
//   - Poller resets a fixed set of devices on a fixed interval using timed
//     normal access, skipping devices that are busy.
package device
