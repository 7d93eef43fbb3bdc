package lockmgr

import (
	"github.com/VictoriaMetrics/metrics"
)

// registryMetrics holds the counters exported by a registry
type registryMetrics struct {
	acquiredNormal   *metrics.Counter
	acquiredPriority *metrics.Counter
	acquiredTry      *metrics.Counter
	timeouts         *metrics.Counter
	rejected         *metrics.Counter
	cancelled        *metrics.Counter
	unauthorized     *metrics.Counter
	created          *metrics.Counter
	reclaimed        *metrics.Counter
}

// newRegistryMetrics registers the registry metrics in set.
// size is sampled whenever the set is written out.
func newRegistryMetrics(set *metrics.Set, size func() int) *registryMetrics {
	set.GetOrCreateGauge(`devlock_lock_records`, func() float64 {
		return float64(size())
	})

	return &registryMetrics{
		acquiredNormal:   set.GetOrCreateCounter(`devlock_lock_acquired_total{mode="normal"}`),
		acquiredPriority: set.GetOrCreateCounter(`devlock_lock_acquired_total{mode="priority"}`),
		acquiredTry:      set.GetOrCreateCounter(`devlock_lock_acquired_total{mode="timed"}`),
		timeouts:         set.GetOrCreateCounter(`devlock_lock_timeouts_total`),
		rejected:         set.GetOrCreateCounter(`devlock_lock_rejected_total`),
		cancelled:        set.GetOrCreateCounter(`devlock_lock_cancelled_total`),
		unauthorized:     set.GetOrCreateCounter(`devlock_lock_unauthorized_unlocks_total`),
		created:          set.GetOrCreateCounter(`devlock_lock_records_created_total`),
		reclaimed:        set.GetOrCreateCounter(`devlock_lock_records_reclaimed_total`),
	}
}
