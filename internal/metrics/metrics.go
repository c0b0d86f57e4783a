package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_cache_operations_total",
			Help: "Artifact cache operations",
		},
		[]string{"cache", "op"}, // hit|stale|miss|fetch|fetch_failed|discarded|invalidated
	)
	CacheStoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_cache_store_errors_total",
			Help: "Durable store failures seen by artifact caches",
		},
		[]string{"cache", "op"}, // read|write|delete
	)
	CacheEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "boxoffice_cache_entries",
			Help: "Number of entries held in memory per cache",
		},
		[]string{"cache"},
	)
)

var (
	BackgroundTasks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "boxoffice_background_tasks",
			Help: "Number of background tasks currently registered",
		},
	)
	SnapshotSwaps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxoffice_snapshot_swaps_total",
			Help: "Listings snapshot installs by outcome",
		},
		[]string{"outcome"}, // installed|discarded|failed
	)
)

func MustRegister() {
	prometheus.MustRegister(CacheOps, CacheStoreErrors, CacheEntries, BackgroundTasks, SnapshotSwaps)
}
