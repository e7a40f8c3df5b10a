package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ProviderRequestsTotal counts market-data provider requests by
	// operation and outcome (ok, rate_limited, provider_error,
	// transport_error).
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_provider_requests_total",
			Help: "Number of market data provider requests by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// CacheLookupsTotal counts query-cache lookups by operation and result
	// (hit, miss, stale).
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_cache_lookups_total",
			Help: "Number of query cache lookups by operation and result.",
		},
		[]string{"operation", "result"},
	)

	// WishlistSize tracks the number of currently watched ids.
	WishlistSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wishlist_watched_ids",
			Help: "Number of ids currently on the wishlist.",
		},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once from the composition root.
func MustRegisterMetrics() {
	prometheus.MustRegister(ProviderRequestsTotal, CacheLookupsTotal, WishlistSize)
}
