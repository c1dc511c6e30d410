package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(purchasesTotal, giftsSkippedTotal, catalogRequestsTotal)
}

var (
	purchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_purchases_total",
			Help: "Single-unit gift purchase attempts, by result.",
		},
		[]string{"result"},
	)

	giftsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gifts_skipped_total",
			Help: "Catalog gifts skipped before matching, by reason.",
		},
		[]string{"reason"},
	)

	catalogRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Catalog snapshot lookups served from cache or fetched.",
		},
		[]string{"result"}, // 'hit', 'fetched', 'failed'
	)
)

func IncPurchase(result string) {
	purchasesTotal.WithLabelValues(norm(result)).Inc()
}

func AddGiftsSkipped(reason string, n int) {
	if n <= 0 {
		return
	}
	giftsSkippedTotal.WithLabelValues(norm(reason)).Add(float64(n))
}

func IncCatalogRequest(result string) {
	catalogRequestsTotal.WithLabelValues(norm(result)).Inc()
}
