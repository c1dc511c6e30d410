package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(rangeMutationsTotal, rangesConfigured, rangeMatchesTotal)
}

var (
	rangeMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_range_mutations_total",
			Help: "Add/edit/delete operations on gift ranges, by result.",
		},
		[]string{"op", "result"}, // result: ok, invalid, out_of_range, persist_failed
	)

	rangesConfigured = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gift_ranges_configured",
			Help: "Number of gift ranges currently configured.",
		},
	)

	rangeMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_range_matches_total",
			Help: "Range matcher outcomes for catalog gifts.",
		},
		[]string{"result"}, // 'hit', 'miss'
	)
)

func IncRangeMutation(op, result string) {
	rangeMutationsTotal.WithLabelValues(norm(op), norm(result)).Inc()
}

func SetRangesConfigured(n int) {
	rangesConfigured.Set(float64(n))
}

func IncRangeMatch(result string) {
	rangeMatchesTotal.WithLabelValues(norm(result)).Inc()
}
