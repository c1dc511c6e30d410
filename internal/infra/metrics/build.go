package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(buildInfo)
}

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "gifts_buyer_build_info",
		Help: "A constant metric with labels for version and language.",
	},
	[]string{"version", "language"},
)

func SetBuildInfo(version, language string) {
	buildInfo.WithLabelValues(version, norm(language)).Set(1)
}
