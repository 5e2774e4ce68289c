package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal 按结果路径统计的分析请求数：cached, pooled, real, synthetic
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clarity_radar_requests_total",
			Help: "Total number of analysis requests by path taken",
		},
		[]string{"path"},
	)

	RealFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clarity_radar_real_failures_total",
			Help: "Total number of real analyses that failed and fell back to synthetic",
		},
	)

	SignalFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clarity_radar_signal_fallbacks_total",
			Help: "Total number of signal sources that degraded to their default value",
		},
		[]string{"pillar"},
	)

	CostUSDTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clarity_radar_cost_usd_total",
			Help: "Total cost incurred by real analyses in USD",
		},
	)

	AnalyzeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clarity_radar_analyze_duration_seconds",
			Help:    "Analysis latency by path taken",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RealFailuresTotal)
	prometheus.MustRegister(SignalFallbacksTotal)
	prometheus.MustRegister(CostUSDTotal)
	prometheus.MustRegister(AnalyzeDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest 记录一次请求的路径和耗时
func ObserveRequest(path string, start time.Time) {
	RequestsTotal.WithLabelValues(path).Inc()
	AnalyzeDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
}
