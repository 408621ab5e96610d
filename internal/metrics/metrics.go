package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// HTTP surface
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vocabnote_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	RequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vocabnote_request_duration_seconds",
		Help:    "HTTP handler duration.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"method", "route"})

	// Feishu upstream
	TokenRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vocabnote_feishu_token_refresh_total",
		Help: "Tenant access token refreshes by result.",
	}, []string{"result"})

	UpstreamErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vocabnote_feishu_errors_total",
		Help: "Feishu calls that failed, by operation.",
	}, []string{"op"})

	RecordsFetchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vocabnote_feishu_records_fetched_total",
		Help: "Records returned by the bitable API.",
	})

	RateLimitDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vocabnote_rate_limit_dropped_total",
		Help: "Requests rejected by the rate limiter.",
	})
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		RequestsTotal,
		RequestDurationSeconds,
		TokenRefreshTotal,
		UpstreamErrorsTotal,
		RecordsFetchedTotal,
		RateLimitDroppedTotal,
	)
}
