package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleet_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"query_type", "table"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleet_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type", "table"},
	)

	RedisOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_redis_operations_total",
			Help: "Total number of Redis operations",
		},
		[]string{"operation", "status"},
	)

	RemoteAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_remote_api_calls_total",
			Help: "Total number of calls to the remote fleet API",
		},
		[]string{"resource", "status"},
	)

	RemoteAPICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleet_remote_api_call_duration_seconds",
			Help:    "Remote fleet API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_token_refreshes_total",
			Help: "Total number of character access token refreshes",
		},
		[]string{"outcome"},
	)

	FleetBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_hierarchy_builds_total",
			Help: "Total number of fleet hierarchy builds",
		},
		[]string{"outcome"},
	)

	FleetMembersObserved = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleet_members_observed",
			Help:    "Number of members in successfully built fleets",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	ServiceUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleet_service_uptime_seconds",
			Help: "Time since Fleet Service started in seconds",
		},
	)

	ServiceInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleet_service_info",
			Help: "Fleet Service information",
		},
		[]string{"version", "build_time"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordRedisOperation(operation, status string) {
	RedisOperationsTotal.WithLabelValues(operation, status).Inc()
}

func RecordRemoteAPICall(resource, status string, duration float64) {
	RemoteAPICallsTotal.WithLabelValues(resource, status).Inc()
	RemoteAPICallDuration.WithLabelValues(resource).Observe(duration)
}

func RecordTokenRefresh(outcome string) {
	TokenRefreshesTotal.WithLabelValues(outcome).Inc()
}

func RecordFleetBuild(outcome string, members int) {
	FleetBuildsTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		FleetMembersObserved.Observe(float64(members))
	}
}
