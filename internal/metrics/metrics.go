// Package metrics holds the Prometheus instrumentation of the API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Domain Metrics
	RecipeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_operations_total",
			Help: "Total number of recipe writes by operation",
		},
		[]string{"operation"}, // "create", "update", "delete"
	)

	RelationOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_relation_operations_total",
			Help: "Total number of favorite, shopping cart and subscription changes",
		},
		[]string{"relation", "action"},
	)

	ShoppingListDownloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Total number of shopping list downloads",
		},
	)

	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_auth_events_total",
			Help: "Total number of authentication events by type and result",
		},
		[]string{"event", "result"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordRecipeOperation(operation string) {
	RecipeOperations.WithLabelValues(operation).Inc()
}

// RecordRelation counts a change of relation ("favorite", "shopping_cart",
// "subscription") with action "add" or "remove".
func RecordRelation(relation, action string) {
	RelationOperations.WithLabelValues(relation, action).Inc()
}

func RecordAuthEvent(event string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	AuthEvents.WithLabelValues(event, result).Inc()
}
