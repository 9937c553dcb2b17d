// Package metrics defines the Prometheus instruments for the service.
// Everything registers on the default registry and is served by promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VisitsReported counts accepted visit reports.
	VisitsReported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "singularity_visits_reported_total",
		Help: "Number of visit reports accepted.",
	})

	// PointsAwarded counts gamification points handed out.
	PointsAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "singularity_points_awarded_total",
		Help: "Total gamification points awarded.",
	})

	// BadgesGranted counts first-time badge grants.
	BadgesGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "singularity_badges_granted_total",
		Help: "Number of badges newly granted to users.",
	})

	// VisibilityEstimates counts visibility score computations.
	VisibilityEstimates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "singularity_visibility_estimates_total",
		Help: "Number of visibility score estimations served.",
	})

	// NearestQueries counts nearest-dark-site searches.
	NearestQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "singularity_nearest_queries_total",
		Help: "Number of nearest-site ranking queries served.",
	})

	// HTTPRequests counts requests by route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "singularity_http_requests_total",
		Help: "HTTP requests by route pattern and status class.",
	}, []string{"route", "status"})
)
