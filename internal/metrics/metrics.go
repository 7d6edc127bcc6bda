package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dialin_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dialin_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	})
)

// Calculator metrics
var (
	RecipesGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_recipes_generated_total",
		Help: "Total number of recipes generated",
	}, []string{"method", "roast_level", "taste_goal"})

	DialInAdviceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_dial_in_advice_total",
		Help: "Total number of dial-in suggestions by taste result and direction",
	}, []string{"method", "taste_result", "direction"})

	GrindRecommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_grind_recommendations_total",
		Help: "Total number of standalone grind recommendations",
	}, []string{"method"})

	CalculationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_calculation_errors_total",
		Help: "Total number of rejected calculator requests",
	}, []string{"operation", "reason"})

	RecommendedGrind = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dialin_recommended_grind_dial",
		Help:    "Distribution of recommended dial settings",
		Buckets: []float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 8, 9, 10, 11, 12, 13},
	}, []string{"method"})
)

// Grinder table metrics
var (
	GrinderReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialin_grinder_reloads_total",
		Help: "Total number of grinder table reloads",
	}, []string{"status"})
)

// Storage gauges (updated periodically by collector)
var (
	HistoryRecordsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialin_history_records_total",
		Help: "Number of saved recipes in history",
	})

	CalibrationsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialin_calibrations_total",
		Help: "Number of stored grinder calibrations",
	})

	GrindersLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dialin_grinders_loaded",
		Help: "Number of grinder profiles in the active table",
	})
)

// NormalizePath reduces high-cardinality path labels by replacing dynamic
// segments with placeholders. This keeps the metric label space bounded.
func NormalizePath(path string) string {
	segments := splitPath(path)
	if len(segments) < 3 || segments[0] != "api" {
		return path
	}

	switch segments[1] {
	case "grinders":
		if len(segments) == 3 {
			return "/api/grinders/:name"
		}
	case "calibrations":
		if len(segments) == 4 {
			return "/api/calibrations/:grinder/:method"
		}
	}

	return path
}

func splitPath(path string) []string {
	// Skip leading slash
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	// Split on /
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			if i > start {
				segments = append(segments, path[start:i])
			}
			start = i + 1
		}
	}
	if start < len(path) {
		segments = append(segments, path[start:])
	}
	return segments
}
