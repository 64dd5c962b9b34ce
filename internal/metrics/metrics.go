// Package metrics exposes the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsTotal counts registration attempts by outcome.
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_auth_registrations_total",
		Help: "Total number of registration attempts",
	}, []string{"status"})

	// ActivationsTotal counts activation attempts by outcome.
	ActivationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_auth_activations_total",
		Help: "Total number of account activation attempts",
	}, []string{"status"})

	// LoginRequestsTotal counts login code issuances by delivery channel.
	LoginRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_auth_login_requests_total",
		Help: "Total number of login code requests",
	}, []string{"status"})

	// LoginValidationsTotal counts login code validations by outcome.
	LoginValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_auth_login_validations_total",
		Help: "Total number of login code validations",
	}, []string{"status"})

	// UploadsTotal counts character image uploads by outcome.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_auth_character_uploads_total",
		Help: "Total number of character image uploads",
	}, []string{"status"})

	// AnalysesTotal counts character analysis runs by outcome.
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_auth_character_analyses_total",
		Help: "Total number of character analysis runs",
	}, []string{"status"})

	// RequestDuration measures HTTP request latency per route and method.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "landing_auth_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// RateLimitExceededTotal counts requests rejected by the rate limiter.
	RateLimitExceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "landing_auth_rate_limit_exceeded_total",
		Help: "Total number of requests rejected by the rate limiter",
	})
)

// Outcome labels for the status dimension.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
