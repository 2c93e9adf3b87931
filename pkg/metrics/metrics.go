// Package metrics 는 Prometheus 지표 정의를 담는다.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zipcheck_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "zipcheck_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)

	AnalysisStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zipcheck_analysis_steps_total",
			Help: "Total number of analysis pipeline steps executed",
		},
		[]string{"step", "result"},
	)

	CrawledListingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zipcheck_crawled_listings_total",
			Help: "Total number of listings stored by the crawler",
		},
		[]string{"source"},
	)
)
