// SPDX-License-Identifier: EPL-2.0

// Package metrics declares the server's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mix outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

// Gauges
var (
	MixesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "moodmix_mixes_in_flight",
		Help: "Number of mixes currently being rendered",
	})
)

// Counters
var (
	MixesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodmix_mixes_total",
		Help: "Total mix requests by source and outcome",
	}, []string{"source", "outcome"})
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodmix_uploads_total",
		Help: "Total stored uploads by kind",
	}, []string{"kind"})
	UploadBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodmix_upload_bytes_total",
		Help: "Total bytes stored by upload kind",
	}, []string{"kind"})
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodmix_http_requests_total",
		Help: "Total HTTP requests by method, route pattern and status",
	}, []string{"method", "route", "status"})
)

// Histograms
var (
	MixDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moodmix_mix_duration_ms",
		Help:    "Time spent fetching, decoding and mixing, in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"source"})
	MixOutputSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "moodmix_mix_output_seconds",
		Help:    "Length of rendered mixes in seconds of audio",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moodmix_http_request_duration_ms",
		Help:    "HTTP request latency in milliseconds by route pattern",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000},
	}, []string{"route"})
)
