// Package metrics defines the Prometheus instruments for the analysis
// service. Instruments are package-level and registered via promauto, so
// importing the package is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analysis run metrics
var (
	// AnalysesTotal counts analysis runs by strategy and outcome.
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groundwork_analyses_total",
			Help: "Total analysis runs by strategy and status",
		},
		[]string{"strategy", "status"},
	)

	// AnalysisDuration tracks end-to-end analysis latency in seconds.
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "groundwork_analysis_duration_seconds",
			Help:    "Analysis run duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"strategy"},
	)

	// AnalysisComments tracks how many comments each run ingested.
	AnalysisComments = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "groundwork_analysis_comments",
			Help:    "Comments ingested per analysis run",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	// AnalysisFilteredComments tracks how many comments survived the
	// minimum-vote significance filter at the root scorer.
	AnalysisFilteredComments = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "groundwork_analysis_filtered_comments",
			Help:    "Comments above the vote significance floor per analysis run",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	// SelectionSize tracks result sizes per selection kind at the root.
	SelectionSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "groundwork_selection_size",
			Help:    "Selected comments per selection kind at the conversation root",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 12, 20},
		},
		[]string{"kind"},
	)
)
