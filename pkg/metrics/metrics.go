package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	courierAgent = "courier_agent"

	// Commit metrics
	statusCommitsTotal = "status_commits_total"

	// Refresh metrics
	jobRefreshesTotal = "job_refreshes_total"

	// Labels
	commitOutcomeLabel  = "outcome"
	refreshOutcomeLabel = "outcome"
)

var commitOutcomeLabels = []string{
	commitOutcomeLabel,
}

var refreshOutcomeLabels = []string{
	refreshOutcomeLabel,
}

/**
* Metrics definition
**/
var statusCommitsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: courierAgent,
		Name:      statusCommitsTotal,
		Help:      "number of job status commits by outcome",
	},
	commitOutcomeLabels,
)

var jobRefreshesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: courierAgent,
		Name:      jobRefreshesTotal,
		Help:      "number of job summary refreshes by outcome",
	},
	refreshOutcomeLabels,
)

func IncreaseStatusCommitsTotalMetric(outcome string) {
	labels := prometheus.Labels{
		commitOutcomeLabel: outcome,
	}
	statusCommitsTotalMetric.With(labels).Inc()
}

func IncreaseJobRefreshesTotalMetric(outcome string) {
	labels := prometheus.Labels{
		refreshOutcomeLabel: outcome,
	}
	jobRefreshesTotalMetric.With(labels).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(statusCommitsTotalMetric)
	prometheus.MustRegister(jobRefreshesTotalMetric)
}
