package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dispatch runs by terminal state (completed, aborted)
	dispatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_dispatch_runs_total",
			Help: "Total number of campaign dispatch runs by terminal state",
		},
		[]string{"state"},
	)

	// Outbound messages partitioned by origin (campaign, reply) and outcome
	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_sent_total",
			Help: "Total number of outbound message attempts by origin and outcome",
		},
		[]string{"origin", "outcome"},
	)

	// Inbound events partitioned by outcome (replied, unregistered, failed)
	inboundEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_events_total",
			Help: "Total number of inbound message events by outcome",
		},
		[]string{"outcome"},
	)

	// Dispatch run duration in seconds
	dispatchRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campaign_dispatch_run_duration_seconds",
			Help:    "Campaign dispatch run latencies in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)
