package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameHTTPRequestsTotal,
			Help:      HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      MetricNameHTTPRequestDuration,
			Help:      HelpTextHTTPRequestDuration,
			Buckets:   HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      MetricNameHTTPRequestsInFlight,
			Help:      HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameEventsPublished,
			Help:      HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameEventHandlerErrors,
			Help:      HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Ledger Metrics
var (
	LedgerMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameLedgerMutations,
			Help:      HelpTextLedgerMutations,
		},
		[]string{LabelOperation},
	)

	LedgerRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameLedgerRejected,
			Help:      HelpTextLedgerRejected,
		},
		[]string{LabelOperation},
	)

	PointsAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNamePointsAwarded,
			Help:      HelpTextPointsAwarded,
		},
	)

	PointsRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNamePointsRemoved,
			Help:      HelpTextPointsRemoved,
		},
	)

	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameStorageErrors,
			Help:      HelpTextStorageErrors,
		},
		[]string{LabelOperation},
	)
)

// Query Metrics
var (
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      MetricNameQueryDuration,
			Help:      HelpTextQueryDuration,
			Buckets:   QueryLatencyBuckets,
		},
		[]string{LabelQuery},
	)

	QueryTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameQueryTimeouts,
			Help:      HelpTextQueryTimeouts,
		},
		[]string{LabelQuery},
	)
)

// Reward Metrics
var (
	RewardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameRewardTransitions,
			Help:      HelpTextRewardTransitions,
		},
		[]string{LabelType, LabelMetric},
	)

	RoleOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameRoleOps,
			Help:      HelpTextRoleOps,
		},
		[]string{LabelKind, LabelOutcome},
	)

	CollapsesPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      MetricNameCollapsesPending,
			Help:      HelpTextCollapsesPending,
		},
	)

	LadderCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameLadderCache,
			Help:      HelpTextLadderCache,
		},
		[]string{LabelResult},
	)
)

// Multiplier and Ingest Metrics
var (
	MultiplierLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameMultiplierLookups,
			Help:      HelpTextMultiplierLookups,
		},
		[]string{LabelState},
	)

	IngestResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameIngestResults,
			Help:      HelpTextIngestResults,
		},
		[]string{LabelOutcome},
	)
)
