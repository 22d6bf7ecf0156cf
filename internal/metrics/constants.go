package metrics

// Metric namespace shared by every collector
const Namespace = "winledger"

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Ledger metric names
const (
	MetricNameLedgerMutations   = "ledger_mutations_total"
	MetricNameLedgerRejected    = "ledger_rejected_total"
	MetricNamePointsAwarded     = "points_awarded_total"
	MetricNamePointsRemoved     = "points_removed_total"
	MetricNameStorageErrors     = "storage_errors_total"
	MetricNameQueryDuration     = "query_duration_seconds"
	MetricNameQueryTimeouts     = "query_timeouts_total"
	MetricNameRewardTransitions = "reward_transitions_total"
	MetricNameRoleOps           = "role_operations_total"
	MetricNameCollapsesPending  = "hierarchy_collapses_pending"
	MetricNameLadderCache       = "reward_ladder_cache_total"
	MetricNameIngestResults     = "ingest_results_total"
	MetricNameMultiplierLookups = "multiplier_lookups_total"
)

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Ledger metric help text
const (
	HelpTextLedgerMutations   = "Total number of applied ledger operations"
	HelpTextLedgerRejected    = "Total number of ledger operations rejected before any I/O"
	HelpTextPointsAwarded     = "Total points added by ledger operations"
	HelpTextPointsRemoved     = "Total points requested for removal by ledger operations"
	HelpTextStorageErrors     = "Total number of counter store failures"
	HelpTextQueryDuration     = "Rank and leaderboard query latency in seconds"
	HelpTextQueryTimeouts     = "Total number of rank and leaderboard queries that timed out"
	HelpTextRewardTransitions = "Total number of reward thresholds crossed"
	HelpTextRoleOps           = "Total number of role grants and revokes by outcome"
	HelpTextCollapsesPending  = "Number of hierarchy collapses waiting for their debounce delay"
	HelpTextLadderCache       = "Reward ladder cache lookups by result"
	HelpTextIngestResults     = "Game result submissions by outcome"
	HelpTextMultiplierLookups = "Multiplier lookups by state"
)

// Common label names used across metrics
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelType      = "type"
	LabelOperation = "operation"
	LabelMetric    = "metric"
	LabelQuery     = "query"
	LabelKind      = "kind"
	LabelOutcome   = "outcome"
	LabelResult    = "result"
	LabelState     = "state"
)

// Label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	ResultHit      = "hit"
	ResultMiss     = "miss"
)

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// QueryLatencyBuckets covers rank and leaderboard queries up to the default timeout
var QueryLatencyBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2}

// Debug log messages
const (
	LogMsgEventPayloadUndecodable = "Event payload could not be decoded"
	LogMsgMetricsRecorded         = "Metrics recorded for event"
)
