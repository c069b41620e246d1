package metrics

// ============================================================================
// Metric Names
// ============================================================================

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

// Business metric names
const (
	MetricNameXPCredited           = "xp_credited_total"
	MetricNameXPRedeemed           = "xp_redeemed_total"
	MetricNameMinutesGranted       = "screen_time_minutes_granted_total"
	MetricNameTasksApproved        = "tasks_approved_total"
	MetricNameTasksRejected        = "tasks_rejected_total"
	MetricNameTasksExpired         = "tasks_expired_total"
	MetricNameStoreConflictRetries = "store_conflict_retries_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

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

// Business metric help text
const (
	HelpTextXPCredited           = "Total XP credited from approved tasks"
	HelpTextXPRedeemed           = "Total XP redeemed for screen time"
	HelpTextMinutesGranted       = "Total screen-time minutes granted through redemptions"
	HelpTextTasksApproved        = "Total tasks approved"
	HelpTextTasksRejected        = "Total tasks rejected"
	HelpTextTasksExpired         = "Total tasks marked expired"
	HelpTextStoreConflictRetries = "Total optimistic-concurrency conflicts that triggered a retry"
)

// ============================================================================
// Labels
// ============================================================================

const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelType      = "type"
	LabelLevel     = "level"
	LabelOperation = "operation"
)

// Operation label values for StoreConflictRetries
const (
	OpCredit  = "credit"
	OpRedeem  = "redeem"
	OpOutcome = "outcome"
)

// HTTPLatencyBuckets covers the expected latency range for API calls
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
