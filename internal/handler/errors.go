package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidLimit      = "Invalid limit parameter"

	// User management error messages
	ErrMsgRegisterUserFailed = "Failed to register user"
	ErrMsgGetUserFailed      = "Failed to get user"

	// Task error messages
	ErrMsgAssignTaskFailed  = "Failed to assign task"
	ErrMsgSubmitTaskFailed  = "Failed to submit task"
	ErrMsgApproveTaskFailed = "Failed to approve task"
	ErrMsgRejectTaskFailed  = "Failed to reject task"
	ErrMsgExpireTasksFailed = "Failed to expire tasks"
	ErrMsgListTasksFailed   = "Failed to list tasks"
	ErrMsgInvalidDueAt      = "Invalid due_at, expected RFC 3339 timestamp"

	// Ledger error messages
	ErrMsgGetBalanceFailed      = "Failed to get balance"
	ErrMsgGetTransactionsFailed = "Failed to get transactions"
	ErrMsgGetStatsFailed        = "Failed to get daily stats"
	ErrMsgRedeemFailed          = "Failed to redeem XP"
	ErrMsgReconcileFailed       = "Failed to reconcile ledger"
	ErrMsgGetProgressFailed     = "Failed to get badge progress"
)
