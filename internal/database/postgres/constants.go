package postgres

// Error message constants for repository operations
const (
	ErrMsgFailedToBeginTx   = "failed to begin transaction"
	ErrMsgFailedToCommitTx  = "failed to commit transaction"
	ErrMsgFailedToScanRow   = "failed to scan row"
	ErrMsgFailedToExecQuery = "failed to execute query"
	ErrMsgFailedToQueryRows = "failed to query rows"
)
