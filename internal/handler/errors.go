package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgMissingQueryParam     = "Missing %s query parameter"
	ErrMsgInvalidQueryParam     = "Invalid %s query parameter"
	ErrMsgInvalidPathParam      = "Invalid %s path parameter"
	ErrMsgMissingToken          = "Missing result token"
	ErrMsgIngestDisabled        = "Game result ingestion is not configured"
	ErrMsgInvalidRequestFormat  = "Invalid request format"
	ErrMsgFieldRequired         = "This field is required"
	ErrMsgInvalidFieldValue     = "Invalid value"
)

// User-facing messages derived from domain errors
const (
	ErrMsgGenericServerError     = "Something went wrong"
	ErrMsgUnknownError           = "Unknown error"
	ErrMsgInvalidAmountError     = "Invalid amount"
	ErrMsgInvalidMetricError     = "Metric must be points or wins"
	ErrMsgInvalidWindowError     = "Days must be between 1 and 30"
	ErrMsgInvalidInputError      = "Invalid request. Please check your inputs."
	ErrMsgRewardDefinitionError  = "Invalid reward definition"
	ErrMsgHierarchyModeError     = "Hierarchy mode must be all or highest"
	ErrMsgInvalidMultiplierError = "Multiplier must be between 1 and 5"
	ErrMsgMultiplierActiveError  = "A multiplier is already active"
	ErrMsgNoMultiplierError      = "No multiplier is active"
	ErrMsgGuildNotFoundError     = "Guild is not configured"
	ErrMsgAutoPointsOffError     = "Automatic points are disabled for this guild"
	ErrMsgTokenInvalidError      = "Result token is not valid"
	ErrMsgResultMalformedError   = "Game result is malformed"
	ErrMsgClanMismatchError      = "Game result belongs to another guild"
	ErrMsgQueryTimeoutError      = "Query timed out. Please try again."
	ErrMsgStorageError           = "Server error occurred. Please try again."
)

// Success messages
const (
	MsgMemberForgotten   = "Member data removed"
	MsgGuildRemoved      = "Guild removed"
	MsgMultiplierCleared = "Multiplier cleared"
	MsgConfigUpdated     = "Configuration updated"
)

// Log messages
const (
	LogMsgDecodeFailed    = "Failed to decode %s request"
	LogMsgRequestDecoded  = "%s request decoded"
	LogMsgMissingParam    = "Missing %s query parameter"
	LogMsgServiceError    = "%s failed"
	LogMsgEncodeFailed    = "Failed to encode JSON response"
	LogMsgWriteFailed     = "Failed to write response buffer"
	LogMsgReadinessFailed = "Readiness check failed"
	LogMsgMemberAdjusted  = "Member adjusted"
	LogMsgResultIngested  = "Game result ingested"
)

// Header carrying the id of the member performing an administrative action
const HeaderActorID = "X-Actor-ID"
