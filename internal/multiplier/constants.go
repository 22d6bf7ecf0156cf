package multiplier

// Multiplier lookup states recorded in metrics
const (
	StateNone    = "none"
	StateActive  = "active"
	StateExpired = "expired"
)

// Log messages
const (
	LogMsgMultiplierExpired = "Multiplier expired and cleared"
	LogMsgMultiplierSet     = "Multiplier set"
	LogMsgMultiplierCleared = "Multiplier cleared"
	LogMsgExpiryChanged     = "Multiplier expiry changed"
	LogMsgPublishFailed     = "Failed to publish multiplier event"
)

// Audit messages
const (
	MsgSetFormat        = "Multiplier set to x%.2f (%s)"
	MsgSetExpiresFormat = "Multiplier set to x%.2f until %s (%s)"
	MsgCleared          = "Multiplier cleared"
	MsgExpired          = "Multiplier expired"
	MsgExpiryFormat     = "Multiplier now ends %s"
	MsgNoExpiry         = "Multiplier no longer expires"
)

// Error messages
const (
	ErrMsgGetFailed       = "failed to read multiplier: %w"
	ErrMsgSetFailed       = "failed to set multiplier: %w"
	ErrMsgClearFailed     = "failed to clear multiplier: %w"
	ErrMsgExpiryFailed    = "failed to change multiplier expiry: %w"
	ErrMsgDescriptionSize = "description must be at most %d characters"
)

// MaxDescriptionLength bounds the free text shown with a multiplier
const MaxDescriptionLength = 200
