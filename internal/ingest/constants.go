package ingest

import "errors"

// SigningMethod is the only algorithm accepted for result tokens
const SigningMethod = "RS256"

// Outcome label values for metrics.IngestResults
const (
	OutcomeAccepted     = "accepted"
	OutcomeUnauthorized = "unauthorized"
	OutcomeMalformed    = "malformed"
	OutcomeForbidden    = "forbidden"
	OutcomeFailed       = "failed"
)

var (
	// ErrUnauthorized is returned when the token signature or claims do not verify
	ErrUnauthorized = errors.New("result token is not valid")
	// ErrMalformedResult is returned when a verified token does not describe a result
	ErrMalformedResult = errors.New("malformed game result")
	// ErrClanMismatch is returned when the result belongs to another guild
	ErrClanMismatch = errors.New("result clan does not match guild")
)

// Log messages
const (
	LogMsgResultAccepted = "Game result accepted"
	LogMsgResultRejected = "Game result rejected"
	LogMsgAwardFailed    = "Failed to register win from game result"
)

// Error messages
const (
	ErrMsgReadKey     = "failed to read result public key: %w"
	ErrMsgParseKey    = "failed to parse result public key: %w"
	ErrMsgPoints      = "points must round to a positive whole number, got %v"
	ErrMsgClaimsField = "%s failed %s validation"
)
