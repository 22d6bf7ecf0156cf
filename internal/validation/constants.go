package validation

import "errors"

// ErrSchemaValidation is returned when a document does not match its schema
var ErrSchemaValidation = errors.New("schema validation failed")

// Error messages
const (
	ErrMsgReadDataFile   = "failed to read data file %s: %w"
	ErrMsgLoadSchema     = "failed to load schema %s: %w"
	ErrMsgParseData      = "failed to parse JSON data: %w"
	ErrMsgReadSchemaFile = "failed to read schema file: %w"
	ErrMsgParseSchema    = "failed to parse schema JSON: %w"
	ErrMsgAddSchema      = "failed to add schema resource: %w"
	ErrMsgCompileSchema  = "failed to compile schema: %w"
	ErrMsgValidation     = "validation error: %w"
	ErrMsgGetWorkingDir  = "failed to get current directory: %w"
	ErrMsgSchemaNotFound = "schema file not found: %s (searched from %s)"
)
