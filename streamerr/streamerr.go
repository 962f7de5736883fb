// Package streamerr defines the error taxonomy emitted as BlockError events
// by the block state machine. Every code maps to a specific recovery policy
// documented on the processor: none of these errors ever propagate across
// the event channel boundary as a Go panic or returned error — they are
// always surfaced as data.
package streamerr

import "fmt"

// Code identifies the reason a candidate block was rejected.
type Code string

const (
	// CodeValidationFailed means the syntax's or registry's validators
	// returned false for an otherwise successfully parsed block.
	CodeValidationFailed Code = "VALIDATION_FAILED"
	// CodeSizeExceeded means max_block_size was crossed during accumulation.
	CodeSizeExceeded Code = "SIZE_EXCEEDED"
	// CodeUnclosedBlock means the stream ended with the candidate still open.
	CodeUnclosedBlock Code = "UNCLOSED_BLOCK"
	// CodeParseFailed means the syntax parser produced no typed payload.
	CodeParseFailed Code = "PARSE_FAILED"
	// CodeMissingMetadata means a required metadata section was absent.
	CodeMissingMetadata Code = "MISSING_METADATA"
	// CodeMissingContent means a required content section was absent.
	CodeMissingContent Code = "MISSING_CONTENT"
	// CodeSyntaxError means the envelope grammar itself was malformed
	// (bad YAML, mismatched fence, ...).
	CodeSyntaxError Code = "SYNTAX_ERROR"
	// CodeUnknownType means the extracted block_type has no registered
	// schema and the processor is running in strict mode.
	CodeUnknownType Code = "UNKNOWN_TYPE"
)

// Error is the diagnostic payload attached to a BlockError event.
//
// Err is tagged json:"-", so marshaling an event for a wire protocol never
// serializes it — it exists purely for local diagnostics.
type Error struct {
	Code    Code
	Message string
	Err     error `json:"-"`
}

// New builds an Error for code with the given message, optionally wrapping
// an underlying error (a YAML parse failure, for instance).
func New(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying error, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}
