package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors
const (
	// ErrCodeConfiguration indicates invalid client or transport configuration.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeInvalidRequest indicates a request is missing required fields.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeParse indicates a value (usually a URL) could not be parsed.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeInvalidInput indicates a field failed validation.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeUnsupported indicates an unsupported scheme or transport.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
