package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput        = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON       = errors.New("invalid JSON format")
	ErrMultipleJSON      = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound      = errors.New("file not found")
	ErrFileEmpty         = errors.New("file is empty")
	ErrNoInput           = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath   = errors.New("invalid file path")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrMalformedSchema   = errors.New("malformed schema")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput       ErrorType = "input"
	ErrorTypeDecode      ErrorType = "decode"
	ErrorTypeEmit        ErrorType = "emit"
	ErrorTypeCompile     ErrorType = "compile"
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeFormat      ErrorType = "format"
	ErrorTypeOutput      ErrorType = "output"
	ErrorTypeConfig      ErrorType = "config"
	ErrorTypeUnsupported ErrorType = "unsupported"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError of the same Type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newError(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return newError(ErrorTypeInput, message, err)
}

// NewDecodeError creates a new error for malformed JSON text. Only the
// parser produces these; the engine packages never decode bytes.
func NewDecodeError(message string, err error) *AppError {
	return newError(ErrorTypeDecode, message, err)
}

// NewEmitError creates a new error related to schema emission
func NewEmitError(message string, err error) *AppError {
	return newError(ErrorTypeEmit, message, err)
}

// NewCompileError creates a new error for a schema that cannot be compiled
// by its backend.
func NewCompileError(message string, err error) *AppError {
	return newError(ErrorTypeCompile, message, err)
}

// NewValidationError creates a new error for data that failed validation
func NewValidationError(message string, err error) *AppError {
	return newError(ErrorTypeValidation, message, err)
}

// NewFormatError creates a new error related to output formatting
func NewFormatError(message string, err error) *AppError {
	return newError(ErrorTypeFormat, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newError(ErrorTypeOutput, message, err)
}

// NewConfigError creates a new error related to configuration loading
func NewConfigError(message string, err error) *AppError {
	return newError(ErrorTypeConfig, message, err)
}

// NewUnsupportedError creates a new error for an unrecognized discriminator
func NewUnsupportedError(message string, err error) *AppError {
	return newError(ErrorTypeUnsupported, message, err)
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeDecode:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeEmit:
			return fmt.Sprintf("Schema generation error: %s", appErr.Message)
		case ErrorTypeCompile:
			return fmt.Sprintf("Schema compile error: %s", appErr.Message)
		case ErrorTypeValidation:
			return fmt.Sprintf("Validation failed: %s", appErr.Message)
		case ErrorTypeFormat:
			return fmt.Sprintf("Output formatting error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeUnsupported:
			return fmt.Sprintf("Unsupported option: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON value."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		return "Error: Unsupported output format. Use json-schema, schema-source or interface-source."
	}
	if errors.Is(err, ErrMalformedSchema) {
		return "Error: The schema could not be compiled. Please check its syntax."
	}

	return fmt.Sprintf("Error: %v", err)
}
