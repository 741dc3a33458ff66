package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with wrapped error",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "failed to read input",
				Err:     errors.New("file not found"),
			},
			expected: "input: failed to read input: file not found",
		},
		{
			name: "error without wrapped error",
			appError: &AppError{
				Type:    ErrorTypeDecode,
				Message: "invalid JSON syntax",
				Err:     nil,
			},
			expected: "decode: invalid JSON syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	appErr := &AppError{
		Type:    ErrorTypeInput,
		Message: "test message",
		Err:     wrappedErr,
	}

	result := appErr.Unwrap()
	assert.Equal(t, wrappedErr, result)
}

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		target   error
		expected bool
	}{
		{
			name: "same type",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "test message",
				Err:     nil,
			},
			target: &AppError{
				Type:    ErrorTypeInput,
				Message: "different message",
				Err:     errors.New("some error"),
			},
			expected: true,
		},
		{
			name: "different type",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "test message",
				Err:     nil,
			},
			target: &AppError{
				Type:    ErrorTypeCompile,
				Message: "test message",
				Err:     nil,
			},
			expected: false,
		},
		{
			name: "not an AppError",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "test message",
				Err:     nil,
			},
			target:   errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Is(tt.target)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "input error",
			err:      NewInputError("failed to read file", nil),
			expected: "Input error: failed to read file",
		},
		{
			name:     "decode error",
			err:      NewDecodeError("invalid JSON syntax", nil),
			expected: "JSON parsing error: invalid JSON syntax",
		},
		{
			name:     "emit error",
			err:      NewEmitError("nil type model", nil),
			expected: "Schema generation error: nil type model",
		},
		{
			name:     "compile error",
			err:      NewCompileError("unexpected token", ErrMalformedSchema),
			expected: "Schema compile error: unexpected token",
		},
		{
			name:     "config error",
			err:      NewConfigError("bad yaml", nil),
			expected: "Configuration error: bad yaml",
		},
		{
			name:     "format error",
			err:      NewFormatError("failed to indent JSON", nil),
			expected: "Output formatting error: failed to indent JSON",
		},
		{
			name:     "output error",
			err:      NewOutputError("failed to write output", nil),
			expected: "Output error: failed to write output",
		},
		{
			name:     "standard error - empty input",
			err:      ErrEmptyInput,
			expected: "Error: The input is empty. Please provide valid JSON data.",
		},
		{
			name:     "standard error - invalid JSON",
			err:      ErrInvalidJSON,
			expected: "Error: The input contains invalid JSON. Please check your JSON syntax.",
		},
		{
			name:     "standard error - unsupported format",
			err:      ErrUnsupportedFormat,
			expected: "Error: Unsupported output format. Use json-schema, schema-source or interface-source.",
		},
		{
			name:     "unknown error",
			err:      errors.New("some unknown error"),
			expected: "Error: some unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := UserFriendlyError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_WrappedSentinel(t *testing.T) {
	err := NewCompileError("schema is not an object", ErrMalformedSchema)

	assert.True(t, errors.Is(err, ErrMalformedSchema))
	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypeCompile}))
	assert.False(t, errors.Is(err, &AppError{Type: ErrorTypeDecode}))
}
