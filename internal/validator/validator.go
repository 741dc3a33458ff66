// Package validator checks a JSON value against a schema with one of two
// backends and reports every failure in one result shape.
package validator

import (
	stderrors "errors"
	"fmt"

	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/logging"
	"github.com/mcncl/jsonshape/internal/models"
	"github.com/sirupsen/logrus"
)

// Backend selects how a schema is interpreted.
type Backend string

const (
	// BackendStructural treats the schema as a JSON Schema document.
	BackendStructural Backend = "structural"
	// BackendParse treats the schema as schema-source text.
	BackendParse Backend = "parse-based"
)

// KeywordCompile marks the single detail reported for a schema that does
// not compile.
const KeywordCompile = "compile"

// ErrorDetail is one validation failure.
type ErrorDetail struct {
	// Path is a JSON Pointer to the failing value; the root is "".
	Path    string `json:"path"`
	Keyword string `json:"keyword"`
	Message string `json:"message"`
}

// Result is returned by every validation call. Errors is non-empty exactly
// when Valid is false.
type Result struct {
	Valid           bool          `json:"valid"`
	Errors          []ErrorDetail `json:"errors,omitempty"`
	Message         string        `json:"message"`
	GeneratedSchema models.Value  `json:"generatedSchema,omitempty"`
}

// Validator dispatches to a backend. It holds no state besides its logger.
type Validator struct {
	log logrus.FieldLogger
}

// New creates a Validator. A nil logger discards output.
func New(log logrus.FieldLogger) *Validator {
	return &Validator{log: logging.OrDiscard(log)}
}

// Validate checks data against schema. An unknown backend is treated as
// BackendStructural. A schema that fails to compile produces an invalid
// Result with a single compile detail; Validate itself never fails.
func (v *Validator) Validate(data, schema models.Value, backend Backend) Result {
	var (
		details []ErrorDetail
		err     error
	)

	switch backend {
	case BackendParse:
		details, err = validateParseBased(data, schema)
	case BackendStructural:
		details, err = validateStructural(data, schema)
	default:
		v.log.WithField("backend", backend).Warn("unknown validation backend, using structural")
		backend = BackendStructural
		details, err = validateStructural(data, schema)
	}

	entry := v.log.WithField("backend", backend)
	if err != nil {
		entry.WithError(err).Debug("schema did not compile")
		return compileFailure(err)
	}

	entry.WithField("errors", len(details)).Debug("validation finished")
	if len(details) == 0 {
		return Result{Valid: true, Message: "Validation passed"}
	}
	return Result{
		Valid:   false,
		Errors:  details,
		Message: fmt.Sprintf("Validation failed with %d error(s)", len(details)),
	}
}

func compileFailure(err error) Result {
	message := err.Error()
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
	}
	return Result{
		Valid:   false,
		Errors:  []ErrorDetail{{Path: "", Keyword: KeywordCompile, Message: message}},
		Message: errors.UserFriendlyError(err),
	}
}

func kindName(v models.Value) string {
	if v == nil {
		return "nothing"
	}
	return string(v.Kind())
}
