package validator

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "mem:schema.json"

// Failures under these keywords are reported once; their causes describe
// alternatives, not separate violations.
var combinatorKeywords = map[string]bool{
	"oneOf": true,
	"anyOf": true,
	"not":   true,
}

func compileStructural(schema models.Value) (*jsonschema.Schema, error) {
	switch schema.(type) {
	case *models.Object, models.Bool:
	default:
		return nil, errors.NewCompileError(
			fmt.Sprintf("structural schema must be an object or a boolean, got %s", kindName(schema)),
			errors.ErrMalformedSchema,
		)
	}

	data, err := models.MarshalValue(schema)
	if err != nil {
		return nil, errors.NewCompileError(fmt.Sprintf("schema is not valid JSON: %v", err), errors.ErrMalformedSchema)
	}

	compiler := jsonschema.NewCompiler()
	compiler.LoadURL = refuseExternal
	if err := compiler.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
		return nil, errors.NewCompileError(fmt.Sprintf("invalid JSON Schema: %v", err), errors.ErrMalformedSchema)
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, errors.NewCompileError(fmt.Sprintf("invalid JSON Schema: %v", err), errors.ErrMalformedSchema)
	}
	return compiled, nil
}

// refuseExternal stops $ref resolution from reading files or the network.
// Only references inside the schema document resolve.
func refuseExternal(url string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("external $ref %q is not supported", url)
}

func validateStructural(data, schema models.Value) ([]ErrorDetail, error) {
	compiled, err := compileStructural(schema)
	if err != nil {
		return nil, err
	}

	err = compiled.Validate(models.ToInterface(data))
	if err == nil {
		return nil, nil
	}

	var verr *jsonschema.ValidationError
	if !stderrors.As(err, &verr) {
		return []ErrorDetail{{Path: "", Keyword: "schema", Message: err.Error()}}, nil
	}
	details := make([]ErrorDetail, 0)
	collectLeaves(verr, &details)
	return details, nil
}

// collectLeaves flattens the cause tree so that every violated keyword
// becomes its own detail.
func collectLeaves(verr *jsonschema.ValidationError, out *[]ErrorDetail) {
	keyword := keywordOf(verr.KeywordLocation)
	// Wrapper nodes carry no message; a property named "oneOf" is not a combinator.
	if len(verr.Causes) == 0 || (verr.Message != "" && combinatorKeywords[keyword]) {
		*out = append(*out, ErrorDetail{
			Path:    verr.InstanceLocation,
			Keyword: keyword,
			Message: verr.Message,
		})
		return
	}
	for _, cause := range verr.Causes {
		collectLeaves(cause, out)
	}
}

func keywordOf(location string) string {
	location = strings.TrimSuffix(location, "/")
	idx := strings.LastIndex(location, "/")
	keyword := location[idx+1:]
	if keyword == "" {
		return "schema"
	}
	return keyword
}
