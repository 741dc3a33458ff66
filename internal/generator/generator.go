// Package generator renders an inferred models.Type into a target schema
// language. Every target is an Emitter; the three implementations share one
// dispatch over the type variants.
package generator

import (
	"fmt"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/models"
)

// Format names an output schema language.
type Format string

const (
	FormatJSONSchema      Format = "json-schema"
	FormatSchemaSource    Format = "schema-source"
	FormatInterfaceSource Format = "interface-source"
)

// DefaultRootName is used by the interface emitter when Options.RootName is empty.
const DefaultRootName = "Root"

// Options controls what an emitter produces.
type Options struct {
	// Required enables required markers for properties whose sample was
	// present and non-null. When false every property is optional.
	Required bool
	// AdditionalProperties allows unknown keys on every object, on top of
	// the flag recorded in the type itself.
	AdditionalProperties bool
	// IncludeExamples adds the sampled string to JSON Schema string types.
	IncludeExamples bool
	// RootName names the top-level interface. It is converted to PascalCase.
	RootName string
	// TypeName turns a JSON key into an interface name fragment. Defaults
	// to strcase.ToCamel.
	TypeName func(key string) string
}

func (o Options) rootName() string {
	name := strcase.ToCamel(o.RootName)
	if name == "" {
		return DefaultRootName
	}
	return name
}

func (o Options) typeName(key string) string {
	if o.TypeName != nil {
		return o.TypeName(key)
	}
	name := strcase.ToCamel(key)
	if name == "" {
		return "Field"
	}
	return name
}

func (o Options) optional(p models.Property) bool {
	return !(o.Required && p.Required)
}

// Output is the rendered schema. Document is set for JSON Schema, Text for
// the source formats.
type Output struct {
	Format   Format
	Document *models.Object
	Text     string
}

// Value returns the output as a JSON value: the document itself, or the
// source text as a string.
func (o Output) Value() models.Value {
	if o.Document != nil {
		return o.Document
	}
	return models.String(o.Text)
}

// Emitter renders a type into one schema language.
type Emitter interface {
	Format() Format
	Emit(t models.Type, opts Options) (Output, error)
}

// NewEmitter returns the emitter for format.
func NewEmitter(format Format) (Emitter, error) {
	switch format {
	case FormatJSONSchema:
		return JSONSchemaEmitter{}, nil
	case FormatSchemaSource:
		return SchemaSourceEmitter{}, nil
	case FormatInterfaceSource:
		return InterfaceSourceEmitter{}, nil
	default:
		return nil, errors.NewUnsupportedError(fmt.Sprintf("unknown format %q", format), errors.ErrUnsupportedFormat)
	}
}

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatJSONSchema, FormatSchemaSource, FormatInterfaceSource}
}

// renderer is implemented once per target language. R is what the target
// builds for a single type: an object node or an expression string.
type renderer[R any] interface {
	unknown() R
	null() R
	boolean() R
	number(t models.NumberType) R
	str(t models.StringType) R
	array(t models.ArrayType) R
	object(t models.ObjectType) R
	union(t models.UnionType) R
}

// render dispatches t to the matching renderer method.
func render[R any](r renderer[R], t models.Type) R {
	switch typ := t.(type) {
	case models.NullType:
		return r.null()
	case models.BooleanType:
		return r.boolean()
	case models.NumberType:
		return r.number(typ)
	case models.StringType:
		return r.str(typ)
	case models.ArrayType:
		return r.array(typ)
	case models.ObjectType:
		return r.object(typ)
	case models.UnionType:
		return r.union(typ)
	default:
		return r.unknown()
	}
}

// dedupe drops rendered variants whose emitted form was already seen,
// keeping first occurrences in order.
func dedupe[R any](variants []R, key func(R) string) []R {
	seen := make(map[string]struct{}, len(variants))
	out := make([]R, 0, len(variants))
	for _, v := range variants {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

func checkModel(t models.Type) error {
	if t == nil {
		return errors.NewEmitError("type model is nil", nil)
	}
	return nil
}
