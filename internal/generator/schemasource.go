package generator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mcncl/jsonshape/internal/models"
)

// SchemaImport is the first line of every schema-source module.
const SchemaImport = `import { z } from "zod";`

// SchemaExportName is the exported constant holding the schema expression.
const SchemaExportName = "schema"

var identifierRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// SchemaSourceEmitter renders a type as a Zod-style validation module.
type SchemaSourceEmitter struct{}

func (SchemaSourceEmitter) Format() Format { return FormatSchemaSource }

func (SchemaSourceEmitter) Emit(t models.Type, opts Options) (Output, error) {
	if err := checkModel(t); err != nil {
		return Output{}, err
	}
	expr := render[string](schemaSourceRenderer{opts: opts}, t)

	b := NewBuilder("  ")
	b.Line(SchemaImport)
	b.Blank()
	b.Line("export const %s = %s;", SchemaExportName, expr)
	return Output{Format: FormatSchemaSource, Text: b.String()}, nil
}

type schemaSourceRenderer struct {
	opts Options
}

func (schemaSourceRenderer) unknown() string { return "z.unknown()" }
func (schemaSourceRenderer) null() string    { return "z.null()" }
func (schemaSourceRenderer) boolean() string { return "z.boolean()" }

func (schemaSourceRenderer) number(t models.NumberType) string {
	if t.Integer {
		return "z.number().int()"
	}
	return "z.number()"
}

func (schemaSourceRenderer) str(models.StringType) string { return "z.string()" }

func (r schemaSourceRenderer) array(t models.ArrayType) string {
	return "z.array(" + render[string](r, t.Elem) + ")"
}

func (r schemaSourceRenderer) object(t models.ObjectType) string {
	modifier := ".strict()"
	if t.AdditionalProperties || r.opts.AdditionalProperties {
		modifier = ".passthrough()"
	}
	if len(t.Properties) == 0 {
		return "z.object({})" + modifier
	}

	b := NewBuilder("  ")
	b.Block("z.object({", "})"+modifier, func() {
		for _, p := range t.Properties {
			expr := render[string](r, p.Type)
			if r.opts.optional(p) {
				expr += ".optional()"
			}
			b.Line("%s: %s,", propertyKey(p.Name), expr)
		}
	})
	return strings.TrimSuffix(b.String(), "\n")
}

func (r schemaSourceRenderer) union(t models.UnionType) string {
	variants := make([]string, 0, len(t.Variants))
	for _, v := range t.Variants {
		variants = append(variants, render[string](r, v))
	}
	variants = dedupe(variants, func(s string) string { return s })
	if len(variants) == 1 {
		return variants[0]
	}
	return "z.union([" + strings.Join(variants, ", ") + "])"
}

// propertyKey quotes keys that are not plain identifiers.
func propertyKey(name string) string {
	if identifierRegex.MatchString(name) {
		return name
	}
	return strconv.Quote(name)
}
