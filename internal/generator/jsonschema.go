package generator

import (
	"github.com/mcncl/jsonshape/internal/models"
)

// JSONSchemaEmitter renders a type as a JSON Schema document.
type JSONSchemaEmitter struct{}

func (JSONSchemaEmitter) Format() Format { return FormatJSONSchema }

// Emit returns the schema as an ordered object so that property order
// matches the sample.
func (JSONSchemaEmitter) Emit(t models.Type, opts Options) (Output, error) {
	if err := checkModel(t); err != nil {
		return Output{}, err
	}
	doc := render[*models.Object](jsonSchemaRenderer{opts: opts}, t)
	return Output{Format: FormatJSONSchema, Document: doc}, nil
}

type jsonSchemaRenderer struct {
	opts Options
}

func typed(name string) *models.Object {
	return models.NewObject().Set("type", models.String(name))
}

func (jsonSchemaRenderer) unknown() *models.Object { return models.NewObject() }
func (jsonSchemaRenderer) null() *models.Object    { return typed("null") }
func (jsonSchemaRenderer) boolean() *models.Object { return typed("boolean") }

func (jsonSchemaRenderer) number(models.NumberType) *models.Object { return typed("number") }

func (r jsonSchemaRenderer) str(t models.StringType) *models.Object {
	node := typed("string")
	if r.opts.IncludeExamples {
		node.Set("examples", models.Array{models.String(t.Example)})
	}
	return node
}

func (r jsonSchemaRenderer) array(t models.ArrayType) *models.Object {
	return typed("array").Set("items", render[*models.Object](r, t.Elem))
}

func (r jsonSchemaRenderer) object(t models.ObjectType) *models.Object {
	props := models.NewObject()
	required := models.Array{}
	for _, p := range t.Properties {
		props.Set(p.Name, render[*models.Object](r, p.Type))
		if !r.opts.optional(p) {
			required = append(required, models.String(p.Name))
		}
	}

	node := typed("object").
		Set("properties", props).
		Set("additionalProperties", models.Bool(t.AdditionalProperties || r.opts.AdditionalProperties))
	if len(required) > 0 {
		node.Set("required", required)
	}
	return node
}

func (r jsonSchemaRenderer) union(t models.UnionType) *models.Object {
	variants := make([]*models.Object, 0, len(t.Variants))
	for _, v := range t.Variants {
		variants = append(variants, render[*models.Object](r, v))
	}
	variants = dedupe(variants, canonicalJSON)
	if len(variants) == 1 {
		return variants[0]
	}

	oneOf := make(models.Array, 0, len(variants))
	for _, v := range variants {
		oneOf = append(oneOf, v)
	}
	return models.NewObject().Set("oneOf", oneOf)
}

func canonicalJSON(node *models.Object) string {
	data, err := models.MarshalValue(node)
	if err != nil {
		return ""
	}
	return string(data)
}
