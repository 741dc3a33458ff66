package generator

import (
	stderrors "errors"
	"testing"

	"github.com/mcncl/jsonshape/internal/analyzer"
	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/models"
	"github.com/mcncl/jsonshape/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inferString(t *testing.T, jsonInput string) models.Type {
	t.Helper()
	v, err := parser.ParseString(jsonInput)
	require.NoError(t, err)
	return analyzer.NewAnalyzer().Infer(v)
}

func emitJSONSchema(t *testing.T, typ models.Type, opts Options) string {
	t.Helper()
	out, err := JSONSchemaEmitter{}.Emit(typ, opts)
	require.NoError(t, err)
	require.NotNil(t, out.Document)
	data, err := models.MarshalValue(out.Document)
	require.NoError(t, err)
	return string(data)
}

func emitText(t *testing.T, e Emitter, typ models.Type, opts Options) string {
	t.Helper()
	out, err := e.Emit(typ, opts)
	require.NoError(t, err)
	assert.Nil(t, out.Document)
	return out.Text
}

func TestNewEmitter(t *testing.T) {
	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			e, err := NewEmitter(format)
			require.NoError(t, err)
			assert.Equal(t, format, e.Format())
		})
	}

	_, err := NewEmitter("protobuf")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFormat))
	assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeUnsupported}))
}

func TestEmit_NilModel(t *testing.T) {
	for _, format := range Formats() {
		e, err := NewEmitter(format)
		require.NoError(t, err)
		_, err = e.Emit(nil, Options{})
		assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeEmit}), "format %s", format)
	}
}

func TestJSONSchema(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		expected string
	}{
		{
			name:     "required marks present non-null keys",
			input:    `{"a": 1, "b": null}`,
			opts:     Options{Required: true},
			expected: `{"type":"object","properties":{"a":{"type":"number"},"b":{"type":"null"}},"additionalProperties":false,"required":["a"]}`,
		},
		{
			name:     "required disabled omits the keyword",
			input:    `{"a": 1, "b": null}`,
			expected: `{"type":"object","properties":{"a":{"type":"number"},"b":{"type":"null"}},"additionalProperties":false}`,
		},
		{
			name:     "mixed array becomes oneOf",
			input:    `[1, "x", true]`,
			expected: `{"type":"array","items":{"oneOf":[{"type":"number"},{"type":"string"},{"type":"boolean"}]}}`,
		},
		{
			name:     "variants with the same emitted form collapse",
			input:    `[1, 2.5, "x"]`,
			expected: `{"type":"array","items":{"oneOf":[{"type":"number"},{"type":"string"}]}}`,
		},
		{
			name:     "first element decides required keys",
			input:    `[{"a": 1}, {"b": 2}]`,
			opts:     Options{Required: true},
			expected: `{"type":"array","items":{"type":"object","properties":{"a":{"type":"number"},"b":{"type":"number"}},"additionalProperties":false,"required":["a"]}}`,
		},
		{
			name:     "empty array has unconstrained items",
			input:    `[]`,
			expected: `{"type":"array","items":{}}`,
		},
		{
			name:     "empty object",
			input:    `{}`,
			expected: `{"type":"object","properties":{},"additionalProperties":false}`,
		},
		{
			name:     "additional properties allowed",
			input:    `{"a": {"b": true}}`,
			opts:     Options{AdditionalProperties: true},
			expected: `{"type":"object","properties":{"a":{"type":"object","properties":{"b":{"type":"boolean"}},"additionalProperties":true}},"additionalProperties":true}`,
		},
		{
			name:     "string examples",
			input:    `{"name": "jsonshape"}`,
			opts:     Options{IncludeExamples: true},
			expected: `{"type":"object","properties":{"name":{"type":"string","examples":["jsonshape"]}},"additionalProperties":false}`,
		},
		{
			name:     "scalar root",
			input:    `"hello"`,
			expected: `{"type":"string"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, emitJSONSchema(t, inferString(t, tt.input), tt.opts))
		})
	}
}

func TestJSONSchema_PropertyOrderFollowsSample(t *testing.T) {
	out, err := JSONSchemaEmitter{}.Emit(inferString(t, `{"zeta": 1, "alpha": 2, "mid": 3}`), Options{})
	require.NoError(t, err)

	props, ok := out.Document.Get("properties")
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, props.(*models.Object).Keys())
	assert.Equal(t, []string{"type", "properties", "additionalProperties"}, out.Document.Keys())
}

func TestJSONSchema_SingleVariantUnionIsBare(t *testing.T) {
	typ := models.UnionType{Variants: []models.Type{
		models.NumberType{Integer: true},
		models.NumberType{Integer: false},
	}}
	assert.Equal(t, `{"type":"number"}`, emitJSONSchema(t, typ, Options{}))
}

func TestSchemaSource(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		expected string
	}{
		{
			name:  "required and optional properties",
			input: `{"a": 1, "b": null}`,
			opts:  Options{Required: true},
			expected: `import { z } from "zod";

export const schema = z.object({
  a: z.number().int(),
  b: z.null().optional(),
}).strict();
`,
		},
		{
			name:  "everything optional by default",
			input: `{"price": 9.5, "tags": ["x"]}`,
			expected: `import { z } from "zod";

export const schema = z.object({
  price: z.number().optional(),
  tags: z.array(z.string()).optional(),
}).strict();
`,
		},
		{
			name:  "nested objects indent",
			input: `{"user": {"id": 1, "active": true}}`,
			opts:  Options{Required: true},
			expected: `import { z } from "zod";

export const schema = z.object({
  user: z.object({
    id: z.number().int(),
    active: z.boolean(),
  }).strict(),
}).strict();
`,
		},
		{
			name:  "mixed array",
			input: `[1, "x", true]`,
			expected: `import { z } from "zod";

export const schema = z.array(z.union([z.number().int(), z.string(), z.boolean()]));
`,
		},
		{
			name:  "empty containers",
			input: `{"o": {}, "a": []}`,
			opts:  Options{Required: true, AdditionalProperties: true},
			expected: `import { z } from "zod";

export const schema = z.object({
  o: z.object({}).passthrough(),
  a: z.array(z.unknown()),
}).passthrough();
`,
		},
		{
			name:  "keys that are not identifiers are quoted",
			input: `{"first name": "a", "$ok": "b"}`,
			opts:  Options{Required: true},
			expected: `import { z } from "zod";

export const schema = z.object({
  "first name": z.string(),
  $ok: z.string(),
}).strict();
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, emitText(t, SchemaSourceEmitter{}, inferString(t, tt.input), tt.opts))
		})
	}
}

func TestInterfaceSource(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		expected string
	}{
		{
			name:  "required and optional properties",
			input: `{"a": 1, "b": null}`,
			opts:  Options{Required: true},
			expected: `export interface Root {
  a: number;
  b?: null;
}
`,
		},
		{
			name:  "nested interfaces come first",
			input: `{"id": 1, "profile": {"full_name": "x"}}`,
			opts:  Options{Required: true},
			expected: `export interface RootProfile {
  full_name: string;
}

export interface Root {
  id: number;
  profile: RootProfile;
}
`,
		},
		{
			name:  "array of objects at the root",
			input: `[{"a": 1}, {"b": 2}]`,
			opts:  Options{Required: true},
			expected: `export interface RootItem {
  a: number;
  b?: number;
}

export type Root = RootItem[];
`,
		},
		{
			name:     "mixed array alias",
			input:    `[1, "x", true]`,
			expected: "export type Root = (number | string | boolean)[];\n",
		},
		{
			name:     "empty containers",
			input:    `{}`,
			expected: "export type Root = Record<string, unknown>;\n",
		},
		{
			name:     "empty array",
			input:    `[]`,
			expected: "export type Root = any[];\n",
		},
		{
			name:  "custom root name",
			input: `{"ok": true}`,
			opts:  Options{RootName: "Response"},
			expected: `export interface Response {
  ok?: boolean;
}
`,
		},
		{
			name:  "root name is PascalCased",
			input: `{"tags": [{"id": 1}]}`,
			opts:  Options{RootName: "user_profile"},
			expected: `export interface UserProfileTagsItem {
  id?: number;
}

export interface UserProfile {
  tags?: UserProfileTagsItem[];
}
`,
		},
		{
			name:  "clashing names get a suffix",
			input: `{"user_id": {"x": 1}, "userId": {"y": "s"}}`,
			expected: `export interface RootUserId {
  x?: number;
}

export interface RootUserId1 {
  y?: string;
}

export interface Root {
  user_id?: RootUserId;
  userId?: RootUserId1;
}
`,
		},
		{
			name:  "suffixed name already used by another key",
			input: `{"a_b": {"x": 1}, "aB": {"y": 2}, "aB1": {"z": 3}}`,
			expected: `export interface RootAB {
  x?: number;
}

export interface RootAB1 {
  y?: number;
}

export interface RootAB11 {
  z?: number;
}

export interface Root {
  a_b?: RootAB;
  aB?: RootAB1;
  aB1?: RootAB11;
}
`,
		},
		{
			name:  "suffixed element name already used by a nested property",
			input: `[{"1": {"z": 1}}, "s", {"y": 2}]`,
			expected: `export interface RootItem1 {
  z?: number;
}

export interface RootItem {
  "1"?: RootItem1;
}

export interface RootItem2 {
  y?: number;
}

export type Root = (RootItem | string | RootItem2)[];
`,
		},
		{
			name:  "identical shapes are declared once",
			input: `{"user_id": {"x": 1}, "userId": {"x": 2}}`,
			expected: `export interface RootUserId {
  x?: number;
}

export interface Root {
  user_id?: RootUserId;
  userId?: RootUserId;
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, emitText(t, InterfaceSourceEmitter{}, inferString(t, tt.input), tt.opts))
		})
	}
}

func TestInterfaceSource_TypeNameMapping(t *testing.T) {
	opts := Options{
		Required: true,
		TypeName: func(key string) string {
			if key == "addr" {
				return "Address"
			}
			return "X"
		},
	}
	expected := `export interface RootAddress {
  city: string;
}

export interface Root {
  addr: RootAddress;
}
`
	assert.Equal(t, expected, emitText(t, InterfaceSourceEmitter{}, inferString(t, `{"addr": {"city": "x"}}`), opts))
}

func TestEmit_Idempotent(t *testing.T) {
	typ := inferString(t, `{"id": 1, "items": [{"sku": "a", "qty": 2}, {"sku": "b"}], "meta": null, "mixed": [1, "a"]}`)
	opts := Options{Required: true}

	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			e, err := NewEmitter(format)
			require.NoError(t, err)

			first, err := e.Emit(typ, opts)
			require.NoError(t, err)
			second, err := e.Emit(typ, opts)
			require.NoError(t, err)

			a, err := models.MarshalValue(first.Value())
			require.NoError(t, err)
			b, err := models.MarshalValue(second.Value())
			require.NoError(t, err)
			assert.Equal(t, string(a), string(b))
		})
	}
}

func TestOutput_Value(t *testing.T) {
	doc := models.NewObject().Set("type", models.String("null"))
	assert.Equal(t, doc, Output{Document: doc}.Value())
	assert.Equal(t, models.String("x"), Output{Text: "x"}.Value())
}

func TestBuilder(t *testing.T) {
	b := NewBuilder("\t")
	b.Line("start")
	b.Block("outer {", "}", func() {
		b.Line("a = %d", 1)
		b.Block("inner {", "}", func() {
			b.Line("first\n\nsecond")
		})
	})
	b.Blank()
	b.Line("100%")

	expected := "start\nouter {\n\ta = 1\n\tinner {\n\t\tfirst\n\n\t\tsecond\n\t}\n}\n\n100%\n"
	assert.Equal(t, expected, b.String())
}
