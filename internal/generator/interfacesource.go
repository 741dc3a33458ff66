package generator

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsonshape/internal/models"
)

// InterfaceSourceEmitter renders a type as TypeScript-style interface
// declarations. Nested interfaces are declared before the interfaces that
// reference them.
type InterfaceSourceEmitter struct{}

func (InterfaceSourceEmitter) Format() Format { return FormatInterfaceSource }

func (InterfaceSourceEmitter) Emit(t models.Type, opts Options) (Output, error) {
	if err := checkModel(t); err != nil {
		return Output{}, err
	}
	st := &interfaceState{
		opts:      opts,
		variants:  make(map[string][]string),
		bodies:    make(map[string]string),
		declOrder: make([]string, 0),
	}
	root := opts.rootName()
	typeExpr := render[string](interfaceRenderer{st: st, name: root}, t)

	// Non-object roots, and empty objects, are exported as aliases.
	if _, declared := st.bodies[root]; !declared || typeExpr != root {
		st.declOrder = append(st.declOrder, fmt.Sprintf("export type %s = %s;\n", root, typeExpr))
	}

	return Output{Format: FormatInterfaceSource, Text: strings.Join(st.declOrder, "\n")}, nil
}

type interfaceState struct {
	opts Options
	// variants lists the names declared for each base name.
	variants map[string][]string
	// bodies maps every declared interface name to its body.
	bodies    map[string]string
	declOrder []string
}

// declare registers an interface and returns its final name. An identical
// body already declared under the same base name is reused. Otherwise the
// base name, or the first numbered form of it, that no declaration uses yet
// is taken.
func (st *interfaceState) declare(baseName, body string) string {
	for _, candidate := range st.variants[baseName] {
		if st.bodies[candidate] == body {
			return candidate
		}
	}

	name := baseName
	for i := 1; ; i++ {
		if _, taken := st.bodies[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s%d", baseName, i)
	}
	st.variants[baseName] = append(st.variants[baseName], name)
	st.bodies[name] = body

	b := NewBuilder("  ")
	b.Block(fmt.Sprintf("export interface %s {", name), "}", func() {
		b.Line(body)
	})
	st.declOrder = append(st.declOrder, b.String())
	return name
}

type interfaceRenderer struct {
	st *interfaceState
	// name is the interface name an object at this position would get.
	name string
}

func (r interfaceRenderer) at(name string) interfaceRenderer {
	return interfaceRenderer{st: r.st, name: name}
}

func (interfaceRenderer) unknown() string { return "any" }
func (interfaceRenderer) null() string    { return "null" }
func (interfaceRenderer) boolean() string { return "boolean" }

func (interfaceRenderer) number(models.NumberType) string { return "number" }
func (interfaceRenderer) str(models.StringType) string    { return "string" }

func (r interfaceRenderer) array(t models.ArrayType) string {
	elem := render[string](r.at(r.name+"Item"), t.Elem)
	if _, isUnion := t.Elem.(models.UnionType); isUnion && strings.Contains(elem, " | ") {
		return "(" + elem + ")[]"
	}
	return elem + "[]"
}

func (r interfaceRenderer) object(t models.ObjectType) string {
	if len(t.Properties) == 0 {
		return "Record<string, unknown>"
	}

	fields := make([]string, 0, len(t.Properties))
	for _, p := range t.Properties {
		fieldType := render[string](r.at(r.name+r.st.opts.typeName(p.Name)), p.Type)
		marker := ""
		if r.st.opts.optional(p) {
			marker = "?"
		}
		fields = append(fields, fmt.Sprintf("%s%s: %s;", propertyKey(p.Name), marker, fieldType))
	}
	return r.st.declare(r.name, strings.Join(fields, "\n"))
}

func (r interfaceRenderer) union(t models.UnionType) string {
	variants := make([]string, 0, len(t.Variants))
	for _, v := range t.Variants {
		variants = append(variants, render[string](r, v))
	}
	variants = dedupe(variants, func(s string) string { return s })
	return strings.Join(variants, " | ")
}
