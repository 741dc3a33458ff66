// Package schema parses schema-source modules (the Zod-style text written by
// the schema-source emitter) back into a models.Type tree.
package schema

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/models"
)

// Module is a parsed schema-source module.
type Module struct {
	// Name is the declared constant, or empty for a bare expression.
	Name string
	// Root is the schema expression. Objects carry Required per property and
	// AdditionalProperties for passthrough/strip objects.
	Root models.Type
}

// expr is a schema expression plus the optional marker that only matters
// when the expression is an object property.
type expr struct {
	typ      models.Type
	optional bool
}

type parser struct {
	s       scanner.Scanner
	tok     rune
	text    string
	pos     scanner.Position
	scanErr error
}

// Parse parses either a full module (import line, `export const name = ...;`)
// or a bare `z.` expression.
func Parse(src string) (*Module, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.NewCompileError("schema source is empty", errors.ErrMalformedSchema)
	}

	p := &parser{}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	p.s.IsIdentRune = isIdentRune
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.scanErr == nil {
			pos := s.Pos()
			p.scanErr = compileError(pos, msg)
		}
	}
	p.next()

	mod, err := p.parseModule()
	if p.scanErr != nil {
		return nil, p.scanErr
	}
	if err != nil {
		return nil, err
	}
	return mod, nil
}

// ParseType is Parse for callers that only need the root type.
func ParseType(src string) (models.Type, error) {
	mod, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return mod.Root, nil
}

func isIdentRune(ch rune, i int) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch) || (unicode.IsDigit(ch) && i > 0)
}

func compileError(pos scanner.Position, msg string) error {
	return errors.NewCompileError(fmt.Sprintf("%d:%d: %s", pos.Line, pos.Column, msg), errors.ErrMalformedSchema)
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.text = p.s.TokenText()
	p.pos = p.s.Position
}

func (p *parser) errorf(format string, args ...any) error {
	return compileError(p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) describe() string {
	if p.tok == scanner.EOF {
		return "end of input"
	}
	return strconv.Quote(p.text)
}

func (p *parser) isIdent(name string) bool {
	return p.tok == scanner.Ident && p.text == name
}

func (p *parser) expect(tok rune) error {
	if p.tok != tok {
		return p.errorf("expected %q, found %s", string(tok), p.describe())
	}
	p.next()
	return nil
}

func (p *parser) ident() (string, error) {
	if p.tok != scanner.Ident {
		return "", p.errorf("expected identifier, found %s", p.describe())
	}
	name := p.text
	p.next()
	return name, nil
}

func (p *parser) parseModule() (*Module, error) {
	mod := &Module{}

	if p.isIdent("import") {
		if err := p.skipImport(); err != nil {
			return nil, err
		}
	}
	if p.isIdent("export") {
		p.next()
	}
	if p.isIdent("const") || p.isIdent("let") || p.isIdent("var") {
		p.next()
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		mod.Name = name
		if err := p.expect('='); err != nil {
			return nil, err
		}
	}

	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	mod.Root = e.typ

	if p.tok == ';' {
		p.next()
	}
	if p.tok != scanner.EOF {
		return nil, p.errorf("unexpected %s after schema expression", p.describe())
	}
	return mod, nil
}

// skipImport consumes an import statement up to and including its module
// specifier string and an optional semicolon.
func (p *parser) skipImport() error {
	for p.tok != scanner.String {
		if p.tok == scanner.EOF {
			return p.errorf("unterminated import statement")
		}
		p.next()
	}
	p.next()
	if p.tok == ';' {
		p.next()
	}
	return nil
}

func (p *parser) parseExpr() (expr, error) {
	if !p.isIdent("z") {
		return expr{}, p.errorf("expected schema expression starting with z, found %s", p.describe())
	}
	p.next()
	if err := p.expect('.'); err != nil {
		return expr{}, err
	}
	factoryPos := p.pos
	name, err := p.ident()
	if err != nil {
		return expr{}, err
	}
	if err := p.expect('('); err != nil {
		return expr{}, err
	}

	var e expr
	switch name {
	case "string":
		e.typ = models.StringType{}
	case "number":
		e.typ = models.NumberType{}
	case "boolean":
		e.typ = models.BooleanType{}
	case "null":
		e.typ = models.NullType{}
	case "unknown", "any":
		e.typ = models.UnknownType{}
	case "array":
		elem, err := p.parseExpr()
		if err != nil {
			return expr{}, err
		}
		e.typ = models.ArrayType{Elem: elem.typ}
	case "object":
		obj, err := p.parseShape()
		if err != nil {
			return expr{}, err
		}
		e.typ = obj
	case "union":
		union, err := p.parseUnion()
		if err != nil {
			return expr{}, err
		}
		e.typ = union
	default:
		return expr{}, compileError(factoryPos, fmt.Sprintf("unsupported schema type z.%s", name))
	}
	if err := p.expect(')'); err != nil {
		return expr{}, err
	}

	for p.tok == '.' {
		p.next()
		methodPos := p.pos
		method, err := p.ident()
		if err != nil {
			return expr{}, err
		}
		if err := p.expect('('); err != nil {
			return expr{}, err
		}
		if err := p.expect(')'); err != nil {
			return expr{}, err
		}
		if e, err = applyMethod(e, method); err != nil {
			return expr{}, compileError(methodPos, err.Error())
		}
	}
	return e, nil
}

func (p *parser) parseShape() (models.ObjectType, error) {
	if err := p.expect('{'); err != nil {
		return models.ObjectType{}, err
	}

	props := make([]models.Property, 0)
	seen := make(map[string]struct{})
	for p.tok != '}' {
		keyPos := p.pos
		var key string
		switch p.tok {
		case scanner.Ident:
			key = p.text
		case scanner.String:
			unquoted, err := strconv.Unquote(p.text)
			if err != nil {
				return models.ObjectType{}, p.errorf("invalid property key %s", p.text)
			}
			key = unquoted
		default:
			return models.ObjectType{}, p.errorf("expected property key, found %s", p.describe())
		}
		p.next()
		if _, dup := seen[key]; dup {
			return models.ObjectType{}, compileError(keyPos, fmt.Sprintf("duplicate property %q", key))
		}
		seen[key] = struct{}{}

		if err := p.expect(':'); err != nil {
			return models.ObjectType{}, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return models.ObjectType{}, err
		}
		props = append(props, models.Property{Name: key, Type: value.typ, Required: !value.optional})

		if p.tok != ',' {
			break
		}
		p.next()
	}
	if err := p.expect('}'); err != nil {
		return models.ObjectType{}, err
	}

	// Unknown keys are stripped, not rejected, unless .strict() follows.
	return models.ObjectType{Properties: props, AdditionalProperties: true}, nil
}

func (p *parser) parseUnion() (models.UnionType, error) {
	if err := p.expect('['); err != nil {
		return models.UnionType{}, err
	}
	startPos := p.pos

	variants := make([]models.Type, 0, 2)
	for p.tok != ']' {
		option, err := p.parseExpr()
		if err != nil {
			return models.UnionType{}, err
		}
		variants = append(variants, option.typ)
		if p.tok != ',' {
			break
		}
		p.next()
	}
	if err := p.expect(']'); err != nil {
		return models.UnionType{}, err
	}
	if len(variants) < 2 {
		return models.UnionType{}, compileError(startPos, "z.union needs at least two options")
	}
	return models.UnionType{Variants: variants}, nil
}

func applyMethod(e expr, method string) (expr, error) {
	switch method {
	case "optional":
		e.optional = true
	case "nullable":
		e.typ = nullable(e.typ)
	case "nullish":
		e.typ = nullable(e.typ)
		e.optional = true
	case "int":
		num, ok := e.typ.(models.NumberType)
		if !ok {
			return e, fmt.Errorf(".int() applies only to z.number(), not %s", e.typ.TypeKind())
		}
		num.Integer = true
		e.typ = num
	case "strict", "passthrough", "strip":
		obj, ok := e.typ.(models.ObjectType)
		if !ok {
			return e, fmt.Errorf(".%s() applies only to z.object(), not %s", method, e.typ.TypeKind())
		}
		obj.AdditionalProperties = method != "strict"
		e.typ = obj
	case "array":
		e = expr{typ: models.ArrayType{Elem: e.typ}}
	default:
		return e, fmt.Errorf("unsupported method .%s()", method)
	}
	return e, nil
}

func nullable(t models.Type) models.Type {
	switch typ := t.(type) {
	case models.NullType, models.UnknownType:
		return t
	case models.UnionType:
		for _, v := range typ.Variants {
			if _, isNull := v.(models.NullType); isNull {
				return t
			}
		}
		variants := make([]models.Type, 0, len(typ.Variants)+1)
		variants = append(variants, typ.Variants...)
		return models.UnionType{Variants: append(variants, models.NullType{})}
	default:
		return models.UnionType{Variants: []models.Type{t, models.NullType{}}}
	}
}
