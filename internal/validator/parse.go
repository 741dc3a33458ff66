package validator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/models"
	"github.com/mcncl/jsonshape/internal/schema"
)

// Issue codes reported by the parse-based backend.
const (
	CodeInvalidType      = "invalid_type"
	CodeRequired         = "required"
	CodeUnrecognizedKeys = "unrecognized_keys"
	CodeInvalidUnion     = "invalid_union"
	CodeNotInteger       = "not_integer"
)

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func validateParseBased(data, src models.Value) ([]ErrorDetail, error) {
	text, ok := src.(models.String)
	if !ok {
		return nil, errors.NewCompileError(
			fmt.Sprintf("parse-based schema must be schema-source text, got %s", kindName(src)),
			errors.ErrMalformedSchema,
		)
	}

	root, err := schema.ParseType(string(text))
	if err != nil {
		return nil, err
	}

	c := &checker{}
	c.check(data, root, "")
	return c.details, nil
}

// checker walks a value and a parsed schema together and records every
// failing field.
type checker struct {
	details []ErrorDetail
}

func (c *checker) add(path, code, format string, args ...any) {
	c.details = append(c.details, ErrorDetail{Path: path, Keyword: code, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) invalidType(path string, expected models.TypeKind, v models.Value) {
	c.add(path, CodeInvalidType, "Expected %s, received %s", expected, kindName(orNull(v)))
}

func (c *checker) check(v models.Value, t models.Type, path string) {
	switch typ := t.(type) {
	case models.NullType:
		if !models.IsNull(v) {
			c.invalidType(path, typ.TypeKind(), v)
		}
	case models.BooleanType:
		if _, ok := v.(models.Bool); !ok {
			c.invalidType(path, typ.TypeKind(), v)
		}
	case models.NumberType:
		n, ok := v.(models.Number)
		if !ok {
			c.invalidType(path, typ.TypeKind(), v)
			return
		}
		if typ.Integer && !n.IsInteger() {
			c.add(path, CodeNotInteger, "Expected integer, received float")
		}
	case models.StringType:
		if _, ok := v.(models.String); !ok {
			c.invalidType(path, typ.TypeKind(), v)
		}
	case models.ArrayType:
		arr, ok := v.(models.Array)
		if !ok {
			c.invalidType(path, typ.TypeKind(), v)
			return
		}
		for i, elem := range arr {
			c.check(elem, typ.Elem, path+"/"+strconv.Itoa(i))
		}
	case models.ObjectType:
		obj, ok := v.(*models.Object)
		if !ok {
			c.invalidType(path, typ.TypeKind(), v)
			return
		}
		c.checkObject(obj, typ, path)
	case models.UnionType:
		for _, variant := range typ.Variants {
			sub := &checker{}
			sub.check(v, variant, path)
			if len(sub.details) == 0 {
				return
			}
		}
		c.add(path, CodeInvalidUnion, "Invalid input: %s matches none of %d union options", kindName(orNull(v)), len(typ.Variants))
	}
}

func (c *checker) checkObject(obj *models.Object, typ models.ObjectType, path string) {
	known := make(map[string]struct{}, len(typ.Properties))
	for _, p := range typ.Properties {
		known[p.Name] = struct{}{}
		childPath := path + "/" + pointerEscaper.Replace(p.Name)

		val, present := obj.Get(p.Name)
		if !present {
			if p.Required {
				c.add(childPath, CodeRequired, "Required")
			}
			continue
		}
		c.check(val, p.Type, childPath)
	}

	if typ.AdditionalProperties {
		return
	}
	unknown := make([]string, 0)
	for _, key := range obj.Keys() {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, "'"+key+"'")
		}
	}
	if len(unknown) > 0 {
		c.add(path, CodeUnrecognizedKeys, "Unrecognized key(s) in object: %s", strings.Join(unknown, ", "))
	}
}

func orNull(v models.Value) models.Value {
	if v == nil {
		return models.Null{}
	}
	return v
}
