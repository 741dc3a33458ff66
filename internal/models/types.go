package models

// TypeKind identifies a TypeModel variant.
type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeArray
	TypeObject
	TypeUnion
)

// String returns the lowercase name of the kind.
func (k TypeKind) String() string {
	switch k {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeUnion:
		return "union"
	default:
		return "unknown"
	}
}

// Type is the inferred structural type of a sample value. Like Value it is a
// closed sum type and is never mutated after the analyzer returns it.
type Type interface {
	TypeKind() TypeKind
}

// UnknownType is an unconstrained leaf.
type UnknownType struct{}

// NullType matches only null.
type NullType struct{}

// BooleanType matches true and false.
type BooleanType struct{}

// NumberType matches numbers. Integer records whether the sample was an
// exact integer.
type NumberType struct {
	Integer bool
}

// StringType matches strings. Example is the sampled string.
type StringType struct {
	Example string
}

// ArrayType is a homogeneous array.
type ArrayType struct {
	Elem Type
}

// Property is one key of an ObjectType.
type Property struct {
	Name     string
	Type     Type
	Required bool
}

// ObjectType lists properties in first-seen key order.
type ObjectType struct {
	Properties           []Property
	AdditionalProperties bool
}

// UnionType is the element type of an array whose elements differ in kind.
type UnionType struct {
	Variants []Type
}

func (UnknownType) TypeKind() TypeKind { return TypeUnknown }
func (NullType) TypeKind() TypeKind    { return TypeNull }
func (BooleanType) TypeKind() TypeKind { return TypeBoolean }
func (NumberType) TypeKind() TypeKind  { return TypeNumber }
func (StringType) TypeKind() TypeKind  { return TypeString }
func (ArrayType) TypeKind() TypeKind   { return TypeArray }
func (ObjectType) TypeKind() TypeKind  { return TypeObject }
func (UnionType) TypeKind() TypeKind   { return TypeUnion }

// Property returns the property with the given name.
func (o ObjectType) Property(name string) (Property, bool) {
	for _, p := range o.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// RequiredNames returns the names of required properties in order.
func (o ObjectType) RequiredNames() []string {
	names := make([]string, 0, len(o.Properties))
	for _, p := range o.Properties {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}
