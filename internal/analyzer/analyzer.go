package analyzer

import (
	"github.com/mcncl/jsonshape/internal/models"
)

// Options controls inference.
type Options struct {
	// AdditionalProperties is recorded on every inferred object type.
	AdditionalProperties bool
}

// Analyzer infers a models.Type from a sample value. It keeps no state
// between calls and is safe for concurrent use.
type Analyzer struct {
	options Options
}

// NewAnalyzer creates a new Analyzer instance with default options.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// NewAnalyzerWithOptions creates a new Analyzer instance with custom options.
func NewAnalyzerWithOptions(opts Options) *Analyzer {
	return &Analyzer{options: opts}
}

// Infer returns the structural type of v. It never fails: value kinds it
// does not recognize become models.UnknownType.
func (a *Analyzer) Infer(v models.Value) models.Type {
	switch val := v.(type) {
	case nil, models.Null:
		return models.NullType{}
	case models.Bool:
		return models.BooleanType{}
	case models.Number:
		return models.NumberType{Integer: val.IsInteger()}
	case models.String:
		return models.StringType{Example: string(val)}
	case models.Array:
		return a.inferArray(val)
	case *models.Object:
		return a.inferObject(val)
	default:
		return models.UnknownType{}
	}
}

func (a *Analyzer) inferObject(obj *models.Object) models.Type {
	props := make([]models.Property, 0, obj.Len())
	for _, key := range obj.Keys() {
		val, _ := obj.Get(key)
		props = append(props, models.Property{
			Name:     key,
			Type:     a.Infer(val),
			Required: !models.IsNull(val),
		})
	}
	return models.ObjectType{
		Properties:           props,
		AdditionalProperties: a.options.AdditionalProperties,
	}
}

// inferArray picks the element type. All-object arrays are merged
// first-wins; arrays of one other kind take the first element's type;
// mixed kinds become a union of every element's type.
func (a *Analyzer) inferArray(arr models.Array) models.Type {
	if len(arr) == 0 {
		return models.ArrayType{Elem: models.UnknownType{}}
	}

	firstKind := kindOf(arr[0])
	uniform := true
	for _, elem := range arr[1:] {
		if kindOf(elem) != firstKind {
			uniform = false
			break
		}
	}

	if !uniform {
		variants := make([]models.Type, 0, len(arr))
		for _, elem := range arr {
			variants = append(variants, a.Infer(elem))
		}
		return models.ArrayType{Elem: models.UnionType{Variants: variants}}
	}

	if firstKind == models.KindObject {
		objects := make([]*models.Object, 0, len(arr))
		for _, elem := range arr {
			objects = append(objects, elem.(*models.Object))
		}
		return models.ArrayType{Elem: a.mergeObjects(objects)}
	}

	return models.ArrayType{Elem: a.Infer(arr[0])}
}

// mergeObjects builds one representative object from several samples. A
// key's type comes from the first sample that contains the key; later
// samples only contribute keys not seen before. Required-ness is read from
// the first sample alone, so keys it lacks are never required.
func (a *Analyzer) mergeObjects(objects []*models.Object) models.ObjectType {
	seen := make(map[string]struct{})
	props := make([]models.Property, 0)
	for i, obj := range objects {
		for _, key := range obj.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			val, _ := obj.Get(key)
			props = append(props, models.Property{
				Name:     key,
				Type:     a.Infer(val),
				Required: i == 0 && !models.IsNull(val),
			})
		}
	}
	return models.ObjectType{
		Properties:           props,
		AdditionalProperties: a.options.AdditionalProperties,
	}
}

func kindOf(v models.Value) models.Kind {
	if v == nil {
		return models.KindNull
	}
	return v.Kind()
}
