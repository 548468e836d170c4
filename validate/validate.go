package validate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/golangee/store"
	"github.com/golangee/store/schema"
)

// Validate checks v against s's root layout and returns nil on success
// or a *Diagnostic describing every independent failure found. It is
// equivalent to ValidateWithLogger(v, s, zap.NewNop()).
func Validate(v *store.Value, s *schema.Schema) error {
	return ValidateWithLogger(v, s, nil)
}

// ValidateWithLogger is Validate with an injectable collaborator. A
// dangling alias (one naming a type the schema never defines) does not
// fail validation — it is only ever observable through logger.Warn, per
// the library holding no process-wide state of its own. A nil logger
// behaves like zap.NewNop().
func ValidateWithLogger(v *store.Value, s *schema.Schema, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	root := &schema.Type{
		Name:        "[schema root layout]",
		Mode:        schema.ModeStruct,
		StructOrder: layoutOrder(s),
		Struct:      layoutElements(s),
	}

	v2 := &validator{schema: s, logger: logger}

	if d := v2.validateType(root, v, ""); d != nil {
		return d
	}

	return nil
}

func layoutOrder(s *schema.Schema) []string {
	out := make([]string, 0, len(s.Layout()))
	for _, e := range s.Layout() {
		out = append(out, e.Key)
	}

	return out
}

func layoutElements(s *schema.Schema) map[string]*schema.StructElement {
	out := map[string]*schema.StructElement{}
	for _, e := range s.Layout() {
		out[e.Key] = e
	}

	return out
}

type validator struct {
	schema *schema.Schema
	logger *zap.Logger
}

// validateType dispatches on type.Mode, mirroring the original
// validator's per-mode functions. Struct, Array, Sequence and Tuple
// drain every independently-visited branch before returning, instead of
// stopping at the first failing field or element, so a single Validate
// call reports everything wrong with v, not just the first problem.
func (v *validator) validateType(t *schema.Type, val *store.Value, path string) *Diagnostic {
	switch t.Mode {
	case schema.ModeInteger:
		return v.validateLeaf(t, val, path, store.KindInteger, "integer")
	case schema.ModeFloat:
		return v.validateLeaf(t, val, path, store.KindFloat, "float")
	case schema.ModeString:
		return v.validateLeaf(t, val, path, store.KindString, "string")
	case schema.ModeStruct:
		return v.validateStruct(t, val, path)
	case schema.ModeArray:
		return v.validateArray(t, val, path)
	case schema.ModeSequence:
		return v.validateSequence(t, val, path)
	case schema.ModeTuple:
		return v.validateTuple(t, val, path)
	case schema.ModeVariant:
		return v.validateVariant(t, val, path)
	case schema.ModeAlias:
		return v.validateAlias(t, val, path)
	case schema.ModeEnum:
		return v.validateEnum(t, val, path)
	default:
		return &Diagnostic{Path: path, Reason: fmt.Sprintf("schema type %q has unknown mode", t.Name)}
	}
}

func (v *validator) validateLeaf(t *schema.Type, val *store.Value, path string, want store.Kind, wantName string) *Diagnostic {
	if val.Kind() != want {
		return &Diagnostic{
			Path:   path,
			Reason: fmt.Sprintf("is not a %s, but should be of %s type %q", wantName, wantName, t.Name),
		}
	}

	return nil
}

func (v *validator) validateStruct(t *schema.Type, val *store.Value, path string) *Diagnostic {
	if !val.IsArray() {
		return &Diagnostic{Path: path, Reason: fmt.Sprintf("is not an array, but should be of struct type %q", t.Name)}
	}

	var children []*Diagnostic

	for _, key := range t.StructOrder {
		element := t.Struct[key]

		child, ok := val.Get(key)
		if !ok {
			if element.Required {
				children = append(children, &Diagnostic{
					Path:   joinPath(path, key),
					Reason: fmt.Sprintf("of struct type %q is required, but was not found", t.Name),
				})
			}

			continue
		}

		if d := v.validateType(element.Type, child, joinPath(path, key)); d != nil {
			children = append(children, d)
		}
	}

	if len(children) == 0 {
		return nil
	}

	return &Diagnostic{Path: path, Reason: fmt.Sprintf("does not satisfy struct type %q", t.Name), Children: children}
}

func (v *validator) validateArray(t *schema.Type, val *store.Value, path string) *Diagnostic {
	if !val.IsArray() {
		return &Diagnostic{Path: path, Reason: fmt.Sprintf("is not an array, but should be of array type %q", t.Name)}
	}

	var children []*Diagnostic

	for _, key := range val.Keys() {
		child, _ := val.Get(key)

		if d := v.validateType(t.Elem, child, joinPath(path, key)); d != nil {
			children = append(children, d)
		}
	}

	if len(children) == 0 {
		return nil
	}

	return &Diagnostic{Path: path, Reason: fmt.Sprintf("does not satisfy array type %q", t.Name), Children: children}
}

func (v *validator) validateSequence(t *schema.Type, val *store.Value, path string) *Diagnostic {
	if !val.IsList() {
		return &Diagnostic{Path: path, Reason: fmt.Sprintf("is not a list, but should be of sequence type %q", t.Name)}
	}

	var children []*Diagnostic

	for i, el := range val.Elements() {
		if d := v.validateType(t.Elem, el, joinIndex(path, i)); d != nil {
			children = append(children, d)
		}
	}

	if len(children) == 0 {
		return nil
	}

	return &Diagnostic{Path: path, Reason: fmt.Sprintf("does not satisfy sequence type %q", t.Name), Children: children}
}

// validateTuple requires an exact positional length match against
// t.Elems — unlike a sequence, a tuple's arity is part of its type, so
// both too few and too many elements are reported in addition to any
// per-position mismatches.
func (v *validator) validateTuple(t *schema.Type, val *store.Value, path string) *Diagnostic {
	if !val.IsList() {
		return &Diagnostic{Path: path, Reason: fmt.Sprintf("is not a list, but should be of tuple type %q", t.Name)}
	}

	elements := val.Elements()

	var children []*Diagnostic

	if len(elements) != len(t.Elems) {
		children = append(children, &Diagnostic{
			Path: path,
			Reason: fmt.Sprintf("has %d element(s), but tuple type %q needs exactly %d",
				len(elements), t.Name, len(t.Elems)),
		})
	}

	for i, subtype := range t.Elems {
		if i >= len(elements) {
			break
		}

		if d := v.validateType(subtype, elements[i], joinIndex(path, i)); d != nil {
			children = append(children, d)
		}
	}

	if len(children) == 0 {
		return nil
	}

	return &Diagnostic{Path: path, Reason: fmt.Sprintf("does not satisfy tuple type %q", t.Name), Children: children}
}

// validateVariant tries every subtype and accumulates every attempt,
// succeeding as soon as one subtype matches — the one mode where the
// original validator already accumulates across independent attempts
// rather than stopping at the first one.
func (v *validator) validateVariant(t *schema.Type, val *store.Value, path string) *Diagnostic {
	var attempts []*Diagnostic

	for _, subtype := range t.Elems {
		d := v.validateType(subtype, val, path)
		if d == nil {
			return nil
		}

		attempts = append(attempts, &Diagnostic{
			Path:     path,
			Reason:   fmt.Sprintf("attempted as variant subtype %q", subtype.Name),
			Children: []*Diagnostic{d},
		})
	}

	return &Diagnostic{
		Path:     path,
		Reason:   fmt.Sprintf("does not match any subtype of variant type %q", t.Name),
		Children: attempts,
	}
}

func (v *validator) validateAlias(t *schema.Type, val *store.Value, path string) *Diagnostic {
	aliased, ok := v.schema.NamedType(t.Alias)
	if !ok {
		v.logger.Warn("validating alias type referring to non-existing type",
			zap.String("alias_type", t.Name), zap.String("target", t.Alias))

		return nil
	}

	return v.validateType(aliased, val, path)
}

func (v *validator) validateEnum(t *schema.Type, val *store.Value, path string) *Diagnostic {
	if !val.IsString() {
		return &Diagnostic{
			Path:   path,
			Reason: fmt.Sprintf("should be an enum constant of type %q, but is not a string", t.Name),
		}
	}

	s, _ := val.StringValue()

	for _, c := range t.Constants {
		if c == s {
			return nil
		}
	}

	return &Diagnostic{
		Path:   path,
		Reason: fmt.Sprintf("should be an enum constant of type %q, but is %q", t.Name, s),
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}

	return path + "/" + key
}

func joinIndex(path string, i int) string {
	return joinPath(path, fmt.Sprintf("%d", i))
}
