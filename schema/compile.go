package schema

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/golangee/store"
	"github.com/golangee/store/serialize"
)

// Compile parses v (expected to be an Array with an optional "types"
// section and a required "layout" section) into a Schema. It is
// equivalent to CompileWithLogger(v, zap.NewNop()).
func Compile(v *store.Value) (*Schema, error) {
	return CompileWithLogger(v, nil)
}

// CompileWithLogger is Compile with an injectable collaborator for the
// compiler's progress notices. A nil logger behaves like zap.NewNop();
// the package holds no logger of its own.
func CompileWithLogger(v *store.Value, logger *zap.Logger) (*Schema, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !v.IsArray() {
		return nil, fmt.Errorf("%w: schema root is not an array", store.ErrSchemaMalformed)
	}

	s := &Schema{
		namedTypes:     map[string]*Type{},
		layoutElements: map[string]*StructElement{},
	}

	s.namedTypes["int"] = &Type{Name: "int", Mode: ModeInteger}
	s.namedTypes["float"] = &Type{Name: "float", Mode: ModeFloat}
	s.namedTypes["string"] = &Type{Name: "string", Mode: ModeString}

	if types, ok := v.Get("types"); ok {
		if !types.IsArray() {
			return nil, fmt.Errorf("%w: 'types' section is not an array", store.ErrSchemaMalformed)
		}

		if err := s.resolveTypes(types, logger); err != nil {
			return nil, err
		}
	} else {
		logger.Info("schema does not contain a types section")
	}

	layout, ok := v.Get("layout")
	if !ok {
		return nil, fmt.Errorf("%w: no 'layout' section found", store.ErrSchemaMalformed)
	}

	if !layout.IsArray() {
		return nil, fmt.Errorf("%w: 'layout' section is not an array", store.ErrSchemaMalformed)
	}

	for _, key := range layout.Keys() {
		elementStore, _ := layout.Get(key)
		if !elementStore.IsList() {
			return nil, fmt.Errorf("%w: layout element %q is not a struct element", store.ErrSchemaMalformed, key)
		}

		element, err := s.parseStructElement(key, elementStore)
		if err != nil {
			return nil, fmt.Errorf("%w: layout element %q: %s", store.ErrSchemaMalformed, key, err)
		}

		s.layoutElements[key] = element
		s.layoutOrder = append(s.layoutOrder, key)
	}

	return s, nil
}

// resolveTypes runs a sweep-until-no-progress pass over the "types"
// section: each iteration tries every not-yet-parsed name, and the
// sweep stops either when every name has resolved or when a full pass
// makes no progress (remaining names can never resolve). Alias targets
// are not looked up here, so a reference to a later or undefined name
// never leaves a name stuck; a malformed type spec does.
func (s *Schema) resolveTypes(types *store.Value, logger *zap.Logger) error {
	for {
		stuck := false
		parsed := 0

		for _, name := range types.Keys() {
			if _, done := s.namedTypes[name]; done {
				continue
			}

			typeStore, _ := types.Get(name)

			t, err := s.parseType(name, typeStore)
			if err != nil {
				logger.Info("failed to parse schema type, will retry", zap.String("name", name), zap.Error(err))
				stuck = true

				continue
			}

			s.namedTypes[name] = t
			parsed++

			logger.Info("parsed named schema type", zap.String("name", name))
		}

		if !stuck {
			return nil
		}

		if parsed == 0 {
			return fmt.Errorf("%w: %s", store.ErrSchemaUnresolved, strings.Join(stuckNames(types, s.namedTypes), ", "))
		}
	}
}

func stuckNames(types *store.Value, resolved map[string]*Type) []string {
	var names []string

	for _, name := range types.Keys() {
		if _, ok := resolved[name]; !ok {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}

// parseType dispatches on typeStore's Kind the way schema.c's
// parseSchemaType does: a String is an alias, a List's first element
// names the shape (array/sequence/tuple/variant/enum), an Array is a
// struct. name is empty for an anonymous type, which is then named by
// its own canonical inline serialization and kept unregistered by name.
func (s *Schema) parseType(name string, typeStore *store.Value) (*Type, error) {
	var t *Type

	var err error

	switch typeStore.Kind() {
	case store.KindString:
		alias, _ := typeStore.StringValue()
		t = &Type{Mode: ModeAlias, Alias: alias}
	case store.KindList:
		t, err = s.parseTypeList(typeStore)
	case store.KindArray:
		t, err = s.parseStruct(typeStore)
	default:
		return nil, fmt.Errorf("%w: type must be a string, list or array", store.ErrSchemaMalformed)
	}

	if err != nil {
		return nil, err
	}

	if name != "" {
		t.Name = name
	} else {
		t.Name = serialize.Inline(typeStore)
		s.anonymousTypes = append(s.anonymousTypes, t)
	}

	return t, nil
}

func (s *Schema) parseTypeList(list *store.Value) (*Type, error) {
	if list.Len() == 0 {
		return nil, fmt.Errorf("%w: empty type list", store.ErrSchemaMalformed)
	}

	head, _ := list.At(0)
	if !head.IsString() {
		return nil, fmt.Errorf("%w: type list must begin with a tag string", store.ErrSchemaMalformed)
	}

	tag, _ := head.StringValue()

	switch tag {
	case "array":
		return s.parseElemType(list, ModeArray)
	case "sequence":
		return s.parseElemType(list, ModeSequence)
	case "tuple":
		return s.parseElemsType(list, ModeTuple)
	case "variant":
		return s.parseElemsType(list, ModeVariant)
	case "enum":
		return s.parseEnum(list)
	default:
		return nil, fmt.Errorf("%w: unknown type tag %q", store.ErrSchemaMalformed, tag)
	}
}

func (s *Schema) parseElemType(list *store.Value, mode Mode) (*Type, error) {
	if list.Len() < 2 {
		return nil, fmt.Errorf("%w: %s type needs exactly one element type", store.ErrSchemaMalformed, mode)
	}

	elemStore, _ := list.At(1)

	elem, err := s.parseType("", elemStore)
	if err != nil {
		return nil, err
	}

	return &Type{Mode: mode, Elem: elem}, nil
}

func (s *Schema) parseElemsType(list *store.Value, mode Mode) (*Type, error) {
	t := &Type{Mode: mode}

	for i := 1; i < list.Len(); i++ {
		elemStore, _ := list.At(i)

		elem, err := s.parseType("", elemStore)
		if err != nil {
			return nil, err
		}

		t.Elems = append(t.Elems, elem)
	}

	return t, nil
}

func (s *Schema) parseEnum(list *store.Value) (*Type, error) {
	t := &Type{Mode: ModeEnum}

	for i := 1; i < list.Len(); i++ {
		constStore, _ := list.At(i)
		if !constStore.IsString() {
			return nil, fmt.Errorf("%w: enum constant must be a string", store.ErrSchemaMalformed)
		}

		c, _ := constStore.StringValue()
		t.Constants = append(t.Constants, c)
	}

	return t, nil
}

func (s *Schema) parseStruct(array *store.Value) (*Type, error) {
	t := &Type{Mode: ModeStruct, Struct: map[string]*StructElement{}}

	for _, key := range array.Keys() {
		elementStore, _ := array.Get(key)
		if !elementStore.IsList() {
			return nil, fmt.Errorf("%w: struct field %q is not a valid struct element", store.ErrSchemaMalformed, key)
		}

		element, err := s.parseStructElement(key, elementStore)
		if err != nil {
			return nil, fmt.Errorf("%w: struct field %q: %s", store.ErrSchemaMalformed, key, err)
		}

		t.Struct[key] = element
		t.StructOrder = append(t.StructOrder, key)
	}

	return t, nil
}

// parseStructElement reads a two-element list: a "required"/"optional"
// flag string, and the field's own type spec.
func (s *Schema) parseStructElement(key string, list *store.Value) (*StructElement, error) {
	if list.Len() < 1 {
		return nil, fmt.Errorf("%w: struct element has no required-flag", store.ErrSchemaMalformed)
	}

	flagStore, _ := list.At(0)
	if !flagStore.IsString() {
		return nil, fmt.Errorf("%w: struct element required-flag must be a string", store.ErrSchemaMalformed)
	}

	flag, _ := flagStore.StringValue()

	if list.Len() < 2 {
		return nil, fmt.Errorf("%w: struct element has no type", store.ErrSchemaMalformed)
	}

	typeStore, _ := list.At(1)

	t, err := s.parseType("", typeStore)
	if err != nil {
		return nil, err
	}

	return &StructElement{Key: key, Required: flag == "required", Type: t}, nil
}
