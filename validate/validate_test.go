package validate_test

import (
	"strings"
	"testing"

	"github.com/golangee/store"
	"github.com/golangee/store/parser"
	"github.com/golangee/store/schema"
	"github.com/golangee/store/validate"
)

func mustSchema(t *testing.T, src string) *schema.Schema {
	t.Helper()

	v, err := parser.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString(schema) error = %v", err)
	}

	s, err := schema.Compile(v)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	return s
}

func mustValue(t *testing.T, src string) *store.Value {
	t.Helper()

	v, err := parser.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString(value) error = %v", err)
	}

	return v
}

func TestValidatePasses(t *testing.T) {
	s := mustSchema(t, `layout = { name = (required, string), age = (optional, int) }`)
	v := mustValue(t, `name = "ada"`)

	if err := validate.Validate(v, s); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateMissingRequiredField(t *testing.T) {
	s := mustSchema(t, `layout = { name = (required, string) }`)
	v := mustValue(t, `age = 3`)

	err := validate.Validate(v, s)
	if err == nil {
		t.Fatal("Validate() = nil, want error for missing required field")
	}

	if !strings.Contains(err.Error(), "name") {
		t.Errorf("error does not mention missing field: %v", err)
	}
}

func TestValidateAccumulatesAllStructFailures(t *testing.T) {
	s := mustSchema(t, `
layout = {
	a = (required, string)
	b = (required, int)
}
`)
	v := mustValue(t, `a = 1, b = "nope"`)

	err := validate.Validate(v, s)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}

	msg := err.Error()
	if !strings.Contains(msg, "a") || !strings.Contains(msg, "b") {
		t.Fatalf("expected diagnostics for both fields a and b, got:\n%s", msg)
	}
}

func TestValidateSequenceAcceptsAnyLength(t *testing.T) {
	s := mustSchema(t, `
types = { nums = (sequence, int) }
layout = { nums = (required, "nums") }
`)

	for _, src := range []string{`nums = ()`, `nums = (1)`, `nums = (1, 2, 3)`} {
		v := mustValue(t, src)
		if err := validate.Validate(v, s); err != nil {
			t.Errorf("Validate(%q) error = %v", src, err)
		}
	}
}

func TestValidateTupleRequiresExactArity(t *testing.T) {
	s := mustSchema(t, `
types = { point = (tuple, int, int) }
layout = { point = (required, "point") }
`)

	v := mustValue(t, `point = (1)`)

	err := validate.Validate(v, s)
	if err == nil {
		t.Fatal("Validate() = nil, want arity mismatch error")
	}

	if !strings.Contains(err.Error(), "exactly 2") {
		t.Errorf("expected an arity message, got: %v", err)
	}
}

func TestValidateVariantSucceedsOnFirstMatch(t *testing.T) {
	s := mustSchema(t, `
types = { id = (variant, int, string) }
layout = { id = (required, "id") }
`)

	for _, src := range []string{`id = 5`, `id = "five"`} {
		v := mustValue(t, src)
		if err := validate.Validate(v, s); err != nil {
			t.Errorf("Validate(%q) error = %v", src, err)
		}
	}
}

func TestValidateVariantReportsEveryAttempt(t *testing.T) {
	s := mustSchema(t, `
types = { id = (variant, int, string) }
layout = { id = (required, "id") }
`)

	v := mustValue(t, `id = 3.5`)

	err := validate.Validate(v, s)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}

	msg := err.Error()
	if !strings.Contains(msg, "int") || !strings.Contains(msg, "string") {
		t.Fatalf("expected both variant subtype attempts reported, got:\n%s", msg)
	}
}

func TestValidateEnumRejectsUnknownConstant(t *testing.T) {
	s := mustSchema(t, `
types = { color = (enum, red, green, blue) }
layout = { color = (required, "color") }
`)

	v := mustValue(t, `color = purple`)

	if err := validate.Validate(v, s); err == nil {
		t.Fatal("Validate() = nil, want error for unknown enum constant")
	}

	v2 := mustValue(t, `color = red`)
	if err := validate.Validate(v2, s); err != nil {
		t.Errorf("Validate() error = %v, want nil for known enum constant", err)
	}
}

func TestValidateDanglingAliasPasses(t *testing.T) {
	s := mustSchema(t, `layout = { x = (required, "does-not-exist") }`)
	v := mustValue(t, `x = 1`)

	if err := validate.Validate(v, s); err != nil {
		t.Errorf("Validate() error = %v, want nil (dangling alias only warns)", err)
	}
}

func TestValidateNestedStructType(t *testing.T) {
	s := mustSchema(t, `
types = { person = { name = (required, string), age = (required, int) } }
layout = { who = (required, "person") }
`)

	ok := mustValue(t, `who = { name = "ada", age = 30 }`)
	if err := validate.Validate(ok, s); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	bad := mustValue(t, `who = { name = "ada" }`)
	if err := validate.Validate(bad, s); err == nil {
		t.Error("Validate() = nil, want error for missing nested required field")
	}
}

// schemaOfSchemasSource is a schema-definition-schema: a schema source
// describing the shape of a schema source document itself. typeSpec
// accepts either a plain alias string or a tagged list of strings,
// which is exactly the shape every type spec and struct element in
// this document takes — including its own "types" and "layout"
// entries, which is what makes it validate against its own compiled
// schema (spec.md's self-validation fixed point, end-to-end scenario
// 6: compile the schema-definition-schema, then validate its own
// store against its own compiled schema).
const schemaOfSchemasSource = `
types = {
	typeSpec = (variant, "string", "taggedList")
	taggedList = (sequence, "string")
	structElement = (tuple, "string", "typeSpec")
}
layout = {
	types = (optional, (array, "typeSpec"))
	layout = (required, (array, "structElement"))
}
`

func TestValidateSelfValidationFixedPoint(t *testing.T) {
	d := mustValue(t, schemaOfSchemasSource)

	s, err := schema.Compile(d)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if err := validate.Validate(d, s); err != nil {
		t.Fatalf("validate(D, Compile(D)) = %v, want ok (self-validation fixed point)", err)
	}
}

func TestValidateSelfValidationRejectsArbitraryValue(t *testing.T) {
	d := mustValue(t, schemaOfSchemasSource)

	s, err := schema.Compile(d)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	arbitrary := mustValue(t, `foo = "bar", nums = (1, 2, 3)`)

	if err := validate.Validate(arbitrary, s); err == nil {
		t.Fatal("Validate(arbitrary non-schema value, schema-of-schemas) = nil, want error")
	}
}

func TestValidateArrayTypeChecksEveryEntry(t *testing.T) {
	s := mustSchema(t, `
types = { names = (array, string) }
layout = { names = (required, "names") }
`)

	v := mustValue(t, `names = { a = "x", b = 3 }`)

	err := validate.Validate(v, s)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}

	if !strings.Contains(err.Error(), "b") {
		t.Errorf("expected diagnostic for key b, got: %v", err)
	}
}
