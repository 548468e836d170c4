// Package serialize renders a store.Value back to the textual syntax
// the parser package reads. The multi-line form is the canonical,
// human-edited representation; Inline produces the single-line form
// used by the schema package to name anonymous types.
package serialize

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golangee/store"
)

func init() {
	store.RegisterSerializer(ToString)
}

// ToString renders root (expected to be an Array) as a multi-line,
// tab-indented document. Root entries carry no surrounding braces;
// nested arrays are written as '{ ... }'.
func ToString(root *store.Value) string {
	var sb strings.Builder

	writeEntries(&sb, root, 0)

	return sb.String()
}

// ToFile renders root and writes it to path.
func ToFile(root *store.Value, path string) error {
	if err := os.WriteFile(path, []byte(ToString(root)), 0o644); err != nil {
		return fmt.Errorf("%w: %s: %s", store.ErrFileUnavailable, path, err)
	}

	return nil
}

func writeEntries(sb *strings.Builder, arr *store.Value, depth int) {
	for _, key := range arr.Keys() {
		child, _ := arr.Get(key)

		indent(sb, depth)
		writeKey(sb, key)
		sb.WriteString(" = ")
		writeValue(sb, child, depth)
		sb.WriteString("\n")
	}
}

func writeValue(sb *strings.Builder, v *store.Value, depth int) {
	switch v.Kind() {
	case store.KindString:
		s, _ := v.StringValue()
		writeQuoted(sb, s)
	case store.KindInteger:
		i, _ := v.IntegerValue()
		sb.WriteString(strconv.FormatInt(int64(i), 10))
	case store.KindFloat:
		f, _ := v.FloatValue()
		sb.WriteString(formatFloat(f))
	case store.KindList:
		sb.WriteString("(")

		for i, el := range v.Elements() {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeValue(sb, el, depth)
		}

		sb.WriteString(")")
	case store.KindArray:
		sb.WriteString("{\n")
		writeEntries(sb, v, depth+1)
		indent(sb, depth)
		sb.WriteString("}")
	}
}

// Inline renders v on a single line, with no trailing newline and no
// leading indentation. It is the canonical form used to name anonymous
// schema types: two equal Values whose Arrays hold their keys in the
// same insertion order produce the same Inline text. Array entries are
// written in insertion order, so equal Arrays built in a different
// order produce different text.
func Inline(v *store.Value) string {
	var sb strings.Builder

	writeInline(&sb, v)

	return sb.String()
}

func writeInline(sb *strings.Builder, v *store.Value) {
	switch v.Kind() {
	case store.KindString:
		s, _ := v.StringValue()
		writeQuoted(sb, s)
	case store.KindInteger:
		i, _ := v.IntegerValue()
		sb.WriteString(strconv.FormatInt(int64(i), 10))
	case store.KindFloat:
		f, _ := v.FloatValue()
		sb.WriteString(formatFloat(f))
	case store.KindList:
		sb.WriteString("(")

		for i, el := range v.Elements() {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeInline(sb, el)
		}

		sb.WriteString(")")
	case store.KindArray:
		sb.WriteString("{ ")

		keys := v.Keys()
		for i, key := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}

			child, _ := v.Get(key)
			writeKey(sb, key)
			sb.WriteString(" = ")
			writeInline(sb, child)
		}

		if len(keys) > 0 {
			sb.WriteString(" ")
		}

		sb.WriteString("}")
	}
}

func writeKey(sb *strings.Builder, key string) {
	writeQuoted(sb, key)
}

func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(s[i])
		}
	}

	sb.WriteByte('"')
}

func indent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteByte('\t')
	}
}

// formatFloat writes f in plain decimal notation, always with a '.', so
// the lexer reads it back as a Float (never an Integer, never an
// exponent it cannot lex).
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
