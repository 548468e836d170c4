package store

import (
	"fmt"
	"os"
)

// parseNamed and serializeToString are installed by store/parser and
// store/serialize's init functions. store/parser and store/serialize
// both depend on this package for *Value, so this package cannot import
// them back without a cycle; it instead exposes the stable top-level API
// that spec.md §6 calls for and waits for an implementation to register
// itself, the same way image.RegisterFormat lets image.Decode dispatch
// to image/png or image/jpeg without importing either.
var (
	parseNamed        func(file, text string) (*Value, error)
	serializeToString func(*Value) string
)

// RegisterParser installs the parser package's implementation. Called
// from store/parser's init; not meant to be called directly.
func RegisterParser(f func(file, text string) (*Value, error)) {
	parseNamed = f
}

// RegisterSerializer installs the serialize package's implementation.
// Called from store/serialize's init; not meant to be called directly.
func RegisterSerializer(f func(*Value) string) {
	serializeToString = f
}

// ParseString parses text into the root Array Value. Importing
// store/parser is required before calling this; store/schema and
// store/validate do not import it.
func ParseString(text string) (*Value, error) {
	if parseNamed == nil {
		return nil, fmt.Errorf("store: no parser registered, import github.com/golangee/store/parser")
	}

	return parseNamed("", text)
}

// ParseFile reads filename and parses its content. Reading failure is
// reported as ErrFileUnavailable; parsing then proceeds exactly as
// ParseString, with filename attached to diagnostic positions.
func ParseFile(filename string) (*Value, error) {
	if parseNamed == nil {
		return nil, fmt.Errorf("store: no parser registered, import github.com/golangee/store/parser")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrFileUnavailable, filename, err)
	}

	return parseNamed(filename, string(data))
}

// SerializeToString renders v as canonical multi-line text. Importing
// store/serialize is required before calling this.
func (v *Value) SerializeToString() string {
	if serializeToString == nil {
		panic("store: no serializer registered, import github.com/golangee/store/serialize")
	}

	return serializeToString(v)
}

// SerializeToFile renders v and writes it to filename.
func SerializeToFile(filename string, v *Value) error {
	text := v.SerializeToString()

	if err := os.WriteFile(filename, []byte(text), 0o644); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrFileUnavailable, filename, err)
	}

	return nil
}
