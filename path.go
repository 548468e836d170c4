package store

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitPath splits a path into its raw, unescaped segments. The empty
// path has zero segments. Escaping is handled by a small state machine,
// not string replacement: '\\' escapes the following '\\' or '/' into a
// literal character; any other use of '\\', including one left dangling
// at the end of the path, is ErrPathMalformed.
func SplitPath(path string) ([]string, error) {
	if path == "" {
		return []string{}, nil
	}

	var segments []string

	var assemble strings.Builder

	escaping := false

	for i := 0; i < len(path); i++ {
		b := path[i]

		switch {
		case b == '\\':
			if !escaping {
				escaping = true
				continue
			}

			escaping = false
		case b == '/':
			if !escaping {
				if assemble.Len() == 0 {
					return nil, fmt.Errorf("%w: empty segment in %q", ErrPathMalformed, path)
				}

				segments = append(segments, assemble.String())
				assemble.Reset()

				continue
			}

			escaping = false
		}

		if escaping {
			return nil, fmt.Errorf("%w: dangling escape in %q", ErrPathMalformed, path)
		}

		assemble.WriteByte(b)
	}

	if escaping {
		return nil, fmt.Errorf("%w: trailing escape in %q", ErrPathMalformed, path)
	}

	if assemble.Len() == 0 {
		return nil, fmt.Errorf("%w: empty segment in %q", ErrPathMalformed, path)
	}

	segments = append(segments, assemble.String())

	return segments, nil
}

// Get traverses root along path and returns the addressed sub-Value.
// The empty path denotes root itself. Addressing a missing Array key, an
// out-of-range List index, or addressing into a leaf all yield
// ErrNotFound.
func Get(root *Value, path string) (*Value, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return nil, err
	}

	return getSegments(root, segments)
}

func getSegments(root *Value, segments []string) (*Value, error) {
	node := root

	for _, seg := range segments {
		switch node.kind {
		case KindArray:
			child, ok := node.Get(seg)
			if !ok {
				return nil, fmt.Errorf("%w: no array entry %q", ErrNotFound, seg)
			}

			node = child
		case KindList:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("%w: invalid list index %q", ErrNotFound, seg)
			}

			child, ok := node.At(idx)
			if !ok {
				return nil, fmt.Errorf("%w: list index %d out of range", ErrNotFound, idx)
			}

			node = child
		default:
			return nil, fmt.Errorf("%w: cannot address into a %s", ErrNotFound, node.kind)
		}
	}

	return node, nil
}

// Set resolves the parent of path's last segment and inserts or replaces
// value there. Setting an Array entry always succeeds (insert-or-replace);
// setting a List entry replaces an existing index or appends at index ==
// len(list), and fails with ErrPathOutOfRange for any larger index.
// Setting into a leaf fails with ErrPathIntoLeaf.
func Set(root *Value, path string, value *Value) error {
	parent, lastSeg, err := resolveParent(root, path)
	if err != nil {
		return err
	}

	switch parent.kind {
	case KindArray:
		parent.Set(lastSeg, value)

		return nil
	case KindList:
		idx, err := strconv.Atoi(lastSeg)
		if err != nil || idx < 0 {
			return fmt.Errorf("%w: invalid list index %q", ErrPathMalformed, lastSeg)
		}

		return parent.SetAt(idx, value)
	default:
		return fmt.Errorf("%w: cannot set into a %s", ErrPathIntoLeaf, parent.kind)
	}
}

// Delete resolves the parent of path's last segment and removes it. The
// last segment must exist; a missing Array key or out-of-range List
// index fails with ErrNotFound, and deleting into a leaf fails with
// ErrPathIntoLeaf.
func Delete(root *Value, path string) error {
	parent, lastSeg, err := resolveParent(root, path)
	if err != nil {
		return err
	}

	switch parent.kind {
	case KindArray:
		if !parent.Delete(lastSeg) {
			return fmt.Errorf("%w: no array entry %q", ErrNotFound, lastSeg)
		}

		return nil
	case KindList:
		idx, err := strconv.Atoi(lastSeg)
		if err != nil || idx < 0 {
			return fmt.Errorf("%w: invalid list index %q", ErrPathMalformed, lastSeg)
		}

		return parent.DeleteAt(idx)
	default:
		return fmt.Errorf("%w: cannot delete into a %s", ErrPathIntoLeaf, parent.kind)
	}
}

// resolveParent splits path, requires at least one segment, and resolves
// every segment but the last.
func resolveParent(root *Value, path string) (parent *Value, lastSeg string, err error) {
	segments, err := SplitPath(path)
	if err != nil {
		return nil, "", err
	}

	if len(segments) == 0 {
		return nil, "", fmt.Errorf("%w: path has no segment to set or delete", ErrPathMalformed)
	}

	parent, err = getSegments(root, segments[:len(segments)-1])
	if err != nil {
		return nil, "", err
	}

	return parent, segments[len(segments)-1], nil
}
