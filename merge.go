package store

import "fmt"

// Merge imports the content of imp into target, recursively.
//
// Both must share the same container Kind (List or Array). Arguments of
// different Kinds (a leaf and a container included) fail with
// ErrMergeTypeMismatch; two leaves of the same Kind fail with
// ErrMergeAtLeaf.
//
// For an Array target: each (key, value) of imp is cloned into target if
// target has no such key; if both target and imp agree on that key being
// an Array or both being a List, the merge recurses; otherwise target's
// child is replaced by a clone of imp's child.
//
// For a List target: every element of imp is cloned and appended.
func Merge(target, imp *Value) error {
	if target.kind != imp.kind {
		return fmt.Errorf("%w: target is %s, import is %s", ErrMergeTypeMismatch, target.kind, imp.kind)
	}

	switch imp.kind {
	case KindArray:
		for _, key := range imp.keys {
			importChild := imp.arr[key]

			existing, ok := target.Get(key)
			if !ok {
				target.Set(key, importChild.Clone())
				continue
			}

			if existing.kind == importChild.kind && (existing.kind == KindArray || existing.kind == KindList) {
				if err := Merge(existing, importChild); err != nil {
					return err
				}
			} else {
				target.Set(key, importChild.Clone())
			}
		}

		return nil
	case KindList:
		for _, child := range imp.list {
			target.Append(child.Clone())
		}

		return nil
	default:
		return fmt.Errorf("%w: cannot merge %s values", ErrMergeAtLeaf, imp.kind)
	}
}
