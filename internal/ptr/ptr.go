// Package ptr re-exports go-extras/go-kit's pointer helpers under this
// module's own import path, the way ptah's core/parser package uses
// ptr.To directly but scoped here to the optional YAML fields
// (auto_increment, default_value) the schemafile loader deals with.
package ptr

import "github.com/go-extras/go-kit/ptr"

// To returns a pointer to v, for building Optional-shaped struct
// literals (*bool, *string) without an intermediate variable.
func To[T any](v T) *T {
	return ptr.To(v)
}

// Deref returns *p, or fallback if p is nil.
func Deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
