package ptr_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/schemaforge/schemaforge/internal/ptr"
)

func TestToAndDeref(t *testing.T) {
	c := qt.New(t)

	p := ptr.To(42)
	c.Assert(*p, qt.Equals, 42)
	c.Assert(ptr.Deref(p, 0), qt.Equals, 42)
	c.Assert(ptr.Deref[int](nil, 7), qt.Equals, 7)
}

func TestDerefString(t *testing.T) {
	c := qt.New(t)

	c.Assert(ptr.Deref(ptr.To("hi"), "fallback"), qt.Equals, "hi")
	c.Assert(ptr.Deref[string](nil, "fallback"), qt.Equals, "fallback")
}
