package uritemplate

import (
	"fmt"
	"iter"

	"github.com/benbjohnson/immutable"
)

type binding struct {
	value string
	bound bool
}

// Bindings is a persistent map of template names to values.
// A name may be present without a value, see [Bindings.Unbind].
// The zero value is an empty map ready to use. Bindings is safe for concurrent use.
type Bindings struct {
	m *immutable.Map[string, binding]
}

func (b Bindings) entries() *immutable.Map[string, binding] {
	if b.m == nil {
		return immutable.NewMap[string, binding](nil)
	}
	return b.m
}

// Bind returns new bindings with the value formatted by [fmt.Sprint] bound to the name.
func (b Bindings) Bind(name string, value any) Bindings {
	return Bindings{b.entries().Set(name, binding{value: fmt.Sprint(value), bound: true})}
}

// Unbind returns new bindings where the name is known but has no value.
// Such name expands to an empty string.
func (b Bindings) Unbind(name string) Bindings {
	return Bindings{b.entries().Set(name, binding{})}
}

// Lookup returns the value bound to the name and whether it is bound.
func (b Bindings) Lookup(name string) (string, bool) {
	if b.m == nil {
		return "", false
	}
	v, _ := b.m.Get(name)
	return v.value, v.bound
}

// Has reports whether the name is known, bound or not.
func (b Bindings) Has(name string) bool {
	if b.m == nil {
		return false
	}
	_, ok := b.m.Get(name)
	return ok
}

// Len returns the number of known names.
func (b Bindings) Len() int {
	if b.m == nil {
		return 0
	}
	return b.m.Len()
}

// All iterates over bound names and values.
func (b Bindings) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if b.m == nil {
			return
		}
		it := b.m.Iterator()
		for !it.Done() {
			k, v, _ := it.Next()
			if !v.bound {
				continue
			}
			if !yield(k, v.value) {
				return
			}
		}
	}
}
