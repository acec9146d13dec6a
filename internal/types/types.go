// Package types contains common interfaces and values shared by the uri and builder packages.
package types

//go:generate go tool errtrace -w .

import "github.com/google/go-cmp/cmp"

// RenderOptions is a struct that is used to pass options to rendering methods.
type RenderOptions struct {
	// IDNA converts internationalized host names to their ASCII (punycode) form
	// instead of pct-encoding non-ASCII bytes.
	IDNA bool `json:"idna,omitempty"`
	// NFC applies Unicode normalization form C to raw text before pct-encoding.
	NFC bool `json:"nfc,omitempty"`
}

// UseIDNA reports whether IDNA host conversion is enabled. It is safe to call on nil.
func (o *RenderOptions) UseIDNA() bool { return o != nil && o.IDNA }

// UseNFC reports whether NFC normalization is enabled. It is safe to call on nil.
func (o *RenderOptions) UseNFC() bool { return o != nil && o.NFC }

type ValidFlag interface {
	IsValid() bool
}

// IsValid returns true if the value has method `IsValid() bool` and it returns true.
func IsValid(v any) bool {
	vv, ok := v.(ValidFlag)
	return ok && vv.IsValid()
}

type Equalable interface {
	Equal(val any) bool
}

// IsEqual returns true if the values are equal.
// Values implementing [Equalable] are compared with their Equal method.
func IsEqual(v1, v2 any) bool {
	if e, ok := v1.(Equalable); ok {
		return e.Equal(v2)
	}
	return cmp.Equal(v1, v2)
}
