package builder

import (
	"maps"
	"slices"

	"github.com/samber/lo"
)

// Param is a decoded query pair.
type Param struct {
	Key      string
	Value    string
	HasValue bool
}

// Components is a decoded snapshot of the builder state.
// Placeholders are kept as "{name}" text.
type Components struct {
	Scheme                string
	UserInfo              string
	HasUserInfo           bool
	Host                  string
	Port                  uint16
	HasPort               bool
	SchemeSpecificPart    string
	HasSchemeSpecificPart bool
	Segments              []string
	Query                 []Param
	Fragment              string
	HasFragment           bool
	TemplatesEnabled      bool
	Bindings              map[string]string
	// Pending lists sorted names of unbound "{?name}" and "{&name}" expressions.
	Pending []string
}

// Components returns a snapshot of the builder components.
func (b *Builder) Components() Components {
	if b == nil {
		return Components{TemplatesEnabled: true}
	}

	c := Components{
		Scheme:                b.scheme,
		UserInfo:              b.userInfo.plain(),
		HasUserInfo:           b.hasUserInfo,
		Host:                  b.host.plain(),
		Port:                  b.port,
		HasPort:               b.hasPort,
		SchemeSpecificPart:    b.opaque.plain(),
		HasSchemeSpecificPart: b.hasOpaque,
		Fragment:              b.fragment.plain(),
		HasFragment:           b.hasFragment,
		TemplatesEnabled:      !b.templatesOff,
	}
	if b.path != nil && b.path.Len() > 0 {
		c.Segments = lo.Map(listItems(b.path), func(seg component, _ int) string { return seg.plain() })
	}
	if b.query != nil && b.query.Len() > 0 {
		c.Query = lo.Map(listItems(b.query), func(p queryPair, _ int) Param {
			return Param{Key: p.key.plain(), Value: p.value.plain(), HasValue: p.hasValue}
		})
	}
	if b.bindings.Len() > 0 {
		c.Bindings = maps.Collect(b.bindings.All())
	}
	if b.hasPending && b.pending.Len() > 0 {
		c.Pending = b.pending.Items()
		slices.Sort(c.Pending)
	}
	return c
}
