package typesystem

import (
	"github.com/pkg/errors"
)

// Mapper converts foreign type representations into internal types.
// Aliases take precedence over the builtin scalar names.
type Mapper struct {
	aliases map[string]Type
}

func NewMapper() *Mapper {
	return &Mapper{aliases: make(map[string]Type)}
}

// Alias registers an extra dtype name.
func (m *Mapper) Alias(name string, t Type) {
	m.aliases[name] = t
}

// Map resolves t. Internal types are returned unchanged.
func (m *Mapper) Map(t Type) (Type, error) {
	f, ok := t.(Foreign)
	if !ok {
		return t, nil
	}
	if f.NDim < 0 {
		return nil, errors.Errorf("negative dimensionality %d for dtype %q", f.NDim, f.Dtype)
	}
	dtype, ok := m.aliases[f.Dtype]
	if !ok {
		dtype, ok = Lookup(f.Dtype)
	}
	if !ok {
		return nil, errors.Errorf("unknown dtype %q", f.Dtype)
	}
	if f.NDim == 0 {
		return dtype, nil
	}
	return Array{Dtype: dtype, NDim: f.NDim}, nil
}
