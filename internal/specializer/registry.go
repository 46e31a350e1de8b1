package specializer

import (
	"sort"

	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/config"
	"github.com/funvibe/minispec/internal/visitor"
	"github.com/pkg/errors"
)

// Runner specializes one function. A Runner holds per-run state and must not
// be reused for another function.
type Runner interface {
	Specialize(fn *ast.FunctionNode) (*ast.FunctionNode, error)
}

// Constructor builds a fresh Runner.
type Constructor func(ctx visitor.Context, opts ...visitor.Option) Runner

var registry = map[string]Constructor{
	config.StridedSpecialization: func(ctx visitor.Context, opts ...visitor.Option) Runner {
		return NewStrided(ctx, opts...)
	},
	config.ContigSpecialization: func(ctx visitor.Context, opts ...visitor.Option) Runner {
		return NewContig(ctx, opts...)
	},
}

// Lookup returns the constructor registered under name.
func Lookup(name string) (Constructor, error) {
	c, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSpecialization, "%q (known: %v)", name, Names())
	}
	return c, nil
}

// Names lists the registered specializations in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
