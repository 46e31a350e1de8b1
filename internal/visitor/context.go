package visitor

import (
	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/builder"
	"github.com/funvibe/minispec/internal/typesystem"
)

// Context is what an embedding compiler provides to the visitors.
type Context interface {
	// Children returns the child attribute names of n in visiting order.
	Children(n ast.Node) []string
	Position(n ast.Node) ast.Pos
	SemanticType(n ast.Node) typesystem.Type
	MapType(t typesystem.Type) (typesystem.Type, error)
	// MayFail reports whether a foreign node can raise at runtime.
	MayFail(foreign any) bool
	Builder() *builder.Builder
}

// Failer is implemented by foreign nodes that know whether they may fail.
type Failer interface {
	MayFail() bool
}

// BasicContext is the Context used when the tree carries all the
// information itself: children come from the node schema, positions and
// types from the node base.
type BasicContext struct {
	builder *builder.Builder
	types   *typesystem.Mapper
}

func NewBasicContext(b *builder.Builder, types *typesystem.Mapper) *BasicContext {
	if b == nil {
		b = builder.New()
	}
	if types == nil {
		types = typesystem.NewMapper()
	}
	return &BasicContext{builder: b, types: types}
}

func (c *BasicContext) Children(n ast.Node) []string            { return ast.ChildNames(n) }
func (c *BasicContext) Position(n ast.Node) ast.Pos             { return n.Pos() }
func (c *BasicContext) SemanticType(n ast.Node) typesystem.Type { return n.Base().Type }
func (c *BasicContext) Builder() *builder.Builder               { return c.builder }

func (c *BasicContext) MapType(t typesystem.Type) (typesystem.Type, error) {
	return c.types.Map(t)
}

// MayFail asks the foreign node itself. Nodes that cannot tell are assumed
// not to fail.
func (c *BasicContext) MayFail(foreign any) bool {
	if f, ok := foreign.(Failer); ok {
		return f.MayFail()
	}
	return false
}
