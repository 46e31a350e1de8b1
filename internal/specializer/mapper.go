// Package specializer rewrites layout-agnostic loop nests into
// layout-specific ones.
package specializer

import (
	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/builder"
	"github.com/funvibe/minispec/internal/typesystem"
	"github.com/funvibe/minispec/internal/visitor"
)

// Mapper is a Transform whose visits run with the visited node's position
// active on the shared builder, so synthesized nodes inherit it. Every node
// a visit returns is marked as specialized.
type Mapper struct {
	*visitor.Transform
	Builder *builder.Builder
}

func NewMapper(ctx visitor.Context, opts ...visitor.Option) *Mapper {
	m := &Mapper{
		Transform: visitor.NewTransform(ctx, opts...),
		Builder:   ctx.Builder(),
	}
	m.Use(markSpecialized)
	m.Use(m.trackPosition)
	return m
}

func (m *Mapper) trackPosition(n ast.Node, next func(ast.Node) (visitor.Result, error)) (visitor.Result, error) {
	prev := m.Builder.Pos
	m.Builder.Pos = m.Context().Position(n)
	defer func() { m.Builder.Pos = prev }()
	return next(n)
}

func markSpecialized(n ast.Node, next func(ast.Node) (visitor.Result, error)) (visitor.Result, error) {
	r, err := next(n)
	if err != nil {
		return r, err
	}
	for _, out := range r.Nodes() {
		out.Base().Specialized = true
	}
	return r, nil
}

// MapType resolves the semantic type of a foreign node into an internal type.
func (m *Mapper) MapType(n ast.Node) (typesystem.Type, error) {
	ctx := m.Context()
	return ctx.MapType(ctx.SemanticType(n))
}
