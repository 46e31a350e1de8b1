package specializer

import (
	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/config"
	"github.com/funvibe/minispec/internal/typesystem"
	"github.com/funvibe/minispec/internal/visitor"
	"github.com/pkg/errors"
)

// ContigSpecializer specializes a function for C-contiguous arrays. The
// iteration extent is flattened into a single scalar and stride pointers
// are dropped.
type ContigSpecializer struct {
	*StridedSpecializer
}

func NewContig(ctx visitor.Context, opts ...visitor.Option) *ContigSpecializer {
	s := &ContigSpecializer{StridedSpecializer: newStrided(ctx, config.ContigSpecialization, opts...)}
	s.Register(ast.KindFunction, s.VisitFunction)
	s.Register(ast.KindStridePointer, s.VisitStridePointer)
	return s
}

// VisitFunction prepends `extent = reduce(*, shape, ndim)` to the body and
// makes extent the function's shape.
func (s *ContigSpecializer) VisitFunction(n ast.Node) (visitor.Result, error) {
	fn := n.Copy().(*ast.FunctionNode)
	if fn.ShapeVar == nil {
		return visitor.None(), errors.Wrapf(ErrShapeRankMismatch, "%s has no shape vector", fn.Name)
	}
	shape, ok := fn.ShapeVar.Type.(typesystem.Vector)
	if !ok || shape.Len != fn.NDim {
		return visitor.None(), errors.Wrapf(ErrShapeRankMismatch,
			"%s: shape %s for ndim %d", fn.Name, fn.ShapeVar.Type, fn.NDim)
	}

	b := s.Builder
	extent := b.Temp(shape.Elem)
	compute := b.Reduce(fn.ShapeVar, "*", extent, b.Constant(int64(fn.NDim), typesystem.Index))
	fn.ShapeVar = extent
	fn.Body = b.Stats(compute, fn.Body)
	return s.StridedSpecializer.VisitFunction(fn)
}

func (s *ContigSpecializer) VisitStridePointer(ast.Node) (visitor.Result, error) {
	return visitor.None(), nil
}
