package specializer

import (
	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/config"
	"github.com/funvibe/minispec/internal/typesystem"
	"github.com/funvibe/minispec/internal/visitor"
	"github.com/pkg/errors"
)

// StridedSpecializer specializes a function for arrays with arbitrary
// strides: element addresses are computed as base + sum(index_i * stride_i).
type StridedSpecializer struct {
	*Specializer

	function *ast.FunctionNode
	// indices holds the induction variables of the current loop nest,
	// innermost loop first.
	indices []ast.Node
}

func NewStrided(ctx visitor.Context, opts ...visitor.Option) *StridedSpecializer {
	return newStrided(ctx, config.StridedSpecialization, opts...)
}

func newStrided(ctx visitor.Context, name string, opts ...visitor.Option) *StridedSpecializer {
	s := &StridedSpecializer{Specializer: NewSpecializer(ctx, name, opts...)}
	s.Register(ast.KindFunction, s.VisitFunction)
	s.Register(ast.KindNDIterate, s.VisitNDIterate)
	s.Register(ast.KindFor, s.VisitFor)
	s.Register(ast.KindVariable, s.VisitVariable)
	s.Register(ast.KindErrorHandler, s.VisitErrorHandler)
	return s
}

// Indices returns the induction variables of the last loop nest, innermost first.
func (s *StridedSpecializer) Indices() []ast.Node { return s.indices }

func (s *StridedSpecializer) VisitFunction(n ast.Node) (visitor.Result, error) {
	fn := n.Copy().(*ast.FunctionNode)
	fn.SpecializationName = s.Name

	b := s.Builder
	fn.Body = b.Stats(fn.Body, b.Return(fn.SuccessValue))
	s.function = fn

	if _, err := s.VisitChildren(fn); err != nil {
		return visitor.None(), err
	}
	return visitor.One(fn), nil
}

// VisitNDIterate lowers the iteration marker into one loop per dimension.
// Loops are built from the last dimension outwards, so the innermost loop
// iterates over the last dimension.
func (s *StridedSpecializer) VisitNDIterate(n ast.Node) (visitor.Result, error) {
	if s.function == nil {
		return visitor.None(), errors.Wrapf(ErrNoActiveFunction, "NDIterate at %s", n.Pos())
	}
	nd := n.(*ast.NDIterate)
	b := s.Builder

	s.indices = nil
	body := nd.Body
	var loop *ast.ForNode
	for dim := s.function.NDim - 1; dim >= 0; dim-- {
		loop = b.ForRangeUpwards(body, b.ShapeIndex(dim, s.function))
		s.indices = append(s.indices, loop.Target)
		body = loop
	}
	if loop == nil {
		return s.Visit(nd.Body)
	}
	return s.VisitFor(loop)
}

// VisitFor wraps a loop body that may fail in an error handler.
func (s *StridedSpecializer) VisitFor(n ast.Node) (visitor.Result, error) {
	loop := n.Copy().(*ast.ForNode)
	if _, wrapped := loop.Body.(*ast.ErrorHandler); !wrapped && loop.Body != nil {
		fails, err := visitor.MayFail(s.Context(), loop.Body)
		if err != nil {
			return visitor.None(), err
		}
		if fails {
			loop.Body = s.Builder.ErrorHandler(loop.Body)
		}
	}
	if _, err := s.VisitChildren(loop); err != nil {
		return visitor.None(), err
	}
	return visitor.One(loop), nil
}

// VisitVariable replaces references to array arguments with the address of
// the current element.
func (s *StridedSpecializer) VisitVariable(n ast.Node) (visitor.Result, error) {
	v := n.(*ast.Variable)
	if s.function != nil && v.IsArray() && s.function.HasArg(v.Name) {
		return s.elementLocation(v)
	}
	return s.Specializer.VisitVariable(n)
}

// elementLocation builds ((char *) data(v))[sum(index_d * stride(v, d))]
// viewed as a pointer to the element type. An array of k dimensions uses the
// k innermost loop indices.
func (s *StridedSpecializer) elementLocation(v *ast.Variable) (visitor.Result, error) {
	b := s.Builder
	ndim := typesystem.NDim(v.Type)
	if len(s.indices) < ndim {
		return visitor.None(), errors.Wrapf(ErrInsufficientIndices,
			"%s has %d dimensions but %d loop indices are in scope at %s", v.Name, ndim, len(s.indices), v.Pos())
	}

	innermost := s.indices[:ndim]
	offsets := make([]ast.Node, ndim)
	for dim := 0; dim < ndim; dim++ {
		offsets[dim] = b.Mul(innermost[ndim-1-dim], b.Stride(v, dim))
	}
	pointer := b.Cast(b.DataPointer(v), typesystem.PointerTo(typesystem.Char))
	index := b.IndexMultiple(pointer, offsets, typesystem.PointerTo(typesystem.Dtype(v.Type)))

	if _, err := s.VisitChildren(index); err != nil {
		return visitor.None(), err
	}
	return visitor.One(index), nil
}

// VisitErrorHandler specializes the handler body with the handler on the
// stack, then wires the handler's flag and cascade. An outermost handler
// returns the function's error value; a nested one jumps to the handler
// enclosing it.
func (s *StridedSpecializer) VisitErrorHandler(n ast.Node) (visitor.Result, error) {
	if s.function == nil {
		return visitor.None(), errors.Wrapf(ErrNoActiveFunction, "ErrorHandler at %s", n.Pos())
	}
	h := n.Copy().(*ast.ErrorHandler)

	err := s.withHandler(h, func() error {
		_, err := s.VisitChildren(h, "body")
		return err
	})
	if err != nil {
		return visitor.None(), err
	}

	b := s.Builder
	flag := b.Temp(typesystem.Bool)
	h.ErrorVariable = flag
	h.ErrorVarInit = b.Assign(flag, b.Constant(0, typesystem.Bool))
	h.ErrorTargetLabel = b.JumpTarget(h.Label)
	h.ErrorSet = b.Assign(flag, b.Constant(1, typesystem.Bool))
	if outer, ok := s.EnclosingHandler(); ok {
		h.Cascade = b.If(flag, b.Jump(outer.Label))
	} else {
		h.Cascade = b.Return(s.function.ErrorValue)
	}

	if _, err := s.VisitChildren(h, "error_variable", "error_var_init", "error_target_label", "error_set", "cascade"); err != nil {
		return visitor.None(), err
	}
	return visitor.One(h), nil
}
