package specializer

import (
	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/visitor"
	"github.com/pkg/errors"
)

// Specializer copies every node it visits and specializes the copy's
// children. Specializations register handlers for the kinds they rewrite.
type Specializer struct {
	*Mapper
	Name string

	variables     map[string]*ast.Variable
	errorHandlers []*ast.ErrorHandler
}

func NewSpecializer(ctx visitor.Context, name string, opts ...visitor.Option) *Specializer {
	s := &Specializer{
		Mapper:    NewMapper(ctx, opts...),
		Name:      name,
		variables: make(map[string]*ast.Variable),
	}
	s.Register(ast.KindNode, s.VisitNode)
	s.Register(ast.KindVariable, s.VisitVariable)
	return s
}

// Specialize rewrites fn and returns the specialized copy.
func (s *Specializer) Specialize(fn *ast.FunctionNode) (*ast.FunctionNode, error) {
	r, err := s.Visit(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "specializing %s for %s", fn.Name, s.Name)
	}
	out, ok := r.Node().(*ast.FunctionNode)
	if !ok {
		return nil, errors.Errorf("specializing %s for %s: result is %T, not a function", fn.Name, s.Name, r.Node())
	}
	return out, nil
}

func (s *Specializer) VisitNode(n ast.Node) (visitor.Result, error) {
	c := n.Copy()
	if _, err := s.VisitChildren(c); err != nil {
		return visitor.None(), err
	}
	return visitor.One(c), nil
}

// VisitVariable records the first variable seen under each name.
func (s *Specializer) VisitVariable(n ast.Node) (visitor.Result, error) {
	r, err := s.VisitNode(n)
	if err != nil {
		return r, err
	}
	v := r.Node().(*ast.Variable)
	if _, ok := s.variables[v.Name]; !ok {
		s.variables[v.Name] = v
	}
	return r, nil
}

// Variable returns the canonical variable for name.
func (s *Specializer) Variable(name string) (*ast.Variable, bool) {
	v, ok := s.variables[name]
	return v, ok
}

// Canonical maps v to the canonical variable of the same name, or v itself
// when the name was not seen yet.
func (s *Specializer) Canonical(v *ast.Variable) *ast.Variable {
	if c, ok := s.variables[v.Name]; ok {
		return c
	}
	return v
}

// EnclosingHandler returns the innermost error handler being specialized.
func (s *Specializer) EnclosingHandler() (*ast.ErrorHandler, bool) {
	if len(s.errorHandlers) == 0 {
		return nil, false
	}
	return s.errorHandlers[len(s.errorHandlers)-1], true
}

// withHandler runs fn with h pushed on the error handler stack.
func (s *Specializer) withHandler(h *ast.ErrorHandler, fn func() error) error {
	s.errorHandlers = append(s.errorHandlers, h)
	defer func() { s.errorHandlers = s.errorHandlers[:len(s.errorHandlers)-1] }()
	return fn()
}
