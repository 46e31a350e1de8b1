package visitor

import (
	"github.com/funvibe/minispec/internal/ast"
)

// MayFailVisitor decides whether a subtree can fail at runtime. Only foreign
// nodes can fail; nested loops contribute their header but not their body,
// which gets its own error handler.
type MayFailVisitor struct {
	*Visitor
	mayFail bool
}

func NewMayFailVisitor(ctx Context) *MayFailVisitor {
	v := &MayFailVisitor{Visitor: New(ctx)}
	v.Register(ast.KindNode, v.visitNode)
	v.Register(ast.KindNodeWrapper, v.visitNodeWrapper)
	v.Register(ast.KindFor, v.visitFor)
	return v
}

// MayFail is a convenience wrapper running a fresh MayFailVisitor over n.
func MayFail(ctx Context, n ast.Node) (bool, error) {
	v := NewMayFailVisitor(ctx)
	if _, err := v.Visit(n); err != nil {
		return false, err
	}
	return v.Result(), nil
}

// Result reports whether anything visited so far may fail.
func (v *MayFailVisitor) Result() bool { return v.mayFail }

func (v *MayFailVisitor) visitNode(n ast.Node) (Result, error) {
	_, err := v.VisitChildren(n)
	return None(), err
}

func (v *MayFailVisitor) visitNodeWrapper(n ast.Node) (Result, error) {
	w := n.(*ast.NodeWrapper)
	v.mayFail = v.mayFail || v.ctx.MayFail(w.Opaque)
	return None(), nil
}

func (v *MayFailVisitor) visitFor(n ast.Node) (Result, error) {
	loop := n.(*ast.ForNode)
	for _, part := range []ast.Node{loop.Init, loop.Condition, loop.Step} {
		if _, err := v.Visit(part); err != nil {
			return None(), err
		}
	}
	return None(), nil
}
