// Package builder synthesizes specialization tree nodes. Every node it
// creates is stamped with the builder's current position, which the
// specializers keep pointed at the node being rewritten.
package builder

import (
	"fmt"

	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/typesystem"
)

// Builder is not safe for concurrent use.
type Builder struct {
	Pos ast.Pos

	temps  int
	labels int
}

func New() *Builder {
	return &Builder{}
}

func (b *Builder) base(t typesystem.Type) ast.NodeBase {
	return ast.NodeBase{Position: b.Pos, Type: t}
}

// Stats builds a statement list. Nil entries are dropped and nested Stats
// are spliced in.
func (b *Builder) Stats(stats ...ast.Node) *ast.Stats {
	out := make([]ast.Node, 0, len(stats))
	for _, s := range stats {
		switch n := s.(type) {
		case nil:
		case *ast.Stats:
			out = append(out, n.Stats...)
		default:
			out = append(out, s)
		}
	}
	return &ast.Stats{NodeBase: b.base(nil), Stats: out}
}

func (b *Builder) Return(value ast.Node) *ast.Return {
	return &ast.Return{NodeBase: b.base(nil), Value: value}
}

func (b *Builder) Assign(lhs, rhs ast.Node) *ast.Assign {
	return &ast.Assign{NodeBase: b.base(nil), LHS: lhs, RHS: rhs}
}

func (b *Builder) If(cond, body ast.Node) *ast.If {
	return &ast.If{NodeBase: b.base(nil), Cond: cond, Body: body}
}

func (b *Builder) Jump(label string) *ast.Jump {
	return &ast.Jump{NodeBase: b.base(nil), Label: label}
}

func (b *Builder) JumpTarget(label string) *ast.JumpTarget {
	return &ast.JumpTarget{NodeBase: b.base(nil), Label: label}
}

func (b *Builder) Constant(value int64, t typesystem.Type) *ast.Constant {
	if t == nil {
		t = typesystem.Index
	}
	return &ast.Constant{NodeBase: b.base(t), Value: value}
}

func (b *Builder) Variable(name string, t typesystem.Type) *ast.Variable {
	return &ast.Variable{NodeBase: b.base(t), Name: name}
}

// Temp allocates a fresh temporary of type t.
func (b *Builder) Temp(t typesystem.Type) *ast.Variable {
	name := fmt.Sprintf("temp%d", b.temps)
	b.temps++
	return &ast.Variable{NodeBase: b.base(t), Name: name, IsTemp: true}
}

// Label allocates a fresh jump label with the given prefix.
func (b *Builder) Label(prefix string) string {
	l := fmt.Sprintf("%s%d", prefix, b.labels)
	b.labels++
	return l
}

func (b *Builder) Binop(op string, lhs, rhs ast.Node) *ast.Binop {
	return &ast.Binop{NodeBase: b.base(typeOf(lhs)), Op: op, LHS: lhs, RHS: rhs}
}

func (b *Builder) Mul(lhs, rhs ast.Node) *ast.Binop { return b.Binop("*", lhs, rhs) }
func (b *Builder) Add(lhs, rhs ast.Node) *ast.Binop { return b.Binop("+", lhs, rhs) }

func (b *Builder) Cast(operand ast.Node, to typesystem.Type) *ast.Cast {
	return &ast.Cast{NodeBase: b.base(to), Operand: operand}
}

func (b *Builder) DataPointer(v *ast.Variable) *ast.DataPointer {
	return &ast.DataPointer{NodeBase: b.base(typesystem.PointerTo(typesystem.Dtype(v.Type))), Variable: v}
}

func (b *Builder) Stride(v *ast.Variable, dim int) *ast.Stride {
	return &ast.Stride{NodeBase: b.base(typesystem.Index), Variable: v, Dim: dim}
}

func (b *Builder) StridePointer(v *ast.Variable) *ast.StridePointer {
	return &ast.StridePointer{NodeBase: b.base(typesystem.PointerTo(typesystem.Index)), Variable: v}
}

func (b *Builder) ShapeIndex(dim int, fn *ast.FunctionNode) *ast.ShapeIndex {
	return &ast.ShapeIndex{NodeBase: b.base(typesystem.Index), Function: fn, Dim: dim}
}

// IndexMultiple addresses pointer offset by the sum of offsets.
func (b *Builder) IndexMultiple(pointer ast.Node, offsets []ast.Node, destPointerType typesystem.Type) *ast.Index {
	var elem typesystem.Type
	if destPointerType != nil {
		elem = typesystem.ElemType(destPointerType)
	}
	return &ast.Index{
		NodeBase:        b.base(elem),
		Pointer:         pointer,
		Offsets:         offsets,
		DestPointerType: destPointerType,
	}
}

// ForRangeUpwards builds `for target = 0; target < upper; target += 1 { body }`.
func (b *Builder) ForRangeUpwards(body, upper ast.Node) *ast.ForNode {
	target := b.Temp(typesystem.Index)
	return &ast.ForNode{
		NodeBase:  b.base(nil),
		Init:      b.Assign(target, b.Constant(0, typesystem.Index)),
		Condition: b.Binop("<", target, upper),
		Step:      b.Assign(target, b.Add(target, b.Constant(1, typesystem.Index))),
		Body:      body,
		Target:    target,
	}
}

// ErrorHandler wraps body in a fresh handler with its own label.
func (b *Builder) ErrorHandler(body ast.Node) *ast.ErrorHandler {
	return &ast.ErrorHandler{NodeBase: b.base(nil), Body: body, Label: b.Label("error")}
}

func (b *Builder) Reduce(operand ast.Node, op string, output, length ast.Node) *ast.Reduce {
	return &ast.Reduce{NodeBase: b.base(typeOf(output)), Operand: operand, Op: op, Output: output, Length: length}
}

func (b *Builder) NDIterate(body ast.Node) *ast.NDIterate {
	return &ast.NDIterate{NodeBase: b.base(nil), Body: body}
}

// Wrap embeds a node owned by the driving compiler.
func (b *Builder) Wrap(opaque any, t typesystem.Type) *ast.NodeWrapper {
	return &ast.NodeWrapper{NodeBase: b.base(t), Opaque: opaque}
}

// Function assembles a function node. The shape vector gets one entry per
// dimension.
func (b *Builder) Function(name string, args []*ast.Variable, ndim int, body ast.Node) *ast.FunctionNode {
	return &ast.FunctionNode{
		NodeBase:     b.base(nil),
		Name:         name,
		Args:         args,
		NDim:         ndim,
		Body:         body,
		ShapeVar:     b.Variable("shape", typesystem.Vector{Elem: typesystem.Index, Len: ndim}),
		SuccessValue: b.Constant(0, typesystem.Int32),
		ErrorValue:   b.Constant(1, typesystem.Int32),
	}
}

func typeOf(n ast.Node) typesystem.Type {
	if n == nil {
		return nil
	}
	return n.Base().Type
}
