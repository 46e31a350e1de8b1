package ast

import (
	"github.com/funvibe/minispec/internal/typesystem"
)

// FunctionNode is the specialization unit.
// Args are not child slots: parameters are declarations, only the body is rewritten.
type FunctionNode struct {
	NodeBase
	Name               string
	Args               []*Variable
	NDim               int
	Body               Node
	ShapeVar           *Variable
	SuccessValue       Node
	ErrorValue         Node
	SpecializationName string
}

func (n *FunctionNode) Kind() Kind    { return KindFunction }
func (n *FunctionNode) Copy() Node    { c := *n; return &c }
func (n *FunctionNode) Slots() []Slot { return []Slot{one("body", &n.Body)} }

// Arg returns the parameter called name.
func (n *FunctionNode) Arg(name string) (*Variable, bool) {
	for _, a := range n.Args {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

func (n *FunctionNode) HasArg(name string) bool {
	_, ok := n.Arg(name)
	return ok
}

// Stats is an ordered statement sequence.
type Stats struct {
	NodeBase
	Stats []Node
}

func (n *Stats) Kind() Kind    { return KindStats }
func (n *Stats) Copy() Node    { c := *n; return &c }
func (n *Stats) Slots() []Slot { return []Slot{many("stats", &n.Stats)} }

// ForNode is a counted loop. Target is the induction variable.
type ForNode struct {
	NodeBase
	Init      Node
	Condition Node
	Step      Node
	Body      Node
	Target    Node
}

func (n *ForNode) Kind() Kind { return KindFor }
func (n *ForNode) Copy() Node { c := *n; return &c }
func (n *ForNode) Slots() []Slot {
	return []Slot{
		one("init", &n.Init),
		one("condition", &n.Condition),
		one("step", &n.Step),
		one("body", &n.Body),
		one("target", &n.Target),
	}
}

// NDIterate marks an N-dimensional iteration over the function's shape.
type NDIterate struct {
	NodeBase
	Body Node
}

func (n *NDIterate) Kind() Kind    { return KindNDIterate }
func (n *NDIterate) Copy() Node    { c := *n; return &c }
func (n *NDIterate) Slots() []Slot { return []Slot{one("body", &n.Body)} }

// ErrorHandler wraps a body that may fail. Label is the handler's error
// entry point; enclosed handlers cascade to it.
type ErrorHandler struct {
	NodeBase
	Body  Node
	Label string

	ErrorVariable    Node
	ErrorVarInit     Node
	ErrorTargetLabel Node
	ErrorSet         Node
	Cascade          Node
}

func (n *ErrorHandler) Kind() Kind { return KindErrorHandler }
func (n *ErrorHandler) Copy() Node { c := *n; return &c }
func (n *ErrorHandler) Slots() []Slot {
	return []Slot{
		one("error_variable", &n.ErrorVariable),
		one("error_var_init", &n.ErrorVarInit),
		one("body", &n.Body),
		one("error_target_label", &n.ErrorTargetLabel),
		one("error_set", &n.ErrorSet),
		one("cascade", &n.Cascade),
	}
}

type Return struct {
	NodeBase
	Value Node
}

func (n *Return) Kind() Kind    { return KindReturn }
func (n *Return) Copy() Node    { c := *n; return &c }
func (n *Return) Slots() []Slot { return []Slot{one("value", &n.Value)} }

type Assign struct {
	NodeBase
	LHS Node
	RHS Node
}

func (n *Assign) Kind() Kind    { return KindAssign }
func (n *Assign) Copy() Node    { c := *n; return &c }
func (n *Assign) Slots() []Slot { return []Slot{one("lhs", &n.LHS), one("rhs", &n.RHS)} }

type If struct {
	NodeBase
	Cond Node
	Body Node
}

func (n *If) Kind() Kind    { return KindIf }
func (n *If) Copy() Node    { c := *n; return &c }
func (n *If) Slots() []Slot { return []Slot{one("cond", &n.Cond), one("body", &n.Body)} }

type Jump struct {
	NodeBase
	Label string
}

func (n *Jump) Kind() Kind    { return KindJump }
func (n *Jump) Copy() Node    { c := *n; return &c }
func (n *Jump) Slots() []Slot { return nil }

type JumpTarget struct {
	NodeBase
	Label string
}

func (n *JumpTarget) Kind() Kind    { return KindJumpTarget }
func (n *JumpTarget) Copy() Node    { c := *n; return &c }
func (n *JumpTarget) Slots() []Slot { return nil }

// Reduce folds the first Length entries of Operand with Op into Output.
type Reduce struct {
	NodeBase
	Operand Node
	Op      string
	Output  Node
	Length  Node
}

func (n *Reduce) Kind() Kind { return KindReduce }
func (n *Reduce) Copy() Node { c := *n; return &c }
func (n *Reduce) Slots() []Slot {
	return []Slot{one("operand", &n.Operand), one("output", &n.Output), one("length", &n.Length)}
}

// NodeWrapper carries a node owned by the driving compiler.
type NodeWrapper struct {
	NodeBase
	Opaque any
}

func (n *NodeWrapper) Kind() Kind    { return KindNodeWrapper }
func (n *NodeWrapper) Copy() Node    { c := *n; return &c }
func (n *NodeWrapper) Slots() []Slot { return nil }

// --- Expressions ---

// Variable is a named value. Temporaries synthesized by the builder have
// IsTemp set and report KindTemp.
type Variable struct {
	NodeBase
	Name   string
	IsTemp bool
}

func (n *Variable) Kind() Kind {
	if n.IsTemp {
		return KindTemp
	}
	return KindVariable
}
func (n *Variable) Copy() Node    { c := *n; return &c }
func (n *Variable) Slots() []Slot { return nil }
func (n *Variable) IsArray() bool { return typesystem.IsArray(n.Type) }

type Constant struct {
	NodeBase
	Value int64
}

func (n *Constant) Kind() Kind    { return KindConstant }
func (n *Constant) Copy() Node    { c := *n; return &c }
func (n *Constant) Slots() []Slot { return nil }

type Binop struct {
	NodeBase
	Op  string
	LHS Node
	RHS Node
}

func (n *Binop) Kind() Kind    { return KindBinop }
func (n *Binop) Copy() Node    { c := *n; return &c }
func (n *Binop) Slots() []Slot { return []Slot{one("lhs", &n.LHS), one("rhs", &n.RHS)} }

// Cast converts Operand to the node's Type.
type Cast struct {
	NodeBase
	Operand Node
}

func (n *Cast) Kind() Kind    { return KindCast }
func (n *Cast) Copy() Node    { c := *n; return &c }
func (n *Cast) Slots() []Slot { return []Slot{one("operand", &n.Operand)} }

// Index addresses Pointer + sum(Offsets), reinterpreted as DestPointerType.
type Index struct {
	NodeBase
	Pointer         Node
	Offsets         []Node
	DestPointerType typesystem.Type
}

func (n *Index) Kind() Kind { return KindIndex }
func (n *Index) Copy() Node { c := *n; return &c }
func (n *Index) Slots() []Slot {
	return []Slot{one("pointer", &n.Pointer), many("offsets", &n.Offsets)}
}

// DataPointer is the base data pointer of an array variable.
type DataPointer struct {
	NodeBase
	Variable *Variable
}

func (n *DataPointer) Kind() Kind    { return KindDataPointer }
func (n *DataPointer) Copy() Node    { c := *n; return &c }
func (n *DataPointer) Slots() []Slot { return nil }

// Stride is the byte stride of Variable along dimension Dim.
type Stride struct {
	NodeBase
	Variable *Variable
	Dim      int
}

func (n *Stride) Kind() Kind    { return KindStride }
func (n *Stride) Copy() Node    { c := *n; return &c }
func (n *Stride) Slots() []Slot { return nil }

// StridePointer is the per-dimension stride vector of Variable.
type StridePointer struct {
	NodeBase
	Variable *Variable
}

func (n *StridePointer) Kind() Kind    { return KindStridePointer }
func (n *StridePointer) Copy() Node    { c := *n; return &c }
func (n *StridePointer) Slots() []Slot { return nil }

// ShapeIndex is the extent of Function's iteration space along Dim.
type ShapeIndex struct {
	NodeBase
	Function *FunctionNode
	Dim      int
}

func (n *ShapeIndex) Kind() Kind    { return KindShapeIndex }
func (n *ShapeIndex) Copy() Node    { c := *n; return &c }
func (n *ShapeIndex) Slots() []Slot { return nil }
