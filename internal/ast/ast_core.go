package ast

import (
	"fmt"

	"github.com/funvibe/minispec/internal/typesystem"
)

// Pos is a source location. The zero value means "unknown".
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// NodeBase holds the attributes shared by every node kind.
type NodeBase struct {
	Position    Pos
	Type        typesystem.Type
	Specialized bool
}

func (b *NodeBase) Base() *NodeBase { return b }
func (b *NodeBase) Pos() Pos        { return b.Position }

// Node is the base interface for all specialization tree nodes.
type Node interface {
	Kind() Kind
	Base() *NodeBase
	Pos() Pos
	// Copy returns a shallow copy: child slots of the copy still point at the
	// original children until they are rewritten.
	Copy() Node
	// Slots returns the child schema of the node, bound to this value.
	Slots() []Slot
}

// Slot is one child-holding attribute of a node. Its shape (single node or
// ordered sequence) is fixed by the node kind.
type Slot struct {
	Name string
	one  *Node
	many *[]Node
}

func one(name string, p *Node) Slot    { return Slot{Name: name, one: p} }
func many(name string, p *[]Node) Slot { return Slot{Name: name, many: p} }
func (s Slot) IsList() bool            { return s.many != nil }
func (s Slot) Get() Node               { return *s.one }
func (s Slot) List() []Node            { return *s.many }
func (s Slot) Set(n Node)              { *s.one = n }
func (s Slot) SetList(nodes []Node)    { *s.many = nodes }

// IsEmpty reports whether the slot currently holds nothing.
func (s Slot) IsEmpty() bool {
	if s.IsList() {
		return *s.many == nil
	}
	return *s.one == nil
}

// SlotByName finds the slot called name on n.
func SlotByName(n Node, name string) (Slot, bool) {
	for _, s := range n.Slots() {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// ChildNames returns the declared child attribute names of n in schema order.
func ChildNames(n Node) []string {
	slots := n.Slots()
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = s.Name
	}
	return names
}

// Walk calls fn for n and every node reachable through its slots, depth first.
// Walking stops early when fn returns false.
func Walk(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, s := range n.Slots() {
		if s.IsList() {
			for _, c := range s.List() {
				if !Walk(c, fn) {
					return false
				}
			}
		} else if !Walk(s.Get(), fn) {
			return false
		}
	}
	return true
}

// Collect returns every node of the given kind reachable from n.
func Collect(n Node, kind Kind) []Node {
	var out []Node
	Walk(n, func(c Node) bool {
		if c.Kind() == kind {
			out = append(out, c)
		}
		return true
	})
	return out
}
