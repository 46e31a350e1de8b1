package visitor

import (
	"github.com/funvibe/minispec/internal/ast"
)

// Result is what a handler produces for the node it visited: a single
// replacement, several nodes to splice into a list slot, or nothing.
type Result struct {
	nodes []ast.Node
	many  bool
}

// One replaces the visited node with n. One(nil) is the same as None.
func One(n ast.Node) Result {
	if n == nil {
		return Result{}
	}
	return Result{nodes: []ast.Node{n}}
}

// Many expands the visited node into nodes. Only valid in list slots.
func Many(nodes ...ast.Node) Result { return Result{nodes: nodes, many: true} }

// None deletes the visited node.
func None() Result { return Result{} }

func (r Result) IsMany() bool { return r.many }
func (r Result) IsNone() bool { return !r.many && len(r.nodes) == 0 }

// Node returns the single result, or nil for None and Many results.
func (r Result) Node() ast.Node {
	if r.many || len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// Nodes returns every non-nil node carried by r.
func (r Result) Nodes() []ast.Node {
	out := make([]ast.Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
