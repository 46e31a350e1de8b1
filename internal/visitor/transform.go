package visitor

import (
	"github.com/funvibe/minispec/internal/ast"
)

// Transform is a mutating Visitor: after the children of a node are visited,
// each child attribute is replaced by what its handlers returned.
type Transform struct {
	*Visitor
}

func NewTransform(ctx Context, opts ...Option) *Transform {
	return &Transform{Visitor: New(ctx, opts...)}
}

// VisitChildren visits the children of parent and writes the results back.
// Single-node slots take the result as is, so None deletes the child. List
// slots are flattened one level and nil results are dropped.
func (t *Transform) VisitChildren(parent ast.Node, attrs ...string) (map[string]ChildResult, error) {
	results, err := t.Visitor.VisitChildren(parent, attrs...)
	if err != nil || parent == nil {
		return nil, err
	}
	slots := parent.Slots()
	for attr, r := range results {
		slot, _ := findSlot(slots, attr)
		if r.IsList {
			slot.SetList(Flatten(r.List))
		} else {
			slot.Set(r.One.Node())
		}
	}
	return results, nil
}

// Flatten splices multi-node results into one list and drops empty ones.
func Flatten(results []Result) []ast.Node {
	out := make([]ast.Node, 0, len(results))
	for _, r := range results {
		out = append(out, r.Nodes()...)
	}
	return out
}
