package visitor

import (
	"github.com/funvibe/minispec/internal/ast"
	"github.com/pkg/errors"
)

// Middleware runs around every visit. It must call next to reach the handler.
type Middleware func(n ast.Node, next func(ast.Node) (Result, error)) (Result, error)

// PathEntry is one step of the access path: the parent being visited, the
// child attribute, and the element index (-1 for single-node slots).
type PathEntry struct {
	Parent ast.Node
	Attr   string
	Index  int
}

// ChildResult holds the outcome of visiting one child attribute.
type ChildResult struct {
	IsList bool
	One    Result
	List   []Result
}

// Visitor walks a tree without changing it. Handlers registered on the
// embedded Dispatcher decide what to do with each node and call
// VisitChildren to descend.
type Visitor struct {
	*Dispatcher

	ctx        Context
	trackPath  bool
	path       []PathEntry
	middleware []Middleware
}

type Option func(*Visitor)

// WithAccessPath records the (parent, attribute, index) stack during visits.
func WithAccessPath() Option {
	return func(v *Visitor) { v.trackPath = true }
}

// WithResolveHook reports every handler resolution (cache miss) to fn.
func WithResolveHook(fn func(concrete, resolved ast.Kind)) Option {
	return func(v *Visitor) { v.OnResolve = fn }
}

func New(ctx Context, opts ...Option) *Visitor {
	v := &Visitor{Dispatcher: NewDispatcher(), ctx: ctx}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Visitor) Context() Context { return v.ctx }

// Use appends mw to the middleware chain. The first middleware added is the
// outermost one.
func (v *Visitor) Use(mw Middleware) {
	v.middleware = append(v.middleware, mw)
}

// Visit runs n through the middleware chain and its handler.
// Visiting nil yields None.
func (v *Visitor) Visit(n ast.Node) (Result, error) {
	if n == nil {
		return None(), nil
	}
	return v.run(0, n)
}

func (v *Visitor) run(i int, n ast.Node) (Result, error) {
	if i == len(v.middleware) {
		return v.Dispatch(n)
	}
	return v.middleware[i](n, func(m ast.Node) (Result, error) {
		return v.run(i+1, m)
	})
}

// AccessPath returns a copy of the current access path, outermost first.
func (v *Visitor) AccessPath() []PathEntry {
	return append([]PathEntry(nil), v.path...)
}

// Current returns the innermost access path entry.
func (v *Visitor) Current() (PathEntry, bool) {
	if len(v.path) == 0 {
		return PathEntry{}, false
	}
	return v.path[len(v.path)-1], true
}

func (v *Visitor) visitChild(child, parent ast.Node, attr string, idx int) (Result, error) {
	if v.trackPath {
		v.path = append(v.path, PathEntry{Parent: parent, Attr: attr, Index: idx})
		defer func() { v.path = v.path[:len(v.path)-1] }()
	}
	return v.Visit(child)
}

func (v *Visitor) visitChildList(slot ast.Slot, parent ast.Node) (ChildResult, error) {
	if slot.IsList() {
		children := slot.List()
		results := make([]Result, len(children))
		for i, child := range children {
			r, err := v.visitChild(child, parent, slot.Name, i)
			if err != nil {
				return ChildResult{}, err
			}
			results[i] = r
		}
		return ChildResult{IsList: true, List: results}, nil
	}

	r, err := v.visitChild(slot.Get(), parent, slot.Name, -1)
	if err != nil {
		return ChildResult{}, err
	}
	if r.IsMany() {
		return ChildResult{}, errors.Wrapf(ErrInvalidListInsertion, "%s.%s at %s", parent.Kind(), slot.Name, parent.Pos())
	}
	return ChildResult{One: r}, nil
}

// VisitChildren visits the children held in attrs, or in every child
// attribute reported by the context when attrs is empty. Empty attributes
// are skipped.
func (v *Visitor) VisitChildren(parent ast.Node, attrs ...string) (map[string]ChildResult, error) {
	if parent == nil {
		return nil, nil
	}
	if len(attrs) == 0 {
		attrs = v.ctx.Children(parent)
	}

	slots := parent.Slots()
	results := make(map[string]ChildResult, len(attrs))
	for _, attr := range attrs {
		slot, ok := findSlot(slots, attr)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownSlot, "%s has no attribute %q", parent.Kind(), attr)
		}
		if slot.IsEmpty() {
			continue
		}
		r, err := v.visitChildList(slot, parent)
		if err != nil {
			return nil, err
		}
		results[attr] = r
	}
	return results, nil
}

func findSlot(slots []ast.Slot, name string) (ast.Slot, bool) {
	for _, s := range slots {
		if s.Name == name {
			return s, true
		}
	}
	return ast.Slot{}, false
}
