package visitor

import (
	"github.com/funvibe/minispec/internal/ast"
	"github.com/pkg/errors"
)

// Handler specializes or inspects a single node.
type Handler func(n ast.Node) (Result, error)

type resolution struct {
	kind    ast.Kind
	handler Handler
}

// Dispatcher maps node kinds to handlers. A node is handled by the handler of
// its own kind, else by the nearest ancestor kind that has one. Resolutions
// are cached per concrete kind.
type Dispatcher struct {
	handlers map[ast.Kind]Handler
	cache    map[ast.Kind]resolution

	// OnResolve, if set, is called on every cache miss.
	OnResolve func(concrete, resolved ast.Kind)
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[ast.Kind]Handler),
		cache:    make(map[ast.Kind]resolution),
	}
}

// Register installs h for kind, replacing any previous handler.
func (d *Dispatcher) Register(kind ast.Kind, h Handler) {
	d.handlers[kind] = h
	clear(d.cache)
}

func (d *Dispatcher) Unregister(kind ast.Kind) {
	delete(d.handlers, kind)
	clear(d.cache)
}

// Handler returns the handler registered for exactly kind.
func (d *Dispatcher) Handler(kind ast.Kind) (Handler, bool) {
	h, ok := d.handlers[kind]
	return h, ok
}

// Resolve finds the most specific handler for n.
func (d *Dispatcher) Resolve(n ast.Node) (Handler, ast.Kind, error) {
	kind := n.Kind()
	if r, ok := d.cache[kind]; ok {
		return r.handler, r.kind, nil
	}
	for _, k := range ast.Ancestry(kind) {
		if h, ok := d.Handler(k); ok {
			d.cache[kind] = resolution{kind: k, handler: h}
			if d.OnResolve != nil {
				d.OnResolve(kind, k)
			}
			return h, k, nil
		}
	}
	return nil, 0, errors.Wrapf(ErrUnhandledNodeKind, "%s at %s", kind, n.Pos())
}

// Dispatch resolves and runs the handler for n.
func (d *Dispatcher) Dispatch(n ast.Node) (Result, error) {
	h, _, err := d.Resolve(n)
	if err != nil {
		return Result{}, err
	}
	return h(n)
}
