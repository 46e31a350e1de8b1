package visitor

import (
	"errors"
	"reflect"
	"testing"

	"github.com/funvibe/minispec/internal/ast"
)

func newCtx() Context { return NewBasicContext(nil, nil) }

func variable(name string) *ast.Variable { return &ast.Variable{Name: name} }

func TestDispatchPrefersMostSpecificKind(t *testing.T) {
	v := New(newCtx())
	var got string
	v.Register(ast.KindVariable, func(ast.Node) (Result, error) { got = "Variable"; return None(), nil })
	v.Register(ast.KindTemp, func(ast.Node) (Result, error) { got = "Temp"; return None(), nil })
	v.Register(ast.KindNode, func(ast.Node) (Result, error) { got = "Node"; return None(), nil })

	temp := &ast.Variable{Name: "temp0", IsTemp: true}
	if _, err := v.Visit(temp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Temp" {
		t.Errorf("handler = %s, want Temp", got)
	}

	v.Unregister(ast.KindTemp)
	if _, err := v.Visit(temp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Variable" {
		t.Errorf("after removing Temp handler, handler = %s, want Variable", got)
	}

	if _, err := v.Visit(&ast.Jump{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Node" {
		t.Errorf("generic fallback handler = %s, want Node", got)
	}
}

func TestDispatchUnhandledKind(t *testing.T) {
	v := New(newCtx())
	v.Register(ast.KindFor, func(ast.Node) (Result, error) { return None(), nil })

	_, err := v.Visit(variable("x"))
	if !errors.Is(err, ErrUnhandledNodeKind) {
		t.Fatalf("err = %v, want ErrUnhandledNodeKind", err)
	}
}

func TestDispatchCachesPerConcreteKind(t *testing.T) {
	d := NewDispatcher()
	d.Register(ast.KindExpr, func(ast.Node) (Result, error) { return None(), nil })

	misses := 0
	want := ast.KindExpr
	d.OnResolve = func(concrete, resolved ast.Kind) {
		misses++
		if resolved != want {
			t.Errorf("%s resolved to %s, want %s", concrete, resolved, want)
		}
	}
	for i := 0; i < 3; i++ {
		if _, err := d.Dispatch(variable("x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := d.Dispatch(&ast.Constant{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if misses != 2 {
		t.Errorf("resolution ran %d times, want once per concrete kind (2)", misses)
	}

	want = ast.KindVariable
	d.Register(ast.KindVariable, func(ast.Node) (Result, error) { return None(), nil })
	if _, kind, _ := d.Resolve(variable("y")); kind != ast.KindVariable {
		t.Errorf("registration must invalidate the cache, resolved %s", kind)
	}
	if misses != 3 {
		t.Errorf("resolution ran %d times after registering, want 3", misses)
	}

	want = ast.KindExpr
	d.Unregister(ast.KindVariable)
	if _, kind, _ := d.Resolve(variable("z")); kind != ast.KindExpr {
		t.Errorf("unregistering must invalidate the cache, resolved %s", kind)
	}
	if misses != 4 {
		t.Errorf("resolution ran %d times after unregistering, want 4", misses)
	}
}

func TestHandlerIsExactKind(t *testing.T) {
	d := NewDispatcher()
	d.Register(ast.KindExpr, func(ast.Node) (Result, error) { return None(), nil })

	if _, ok := d.Handler(ast.KindExpr); !ok {
		t.Error("no handler for the registered kind")
	}
	if _, ok := d.Handler(ast.KindVariable); ok {
		t.Error("Handler must not fall back to an ancestor")
	}
	if _, kind, err := d.Resolve(variable("x")); err != nil || kind != ast.KindExpr {
		t.Errorf("Resolve = %s, %v; want the Expr handler", kind, err)
	}
}

func TestTransformFlattensListResults(t *testing.T) {
	x, y, z := variable("X"), variable("Y"), variable("Z")
	tr := NewTransform(newCtx())
	tr.Register(ast.KindVariable, func(n ast.Node) (Result, error) {
		switch n.(*ast.Variable).Name {
		case "a":
			return One(x), nil
		case "b":
			return Many(y, z), nil
		default:
			return None(), nil
		}
	})

	root := &ast.Stats{Stats: []ast.Node{variable("a"), variable("b"), variable("c")}}
	if _, err := tr.VisitChildren(root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []ast.Node{x, y, z}
	if !reflect.DeepEqual(root.Stats, want) {
		t.Errorf("children = %v, want [X Y Z]", root.Stats)
	}
}

func TestTransformSingleSlot(t *testing.T) {
	tr := NewTransform(newCtx())
	repl := variable("r")
	tr.Register(ast.KindVariable, func(ast.Node) (Result, error) { return One(repl), nil })
	tr.Register(ast.KindConstant, func(ast.Node) (Result, error) { return None(), nil })

	assign := &ast.Assign{LHS: variable("l"), RHS: &ast.Constant{Value: 1}}
	if _, err := tr.VisitChildren(assign); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assign.LHS != repl {
		t.Errorf("lhs was not replaced")
	}
	if assign.RHS != nil {
		t.Errorf("None should delete the rhs, got %v", assign.RHS)
	}
}

func TestListIntoSingleSlotFails(t *testing.T) {
	tr := NewTransform(newCtx())
	tr.Register(ast.KindVariable, func(ast.Node) (Result, error) {
		return Many(variable("p"), variable("q")), nil
	})

	ret := &ast.Return{Value: variable("v")}
	_, err := tr.VisitChildren(ret)
	if !errors.Is(err, ErrInvalidListInsertion) {
		t.Fatalf("err = %v, want ErrInvalidListInsertion", err)
	}
}

func TestVisitChildrenSubsetAndUnknownAttr(t *testing.T) {
	v := New(newCtx())
	var seen []string
	v.Register(ast.KindVariable, func(n ast.Node) (Result, error) {
		seen = append(seen, n.(*ast.Variable).Name)
		return None(), nil
	})

	assign := &ast.Assign{LHS: variable("l"), RHS: variable("r")}
	if _, err := v.VisitChildren(assign, "rhs"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(seen, []string{"r"}) {
		t.Errorf("visited %v, want [r]", seen)
	}

	if _, err := v.VisitChildren(assign, "body"); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("err = %v, want ErrUnknownSlot", err)
	}

	res, err := v.VisitChildren(&ast.ForNode{})
	if err != nil || len(res) != 0 {
		t.Errorf("empty slots should be skipped, got %v, %v", res, err)
	}
}

func TestAccessPath(t *testing.T) {
	v := New(newCtx(), WithAccessPath())
	a, b := variable("a"), variable("b")
	root := &ast.Stats{Stats: []ast.Node{a, b}}

	recorded := map[string]PathEntry{}
	v.Register(ast.KindVariable, func(n ast.Node) (Result, error) {
		e, ok := v.Current()
		if !ok {
			t.Errorf("no access path while visiting %s", n.(*ast.Variable).Name)
		}
		recorded[n.(*ast.Variable).Name] = e
		return None(), nil
	})
	v.Register(ast.KindNode, func(n ast.Node) (Result, error) {
		_, err := v.VisitChildren(n)
		return None(), err
	})

	if _, err := v.Visit(root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e := recorded["a"]; e.Parent != root || e.Attr != "stats" || e.Index != 0 {
		t.Errorf("a visited at %+v", e)
	}
	if e := recorded["b"]; e.Parent != root || e.Attr != "stats" || e.Index != 1 {
		t.Errorf("b visited at %+v", e)
	}
	if len(v.AccessPath()) != 0 {
		t.Errorf("path should be empty after traversal, got %v", v.AccessPath())
	}
}

func TestAccessPathReleasedOnError(t *testing.T) {
	v := New(newCtx(), WithAccessPath())
	boom := errors.New("boom")
	v.Register(ast.KindNode, func(n ast.Node) (Result, error) {
		_, err := v.VisitChildren(n)
		return None(), err
	})
	v.Register(ast.KindVariable, func(ast.Node) (Result, error) { return None(), boom })

	root := &ast.Stats{Stats: []ast.Node{&ast.Return{Value: variable("x")}}}
	if _, err := v.Visit(root); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(v.AccessPath()) != 0 {
		t.Errorf("path leaked after error: %v", v.AccessPath())
	}
}

func TestMiddlewareOrder(t *testing.T) {
	v := New(newCtx())
	var trace []string
	v.Use(func(n ast.Node, next func(ast.Node) (Result, error)) (Result, error) {
		trace = append(trace, "outer>")
		defer func() { trace = append(trace, "<outer") }()
		return next(n)
	})
	v.Use(func(n ast.Node, next func(ast.Node) (Result, error)) (Result, error) {
		trace = append(trace, "inner>")
		defer func() { trace = append(trace, "<inner") }()
		return next(n)
	})
	v.Register(ast.KindNode, func(ast.Node) (Result, error) {
		trace = append(trace, "handler")
		return None(), nil
	})

	if _, err := v.Visit(&ast.Jump{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"outer>", "inner>", "handler", "<inner", "<outer"}
	if !reflect.DeepEqual(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestResultHelpers(t *testing.T) {
	if !None().IsNone() || !One(nil).IsNone() {
		t.Error("None and One(nil) should be empty")
	}
	x := variable("x")
	if One(x).Node() != x || One(x).IsMany() {
		t.Error("One should carry a single node")
	}
	m := Many(x, nil)
	if !m.IsMany() || m.Node() != nil || len(m.Nodes()) != 1 {
		t.Errorf("Many(x, nil) = %+v", m)
	}
}
