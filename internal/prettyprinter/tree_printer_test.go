package prettyprinter

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/builder"
	"github.com/funvibe/minispec/internal/specializer"
	"github.com/funvibe/minispec/internal/typesystem"
	"github.com/funvibe/minispec/internal/visitor"
)

func TestPrintTree(t *testing.T) {
	b := builder.New()
	out := b.Variable("out", typesystem.Float64)
	fn := b.Function("k", []*ast.Variable{out}, 0, b.Stats(
		b.Assign(b.Variable("out", typesystem.Float64), b.Binop("+", b.Constant(1, nil), b.Constant(2, nil))),
		b.Jump("done"),
	))

	p := NewTreePrinter(visitor.NewBasicContext(b, nil))
	got, err := p.Print(fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `FunctionNode k
  body: Stats
    stats[0]: Assign
      lhs: Variable out : float64
      rhs: Binop + : npy_intp
        lhs: Constant 1 : npy_intp
        rhs: Constant 2 : npy_intp
    stats[1]: Jump done
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintDoesNotModify(t *testing.T) {
	b := builder.New()
	fn := b.Function("k", nil, 1, b.Stats(b.NDIterate(b.Stats())))
	p := NewTreePrinter(visitor.NewBasicContext(b, nil))

	first, err := p.Print(fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := p.Print(fn)
	if first != second {
		t.Errorf("printing is not repeatable:\n%s\n%s", first, second)
	}
	ast.Walk(fn, func(n ast.Node) bool {
		if n.Base().Specialized {
			t.Errorf("%s was marked", n.Kind())
		}
		return true
	})
}

func TestPrintSpecialized(t *testing.T) {
	b := builder.New()
	ctx := visitor.NewBasicContext(b, nil)
	a := b.Variable("a", typesystem.Array{Dtype: typesystem.Float32, NDim: 1})
	fn := b.Function("k", []*ast.Variable{a}, 1, b.Stats(
		b.NDIterate(b.Assign(b.Variable("a", a.Type), b.Constant(0, nil))),
	))
	res, err := specializer.NewStrided(ctx).Specialize(fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := NewTreePrinter(ctx).Fprint(&buf, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"FunctionNode k [strided]\n",
		"    stats[0]: ForNode\n",
		"condition: Binop < : npy_intp",
		"rhs: ShapeIndex shape[0] : npy_intp",
		"lhs: Index : float32",
		"offsets[0]: Binop * : npy_intp",
		"rhs: Stride a[0] : npy_intp",
		"operand: DataPointer a : float32 *",
		"    stats[1]: Return\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestPrintColor(t *testing.T) {
	b := builder.New()
	p := NewTreePrinter(visitor.NewBasicContext(b, nil))
	p.Color = true
	got, err := p.Print(b.Return(b.Constant(3, nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"\033[36mReturn\033[0m", "\033[33mvalue:\033[0m", "\033[32m3\033[0m"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q is missing %q", got, want)
		}
	}
}

func TestColorSupportedRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ColorSupported(os.Stdout) {
		t.Error("NO_COLOR should disable colour")
	}
}
