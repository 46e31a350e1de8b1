package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/config"
	"github.com/funvibe/minispec/internal/specializer"
	"github.com/funvibe/minispec/internal/store"
	"github.com/funvibe/minispec/internal/typesystem"
)

const kernels = `
kernels:
  - name: axpy
    ndim: 2
    params:
      - {name: out, ndim: 2}
      - {name: x, ndim: 2}
      - {name: alpha}
    body:
      - out = x * alpha
  - name: checked
    ndim: 1
    may_fail: true
    params: [{name: out, ndim: 1}]
    body: [out = 0]
`

func newContext(t *testing.T, yaml string) (*PipelineContext, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.ParseConfig([]byte(yaml), "k.yaml")
	if err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	var logs bytes.Buffer
	ctx := NewPipelineContext(cfg, "k.yaml")
	ctx.Logger = log.New(&logs, "", 0)
	return ctx, &logs
}

func TestDefaultPipeline(t *testing.T) {
	ctx, logs := newContext(t, kernels)
	ctx = Default(nil).Run(ctx)

	if len(ctx.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	if len(ctx.Functions) != 2 {
		t.Fatalf("built %d functions, want 2", len(ctx.Functions))
	}

	for _, key := range []string{"axpy/strided", "axpy/contig", "checked/strided", "checked/contig"} {
		r, ok := ctx.Result(key)
		if !ok {
			t.Errorf("missing result %s", key)
			continue
		}
		if r.Tree.SpecializationName != r.Specialization {
			t.Errorf("%s: tree specialized as %q", key, r.Tree.SpecializationName)
		}
		if n := len(ast.Collect(r.Tree, ast.KindNDIterate)); n != 0 {
			t.Errorf("%s: %d iteration markers left", key, n)
		}
	}

	for _, tt := range []struct {
		key  string
		want int
	}{
		{"axpy/strided", 2},
		{"checked/strided", 1},
		{"axpy/contig", 0},
		{"checked/contig", 0},
	} {
		r, _ := ctx.Result(tt.key)
		if n := len(ast.Collect(r.Tree, ast.KindStridePointer)); n != tt.want {
			t.Errorf("%s: %d stride pointers, want %d", tt.key, n, tt.want)
		}
	}
	for _, fn := range ctx.Functions {
		if len(ast.Collect(fn, ast.KindStridePointer)) == 0 {
			t.Errorf("%s: specializing must leave the input's stride pointers alone", fn.Name)
		}
	}

	checked, _ := ctx.Result("checked/strided")
	if n := len(ast.Collect(checked.Tree, ast.KindErrorHandler)); n != 1 {
		t.Errorf("checked kernel has %d error handlers, want 1", n)
	}

	if !strings.Contains(logs.String(), "specialized axpy/contig") {
		t.Errorf("log does not mention the run:\n%s", logs)
	}
	if !strings.HasPrefix(logs.String(), "["+ctx.RunID.String()[:8]+"]") {
		t.Errorf("log lines should carry the run id:\n%s", logs)
	}
}

func TestUnknownSpecialization(t *testing.T) {
	ctx, _ := newContext(t, kernels)
	ctx.Config.Specializations = []string{"strided", "fortran"}
	ctx = Default(nil).Run(ctx)

	if len(ctx.Errors) != 1 || !errors.Is(ctx.Errors[0], specializer.ErrUnknownSpecialization) {
		t.Fatalf("errors = %v, want one unknown specialization", ctx.Errors)
	}
	if len(ctx.Results) != 2 {
		t.Errorf("got %d results, want the strided ones", len(ctx.Results))
	}
}

func TestValidateDropsBrokenFunctions(t *testing.T) {
	ctx, _ := newContext(t, kernels)
	ctx = New(&KernelProcessor{}).Run(ctx)

	broken := ctx.Functions[0]
	broken.ShapeVar = ctx.Builder.Variable("shape", typesystem.Vector{Elem: typesystem.Index, Len: 5})
	dup := ctx.Functions[1]
	dup.Args = append(dup.Args, dup.Args[0])

	ctx = New(&ValidateProcessor{}, &SpecializeProcessor{}).Run(ctx)
	if len(ctx.Errors) != 2 {
		t.Fatalf("errors = %v, want 2", ctx.Errors)
	}
	if !errors.Is(ctx.Errors[0], specializer.ErrShapeRankMismatch) {
		t.Errorf("first error = %v, want shape rank mismatch", ctx.Errors[0])
	}
	if !strings.Contains(ctx.Errors[1].Error(), "twice") {
		t.Errorf("second error = %v, want duplicate argument", ctx.Errors[1])
	}
	if len(ctx.Functions) != 0 || len(ctx.Results) != 0 {
		t.Errorf("broken functions were specialized")
	}
}

func TestMissingConfig(t *testing.T) {
	ctx := Default(nil).Run(NewPipelineContext(nil, ""))
	if len(ctx.Errors) != 1 {
		t.Errorf("errors = %v, want one", ctx.Errors)
	}
}

func TestTraceLogsDispatch(t *testing.T) {
	ctx, logs := newContext(t, kernels)
	ctx.Trace = true
	ctx.Config.Specializations = []string{"contig"}
	ctx = Default(nil).Run(ctx)

	if len(ctx.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	out := logs.String()
	for _, want := range []string{
		"axpy/contig: NDIterate handled as NDIterate",
		"axpy/contig: Return handled as Node",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("trace is missing %q:\n%s", want, out)
		}
	}
}

func TestStoreRecordsRun(t *testing.T) {
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	ctx, _ := newContext(t, kernels)
	ctx = Default(st).Run(ctx)
	if len(ctx.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}

	records, err := st.Run(context.Background(), ctx.RunID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != len(ctx.Results) {
		t.Fatalf("stored %d records, want %d", len(records), len(ctx.Results))
	}
	latest, err := st.Latest(context.Background(), "axpy", "contig")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(latest.Tree, "FunctionNode axpy [contig]\n") {
		t.Errorf("stored tree:\n%s", latest.Tree)
	}
}
