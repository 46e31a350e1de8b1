package pipeline

import (
	"context"

	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/kernel"
	"github.com/funvibe/minispec/internal/prettyprinter"
	"github.com/funvibe/minispec/internal/specializer"
	"github.com/funvibe/minispec/internal/store"
	"github.com/funvibe/minispec/internal/typesystem"
	"github.com/funvibe/minispec/internal/visitor"
	"github.com/pkg/errors"
)

// KernelProcessor builds the configured kernels into function trees.
type KernelProcessor struct{}

func (kp *KernelProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Config == nil {
		ctx.Errors = append(ctx.Errors, errors.New("no configuration loaded"))
		return ctx
	}
	for _, k := range ctx.Config.Kernels {
		fn, err := kernel.Build(ctx.Builder, ctx.Types, ctx.FilePath, k)
		if err != nil {
			ctx.Errors = append(ctx.Errors, errors.Wrapf(err, "kernel %s", k.Name))
			continue
		}
		ctx.Functions = append(ctx.Functions, fn)
	}
	ctx.logf("built %d of %d kernels", len(ctx.Functions), len(ctx.Config.Kernels))
	return ctx
}

// ValidateProcessor drops functions that cannot be specialized and reports
// unknown specializations.
type ValidateProcessor struct{}

func (vp *ValidateProcessor) Process(ctx *PipelineContext) *PipelineContext {
	valid := ctx.Functions[:0:0]
	for _, fn := range ctx.Functions {
		if err := validateFunction(fn); err != nil {
			ctx.Errors = append(ctx.Errors, err)
			continue
		}
		valid = append(valid, fn)
	}
	ctx.Functions = valid

	if ctx.Config != nil {
		for _, name := range ctx.Config.Specializations {
			if _, err := specializer.Lookup(name); err != nil {
				ctx.Errors = append(ctx.Errors, err)
			}
		}
	}
	return ctx
}

func validateFunction(fn *ast.FunctionNode) error {
	if fn.ShapeVar == nil {
		return errors.Errorf("%s: %s has no shape vector", fn.Pos(), fn.Name)
	}
	if shape, ok := fn.ShapeVar.Type.(typesystem.Vector); !ok || shape.Len != fn.NDim {
		return errors.Wrapf(specializer.ErrShapeRankMismatch, "%s: %s", fn.Pos(), fn.Name)
	}
	seen := make(map[string]bool, len(fn.Args))
	for _, arg := range fn.Args {
		if seen[arg.Name] {
			return errors.Errorf("%s: %s declares %s twice", fn.Pos(), fn.Name, arg.Name)
		}
		seen[arg.Name] = true
		if nd := typesystem.NDim(arg.Type); nd > fn.NDim {
			return errors.Wrapf(specializer.ErrInsufficientIndices, "%s: %s: %s has %d dimensions, function has %d",
				fn.Pos(), fn.Name, arg.Name, nd, fn.NDim)
		}
	}
	return nil
}

// SpecializeProcessor runs every requested specialization over every
// function. Each run gets a fresh specializer.
type SpecializeProcessor struct{}

func (sp *SpecializeProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Config == nil {
		return ctx
	}
	vctx := visitor.NewBasicContext(ctx.Builder, ctx.Types)

	for _, fn := range ctx.Functions {
		for _, name := range ctx.Config.Specializations {
			ctor, err := specializer.Lookup(name)
			if err != nil {
				// already reported by validation
				continue
			}
			out, err := ctor(vctx, sp.options(ctx, fn.Name, name)...).Specialize(fn)
			if err != nil {
				ctx.Errors = append(ctx.Errors, err)
				continue
			}
			r := Result{Function: fn.Name, Specialization: name, Tree: out}
			ctx.Results = append(ctx.Results, r)
			ctx.logf("specialized %s", r.Key())
		}
	}
	return ctx
}

func (sp *SpecializeProcessor) options(ctx *PipelineContext, fn, spec string) []visitor.Option {
	if !ctx.Trace {
		return nil
	}
	return []visitor.Option{
		visitor.WithAccessPath(),
		visitor.WithResolveHook(func(concrete, resolved ast.Kind) {
			ctx.logf("%s/%s: %s handled as %s", fn, spec, concrete, resolved)
		}),
	}
}

// StoreProcessor records the printed results of the run. It does nothing
// without a store.
type StoreProcessor struct {
	Store *store.Store
}

func (sp *StoreProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if sp.Store == nil || len(ctx.Results) == 0 {
		return ctx
	}
	printer := prettyprinter.NewTreePrinter(visitor.NewBasicContext(ctx.Builder, ctx.Types))
	records := make([]store.Record, 0, len(ctx.Results))
	for _, r := range ctx.Results {
		tree, err := printer.Print(r.Tree)
		if err != nil {
			ctx.Errors = append(ctx.Errors, errors.Wrapf(err, "printing %s", r.Key()))
			continue
		}
		records = append(records, store.Record{Function: r.Function, Specialization: r.Specialization, Tree: tree})
	}
	if err := sp.Store.SaveRun(context.Background(), ctx.RunID, records); err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.logf("recorded %d results", len(records))
	return ctx
}
