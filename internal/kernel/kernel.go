// Package kernel turns configured kernels into function trees ready for
// specialization.
package kernel

import (
	"strconv"

	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/builder"
	"github.com/funvibe/minispec/internal/config"
	"github.com/funvibe/minispec/internal/typesystem"
	"github.com/pkg/errors"
)

// Call stands in for a call into the host runtime inside a kernel body.
type Call struct {
	Kernel string
	Fails  bool
}

func (c Call) MayFail() bool  { return c.Fails }
func (c Call) String() string { return "call " + c.Kernel }

// Build assembles the function for k:
//
//	kernel(params...) { strides(arrays...); nditerate { body } }
//
// Every array parameter gets its stride pointer loaded ahead of the loop
// nest. Nodes are positioned at their line in file.
func Build(b *builder.Builder, types *typesystem.Mapper, file string, k config.Kernel) (*ast.FunctionNode, error) {
	prev := b.Pos
	defer func() { b.Pos = prev }()

	kernelPos := ast.Pos{File: file, Line: k.Line, Column: k.Column}
	b.Pos = kernelPos

	params := make(map[string]*ast.Variable, len(k.Params))
	args := make([]*ast.Variable, 0, len(k.Params))
	for _, p := range k.Params {
		t, err := types.Map(typesystem.Foreign{Dtype: p.Dtype, NDim: p.NDim})
		if err != nil {
			return nil, errors.Wrapf(err, "%s: parameter %s", kernelPos, p.Name)
		}
		v := b.Variable(p.Name, t)
		params[p.Name] = v
		args = append(args, v)
	}

	operand := func(text string, dtype typesystem.Type) (ast.Node, error) {
		if v, ok := params[text]; ok {
			return b.Variable(v.Name, v.Type), nil
		}
		value, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, errors.Errorf("%s: unknown operand %q", b.Pos, text)
		}
		return b.Constant(value, dtype), nil
	}

	stats := make([]ast.Node, 0, len(k.Body)+1)
	for _, st := range k.Body {
		b.Pos = ast.Pos{File: file, Line: st.Line, Column: st.Column}
		target, ok := params[st.Target]
		if !ok {
			return nil, errors.Errorf("%s: assignment to unknown parameter %q", b.Pos, st.Target)
		}
		dtype := typesystem.Dtype(target.Type)

		value, err := operand(st.LHS, dtype)
		if err != nil {
			return nil, err
		}
		if st.Op != "" {
			rhs, err := operand(st.RHS, dtype)
			if err != nil {
				return nil, err
			}
			value = b.Binop(st.Op, value, rhs)
		}
		stats = append(stats, b.Assign(b.Variable(target.Name, target.Type), value))
	}

	b.Pos = kernelPos
	if k.MayFail {
		stats = append(stats, b.Wrap(Call{Kernel: k.Name, Fails: true}, nil))
	}

	prologue := make([]ast.Node, 0, len(args)+1)
	for _, v := range args {
		if typesystem.IsArray(v.Type) {
			prologue = append(prologue, b.StridePointer(b.Variable(v.Name, v.Type)))
		}
	}
	body := b.Stats(append(prologue, b.NDIterate(b.Stats(stats...)))...)
	return b.Function(k.Name, args, k.NDim, body), nil
}

// BuildAll builds every kernel of cfg, stopping at the first error.
func BuildAll(b *builder.Builder, types *typesystem.Mapper, file string, cfg *config.Config) ([]*ast.FunctionNode, error) {
	fns := make([]*ast.FunctionNode, 0, len(cfg.Kernels))
	for _, k := range cfg.Kernels {
		fn, err := Build(b, types, file, k)
		if err != nil {
			return nil, errors.Wrapf(err, "kernel %s", k.Name)
		}
		fns = append(fns, fn)
	}
	return fns, nil
}
