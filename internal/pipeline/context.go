package pipeline

import (
	"io"
	"log"

	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/builder"
	"github.com/funvibe/minispec/internal/config"
	"github.com/funvibe/minispec/internal/typesystem"
	"github.com/google/uuid"
)

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Result is one specialized function.
type Result struct {
	Function       string
	Specialization string
	Tree           *ast.FunctionNode
}

// Key identifies the result as function/specialization.
func (r Result) Key() string {
	return r.Function + "/" + r.Specialization
}

// PipelineContext carries state between stages.
type PipelineContext struct {
	RunID    uuid.UUID
	FilePath string
	Config   *config.Config

	Builder *builder.Builder
	Types   *typesystem.Mapper

	Functions []*ast.FunctionNode
	Results   []Result
	Errors    []error

	Logger *log.Logger
	// Trace logs every dispatch resolution and records access paths.
	Trace bool
}

func NewPipelineContext(cfg *config.Config, filePath string) *PipelineContext {
	return &PipelineContext{
		RunID:    uuid.New(),
		FilePath: filePath,
		Config:   cfg,
		Builder:  builder.New(),
		Types:    typesystem.NewMapper(),
		Logger:   log.New(io.Discard, "", 0),
		Trace:    config.IsTraceMode,
	}
}

// Result returns the result stored under key.
func (ctx *PipelineContext) Result(key string) (Result, bool) {
	for _, r := range ctx.Results {
		if r.Key() == key {
			return r, true
		}
	}
	return Result{}, false
}

func (ctx *PipelineContext) logf(format string, args ...any) {
	if ctx.Logger == nil {
		return
	}
	ctx.Logger.Printf("[%s] "+format, append([]any{ctx.RunID.String()[:8]}, args...)...)
}
