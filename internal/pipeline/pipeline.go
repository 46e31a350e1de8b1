package pipeline

import (
	"github.com/funvibe/minispec/internal/store"
)

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors so every kernel and specialization reports
		// its diagnostics in one run.
	}
	return ctx
}

// Default is the full driver pipeline: build, validate, specialize, and
// record into st when it is not nil.
func Default(st *store.Store) *Pipeline {
	return New(&KernelProcessor{}, &ValidateProcessor{}, &SpecializeProcessor{}, &StoreProcessor{Store: st})
}
