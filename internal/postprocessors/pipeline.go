// Package postprocessors provides token filtering implementations.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.TokenPipeline = (*Pipeline)(nil)

// Pipeline chains multiple TokenProcessors and runs them in order.
// It implements the TokenPipeline interface.
type Pipeline struct {
	processors []driven.TokenProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.TokenProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs the tokens through all processors in order.
// Each processor receives the output of the previous one.
func (p *Pipeline) Process(ctx context.Context, tokens []string) ([]string, error) {
	for _, processor := range p.processors {
		var err error
		tokens, err = processor.Process(ctx, tokens)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	return tokens, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.TokenProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// Names returns the processor names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}
