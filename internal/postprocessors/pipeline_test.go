package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/billtopics/internal/core/domain"
)

// mockProcessor is a test processor that returns predefined tokens.
type mockProcessor struct {
	name   string
	tokens []string
	err    error
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, tokens []string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.tokens != nil {
		return m.tokens, nil
	}
	return tokens, nil
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	require.NotNil(t, p)
	assert.Equal(t, 0, p.Len())
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline()
	p.Add(&mockProcessor{name: "test"})

	assert.Equal(t, 1, p.Len())
	assert.Equal(t, []string{"test"}, p.Names())
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	p := NewPipeline()

	tokens, err := p.Process(context.Background(), []string{"solar", "wind"})
	require.NoError(t, err)
	assert.Equal(t, []string{"solar", "wind"}, tokens)
}

func TestPipeline_Process_Chained(t *testing.T) {
	first := &mockProcessor{name: "first", tokens: []string{"replaced"}}
	second := &mockProcessor{name: "second"}
	p := NewPipeline(first, second)

	tokens, err := p.Process(context.Background(), []string{"original"})
	require.NoError(t, err)
	assert.Equal(t, []string{"replaced"}, tokens)
}

func TestPipeline_Process_Error(t *testing.T) {
	boom := errors.New("boom")
	p := NewPipeline(&mockProcessor{name: "ok"}, &mockProcessor{name: "broken", err: boom})

	_, err := p.Process(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "processor broken")
}

func TestPipelineFromConfig(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	cfg := domain.DefaultConfig().WithStopwords([]string{"the", "credit"})
	cfg.MinTokenLength = 4

	p, err := PipelineFromConfig(r, cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultOrder, p.Names())

	tokens, err := p.Process(context.Background(),
		[]string{"the", "electric", "vehicle", "tax", "credit", "program"})
	require.NoError(t, err)
	assert.Equal(t, []string{"electric", "vehicle", "program"}, tokens)
}

func TestPipelineFromConfig_UnknownProcessor(t *testing.T) {
	_, err := PipelineFromConfig(NewRegistry(), domain.DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown processor")
}
