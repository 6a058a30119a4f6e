package postprocessors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// registryMockProcessor is a simple mock for testing registry functionality.
type registryMockProcessor struct {
	name string
}

func (m *registryMockProcessor) Name() string { return m.name }
func (m *registryMockProcessor) Process(_ context.Context, tokens []string) ([]string, error) {
	return tokens, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.Empty(t, r.builders)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	r.Register("test", func(_ map[string]any) (driven.TokenProcessor, error) {
		return &registryMockProcessor{name: "test"}, nil
	})

	assert.True(t, r.Has("test"))
	assert.False(t, r.Has("other"))
}

func TestRegistry_Build_Success(t *testing.T) {
	r := NewRegistry()
	r.Register("test", func(cfg map[string]any) (driven.TokenProcessor, error) {
		name := "default"
		if n, ok := cfg["name"].(string); ok {
			name = n
		}
		return &registryMockProcessor{name: name}, nil
	})

	proc, err := r.Build("test", map[string]any{"name": "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", proc.Name())
}

func TestRegistry_Build_Unknown(t *testing.T) {
	_, err := NewRegistry().Build("missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown processor: missing")
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	assert.Equal(t, []string{"minlength", "stopwords"}, r.Names())
}

func TestBuildStopwords_AnySlice(t *testing.T) {
	proc, err := buildStopwords(map[string]any{"words": []any{"energy", "grid"}})
	require.NoError(t, err)

	out, err := proc.Process(context.Background(), []string{"energy", "storage", "grid"})
	require.NoError(t, err)
	assert.Equal(t, []string{"storage"}, out)
}

func TestBuildStopwords_InvalidType(t *testing.T) {
	_, err := buildStopwords(map[string]any{"words": 12})
	assert.Error(t, err)

	_, err = buildStopwords(map[string]any{"words": []any{"ok", 3}})
	assert.Error(t, err)
}

func TestBuildStopwords_Defaults(t *testing.T) {
	proc, err := buildStopwords(nil)
	require.NoError(t, err)

	out, err := proc.Process(context.Background(), []string{"the", "wetland"})
	require.NoError(t, err)
	assert.Equal(t, []string{"wetland"}, out)
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want int
	}{
		{"int", 5, 5},
		{"int64", int64(6), 6},
		{"float64", float64(7), 7},
		{"string", "8", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getIntFromConfig(map[string]any{"k": tt.val}, "k"))
		})
	}
	assert.Equal(t, 0, getIntFromConfig(map[string]any{}, "k"))
}
