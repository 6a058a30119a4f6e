package labeling

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/billtopics/internal/core/domain"
)

func doc(id string, tokens ...string) domain.NormalizedDocument {
	return domain.NormalizedDocument{BillID: id, Tokens: tokens}
}

func fixture() ([]domain.NormalizedDocument, []int) {
	docs := []domain.NormalizedDocument{
		doc("b1", "solar", "solar", "panel"),
		doc("b2", "wetland", "habitat"),
		doc("b3", "solar", "habitat"),
		doc("b4", "solar", "rebate"),
		doc("b5", "habitat", "species"),
	}
	return docs, []int{0, 1, domain.OutlierTopicID, 0, 1}
}

func TestLabel_ClassTFIDF(t *testing.T) {
	docs, assignments := fixture()

	topics, err := New(10).Label(context.Background(), docs, assignments)
	require.NoError(t, err)
	require.Len(t, topics, 2)

	t0 := topics[0]
	assert.Equal(t, 0, t0.ID)
	assert.Equal(t, []string{"b1", "b4"}, t0.Members)
	assert.Equal(t, []string{"solar", "panel", "rebate"}, t0.Terms())
	assert.Equal(t, "0_solar_panel_rebate", t0.Name)

	// 11 tokens over 3 classes; "solar" appears 3 times in a 5-token class and 4 times overall.
	avg := 11.0 / 3.0
	assert.InDelta(t, 3.0/5.0*math.Log(1+avg/4), t0.Keywords[0].Weight, 1e-12)
	assert.InDelta(t, 1.0/5.0*math.Log(1+avg/1), t0.Keywords[1].Weight, 1e-12)

	t1 := topics[1]
	assert.Equal(t, 1, t1.ID)
	assert.Equal(t, []string{"b2", "b5"}, t1.Members)
	assert.Equal(t, []string{"habitat", "species", "wetland"}, t1.Terms())
}

func TestLabel_KeywordLimit(t *testing.T) {
	docs, assignments := fixture()

	topics, err := New(2).Label(context.Background(), docs, assignments)
	require.NoError(t, err)
	for _, topic := range topics {
		assert.Len(t, topic.Keywords, 2)
	}
	assert.Equal(t, "0_solar_panel", topics[0].Name)
}

func TestLabel_TiesBrokenLexicographically(t *testing.T) {
	docs := []domain.NormalizedDocument{
		doc("a", "zebra", "apple", "mango"),
		doc("b", "delta", "charlie", "bravo"),
	}

	topics, err := New(3).Label(context.Background(), docs, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "mango", "zebra"}, topics[0].Terms())
	assert.Equal(t, []string{"bravo", "charlie", "delta"}, topics[1].Terms())
}

func TestLabel_Deterministic(t *testing.T) {
	docs, assignments := fixture()

	first, err := New(5).Label(context.Background(), docs, assignments)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := New(5).Label(context.Background(), docs, assignments)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestLabel_EmptyTokens(t *testing.T) {
	docs := []domain.NormalizedDocument{doc("a"), doc("b"), doc("c")}

	topics, err := New(5).Label(context.Background(), docs, []int{0, 1, domain.OutlierTopicID})
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Empty(t, topics[0].Keywords)
	assert.Equal(t, "0", topics[0].Name)
}

func TestLabel_InternalConsistency(t *testing.T) {
	tests := []struct {
		name        string
		docs        []domain.NormalizedDocument
		assignments []int
		contains    string
	}{
		{
			name:        "length mismatch",
			docs:        []domain.NormalizedDocument{doc("a", "x")},
			assignments: []int{0, 1},
			contains:    "1 documents but 2 assignments",
		},
		{
			name:        "topic without members",
			docs:        []domain.NormalizedDocument{doc("a", "x"), doc("b", "y")},
			assignments: []int{0, 2},
			contains:    "topic 1 has no members",
		},
		{
			name:        "invalid id",
			docs:        []domain.NormalizedDocument{doc("a", "x")},
			assignments: []int{-3},
			contains:    "invalid topic id -3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(5).Label(context.Background(), tt.docs, tt.assignments)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInternalConsistency)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestNew_DefaultKeywords(t *testing.T) {
	assert.Equal(t, domain.DefaultKeywordCountPerTopic, New(0).keywords)
}
