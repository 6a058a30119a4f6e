package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/billtopics/internal/core/domain"
)

func run(id string, started time.Time) *domain.RunResult {
	return &domain.RunResult{
		RunID:     id,
		StartedAt: started,
		BillCount: 3,
		Topics:    []domain.Topic{{ID: 0, Members: []string{"A", "B"}}},
		Skipped:   []domain.SkippedRecord{{Index: 3, Reason: "missing raw_text"}},
	}
}

func TestNewResultStore(t *testing.T) {
	store := NewResultStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.runs)
}

func TestResultStore_SaveAndGet(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()
	r := run("run-1", time.Now())

	require.NoError(t, store.SaveRun(ctx, r))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Same(t, r, got)
}

func TestResultStore_SaveRun_Invalid(t *testing.T) {
	store := NewResultStore()

	assert.ErrorIs(t, store.SaveRun(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveRun(context.Background(), &domain.RunResult{}), domain.ErrInvalidInput)
}

func TestResultStore_GetRun_NotFound(t *testing.T) {
	_, err := NewResultStore().GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResultStore_ListRuns_NewestFirst(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()
	base := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, run("b", base)))
	require.NoError(t, store.SaveRun(ctx, run("c", base.Add(time.Hour))))
	require.NoError(t, store.SaveRun(ctx, run("a", base)))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "a", runs[1].RunID)
	assert.Equal(t, "b", runs[2].RunID)
	assert.Equal(t, 1, runs[0].TopicCount)
	assert.Equal(t, 1, runs[0].SkippedCount)
}

func TestResultStore_DeleteRun(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()
	require.NoError(t, store.SaveRun(ctx, run("run-1", time.Now())))

	require.NoError(t, store.DeleteRun(ctx, "run-1"))
	_, err := store.GetRun(ctx, "run-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.DeleteRun(ctx, "run-1"), domain.ErrNotFound)
}

func TestResultStore_Concurrency(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("run-%d", n)
			_ = store.SaveRun(ctx, run(id, time.Now()))
			_, _ = store.GetRun(ctx, id)
			_, _ = store.ListRuns(ctx)
		}(i)
	}
	wg.Wait()

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 20)
}
