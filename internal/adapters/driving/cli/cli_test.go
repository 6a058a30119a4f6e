package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/billtopics/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
	"github.com/custodia-labs/billtopics/internal/core/ports/driving"
)

func ptr[T any](v T) *T { return &v }

func sampleResult() *domain.RunResult {
	started := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	return &domain.RunResult{
		RunID:      "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Config:     domain.DefaultConfig(),
		BillCount:  3,
		Topics: []domain.Topic{{
			ID:       0,
			Name:     "0_electric_vehicle",
			Keywords: []domain.Keyword{{Term: "electric", Weight: 0.4}, {Term: "vehicle", Weight: 0.3}},
			Members:  []string{"B1", "B2"},
		}},
		OutlierCount: 1,
		Assignments: []domain.Assignment{
			{BillID: "B1", TopicID: 0}, {BillID: "B2", TopicID: 0}, {BillID: "B3", TopicID: -1},
		},
		Aggregates: []domain.AggregateRow{
			{TopicID: 0, Dimension: domain.DimensionParty, Value: "D", Count: 1},
			{TopicID: 0, Dimension: domain.DimensionParty, Value: "R", Count: 1},
			{TopicID: 0, Dimension: domain.DimensionPeriod, Value: domain.PeriodPost, Count: 2},
		},
		Skipped: []domain.SkippedRecord{{Index: 3, Reason: "missing bill_id"}},
	}
}

type fakeSource struct {
	records []domain.BillRecord
	err     error
}

func (s *fakeSource) Load(context.Context) ([]domain.BillRecord, error) { return s.records, s.err }
func (s *fakeSource) Name() string                                       { return "fake" }

type fakePipeline struct {
	result *domain.RunResult
	err    error
	calls  int
}

func (p *fakePipeline) Run(_ context.Context, _ []domain.BillRecord) (*domain.RunResult, error) {
	p.calls++
	return p.result, p.err
}

type fakeResults struct {
	runs      []domain.RunSummary
	run       *domain.RunResult
	deleted   []string
	exported  []string
	err       error
	exportErr error
}

func (r *fakeResults) ListRuns(context.Context) ([]domain.RunSummary, error) { return r.runs, r.err }

func (r *fakeResults) GetRun(_ context.Context, id string) (*domain.RunResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.run == nil || r.run.RunID != id {
		return nil, domain.ErrNotFound
	}
	return r.run, nil
}

func (r *fakeResults) DeleteRun(_ context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeResults) Export(_ context.Context, id, format, dir string) ([]string, error) {
	if r.exportErr != nil {
		return nil, r.exportErr
	}
	r.exported = append(r.exported, id+":"+format)
	return []string{filepath.Join(dir, "result."+format)}, nil
}

type fakeExporter struct {
	dirs []string
}

func (e *fakeExporter) Format() string { return "csv" }

func (e *fakeExporter) Export(_ *domain.RunResult, dir string) ([]string, error) {
	e.dirs = append(e.dirs, dir)
	return []string{filepath.Join(dir, "topics.csv")}, nil
}

// harness wires fakes into the command package variables.
type harness struct {
	cfg       domain.Config
	source    *fakeSource
	pipeline  *fakePipeline
	results   *fakeResults
	store     *memory.ConfigStore
	exporter  *fakeExporter
	persisted []bool
	got       []domain.Config
	defaults  int
}

func setup(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		cfg:      domain.DefaultConfig(),
		source:   &fakeSource{records: []domain.BillRecord{{ID: ptr("B1"), RawText: ptr("text")}}},
		pipeline: &fakePipeline{result: sampleResult()},
		results:  &fakeResults{},
		store:    memory.NewConfigStore(),
		exporter: &fakeExporter{},
	}
	SetServices(Services{
		LoadConfig: func() (domain.Config, error) { return h.cfg, nil },
		NewPipeline: func(cfg domain.Config, persist bool) (driving.TopicPipeline, error) {
			h.got = append(h.got, cfg)
			h.persisted = append(h.persisted, persist)
			return h.pipeline, nil
		},
		OpenSource:  func(string) (driven.BillSource, error) { return h.source, nil },
		Results:     h.results,
		ConfigStore: h.store,
		Exporters:   []driven.Exporter{h.exporter},
		WriteDefaults: func(domain.Config) error {
			h.defaults++
			return h.store.Set("target_topic_count", 12)
		},
	})
	t.Cleanup(func() { SetServices(Services{}) })
	return h
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(args ...string) (string, error) {
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRunCmd_PrintsReportAndSaves(t *testing.T) {
	h := setup(t)

	out, err := execute("run", "bills.json")

	require.NoError(t, err)
	assert.Contains(t, out, "0_electric_vehicle")
	assert.Contains(t, out, "electric, vehicle")
	assert.Contains(t, out, "Saved run run-1")
	assert.Equal(t, []bool{true}, h.persisted)
	assert.Equal(t, 1, h.pipeline.calls)
}

func TestRunCmd_NoStore(t *testing.T) {
	h := setup(t)

	out, err := execute("run", "bills.json", "--no-store")

	require.NoError(t, err)
	assert.NotContains(t, out, "Saved run")
	assert.Equal(t, []bool{false}, h.persisted)
}

func TestRunCmd_FlagOverrides(t *testing.T) {
	h := setup(t)

	_, err := execute("run", "bills.json", "--topics", "3", "--min-topic-size", "4",
		"--keywords", "5", "--seed", "7", "--cutoff", "2020-01-02")

	require.NoError(t, err)
	require.Len(t, h.got, 1)
	cfg := h.got[0]
	assert.Equal(t, 3, cfg.TargetTopicCount)
	assert.Equal(t, 4, cfg.MinTopicSize)
	assert.Equal(t, 5, cfg.KeywordCountPerTopic)
	assert.Equal(t, int64(7), cfg.RandomSeed)
	assert.Equal(t, time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC), cfg.PeriodCutoffDate)
}

func TestRunCmd_UnsetFlagsKeepConfig(t *testing.T) {
	h := setup(t)
	h.cfg.TargetTopicCount = 9

	_, err := execute("run", "bills.json")

	require.NoError(t, err)
	assert.Equal(t, 9, h.got[0].TargetTopicCount)
}

func TestRunCmd_BadCutoff(t *testing.T) {
	setup(t)

	_, err := execute("run", "bills.json", "--cutoff", "02/01/2020")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRunCmd_Export(t *testing.T) {
	h := setup(t)
	dir := t.TempDir()

	out, err := execute("run", "bills.json", "--export", dir)

	require.NoError(t, err)
	assert.Equal(t, []string{dir}, h.exporter.dirs)
	assert.Contains(t, out, "Wrote "+filepath.Join(dir, "topics.csv"))
}

func TestRunCmd_UnknownExportFormat(t *testing.T) {
	h := setup(t)

	_, err := execute("run", "bills.json", "--export", t.TempDir(), "--format", "xml")

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Zero(t, h.pipeline.calls)
}

func TestRunCmd_Failures(t *testing.T) {
	t.Run("pipeline", func(t *testing.T) {
		h := setup(t)
		h.pipeline.err = &domain.RunError{Stage: "cluster", Err: &domain.InsufficientTopicsError{}}

		_, err := execute("run", "bills.json")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "run failed")
		var runErr *domain.RunError
		assert.ErrorAs(t, err, &runErr)
	})

	t.Run("source", func(t *testing.T) {
		h := setup(t)
		h.source.err = errors.New("disk on fire")

		_, err := execute("run", "bills.json")

		assert.ErrorContains(t, err, "disk on fire")
		assert.Zero(t, h.pipeline.calls)
	})

	t.Run("not configured", func(t *testing.T) {
		SetServices(Services{})

		_, err := execute("run", "bills.json")

		assert.ErrorContains(t, err, "pipeline not configured")
	})

	t.Run("missing argument", func(t *testing.T) {
		setup(t)

		_, err := execute("run")

		assert.Error(t, err)
	})
}

func TestRunsCmd(t *testing.T) {
	h := setup(t)

	out, err := execute("runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs stored.")

	h.results.runs = []domain.RunSummary{sampleResult().Summary()}
	out, err = execute("runs")
	require.NoError(t, err)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "2024-05-01T09:00:00Z")

	out, err = execute("runs", "delete", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted run run-1")
	assert.Equal(t, []string{"run-1"}, h.results.deleted)

	h.results.err = domain.ErrNotFound
	_, err = execute("runs", "delete", "run-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShowCmd(t *testing.T) {
	h := setup(t)
	h.results.run = sampleResult()

	out, err := execute("show", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "party: D 1, R 1")
	assert.Contains(t, out, "period: post 2")

	_, err = execute("show", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportCmd(t *testing.T) {
	h := setup(t)
	dir := t.TempDir()

	out, err := execute("export", "run-1", "--format", "JSON", "--output", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1:json"}, h.results.exported)
	assert.Contains(t, out, filepath.Join(dir, "result.json"))

	h.results.exportErr = domain.ErrUnsupportedType
	_, err = execute("export", "run-1", "--format", "xml")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestResultCommands_NotConfigured(t *testing.T) {
	SetServices(Services{})

	for _, args := range [][]string{{"runs"}, {"runs", "delete", "x"}, {"show", "x"}, {"export", "x"}} {
		_, err := execute(args...)
		assert.ErrorContains(t, err, "result service not configured", strings.Join(args, " "))
	}
}

func TestConfigInitCmd(t *testing.T) {
	h := setup(t)

	out, err := execute("config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default configuration")
	assert.Equal(t, 1, h.defaults)

	_, err = execute("config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute("config", "init", "--force")
	require.NoError(t, err)
	assert.Equal(t, 2, h.defaults)
}

func TestConfigShowAndSet(t *testing.T) {
	h := setup(t)

	out, err := execute("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "defaults apply")

	_, err = execute("config", "set", "clustering.epsilon", "0.5")
	require.NoError(t, err)
	_, err = execute("config", "set", "workers", "4")
	require.NoError(t, err)

	eps, _ := h.store.Get("clustering.epsilon")
	assert.Equal(t, 0.5, eps)
	workers, _ := h.store.Get("workers")
	assert.Equal(t, int64(4), workers)

	out, err = execute("config", "show")
	require.NoError(t, err)
	assert.Equal(t, "clustering.epsilon = 0.5\nworkers = 4\n", out)
}

func TestConfigSet_WarnsOnInvalidConfig(t *testing.T) {
	h := setup(t)
	SetServices(Services{
		ConfigStore: h.store,
		LoadConfig: func() (domain.Config, error) {
			return domain.Config{}, &domain.ConfigurationError{Field: "workers", Reason: "must not be negative"}
		},
	})

	out, err := execute("config", "set", "--", "workers", "-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"FALSE", false},
		{"12", int64(12)},
		{"-3", int64(-3)},
		{"0.25", 0.25},
		{"2022-08-16", "2022-08-16"},
		{"openai", "openai"},
		{"1", int64(1)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}

func TestRenderReport_TruncatesSkipped(t *testing.T) {
	result := sampleResult()
	result.Skipped = nil
	for i := 0; i < 15; i++ {
		result.Skipped = append(result.Skipped, domain.SkippedRecord{Index: i, Reason: "missing raw_text", BillID: "X"})
	}
	result.Correlations = []domain.CorrelationEntry{{TopicA: 0, TopicB: 1, Weight: 0.25}}

	out := renderReport(result, nil)

	assert.Contains(t, out, "Skipped 15 records")
	assert.Contains(t, out, "... and 5 more")
	assert.Contains(t, out, "0 - 1  0.250")
	assert.Contains(t, out, "1 bills fit no topic")
}

func TestFileWatcher_RunsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bills.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0600))

	w, err := newFileWatcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, 20*time.Millisecond, func() { changes <- struct{}{} })
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0600))
	select {
	case <-changes:
		t.Fatal("change to another file should be ignored")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte(`[{"bill_id": "A"}]`), 0600))
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestNewFileWatcher_MissingDirectory(t *testing.T) {
	_, err := newFileWatcher(filepath.Join(t.TempDir(), "missing", "bills.json"))
	assert.Error(t, err)
}
