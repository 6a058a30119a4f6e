// Command billtopics discovers topics in batches of climate legislation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/billtopics/internal/adapters/driven/ai"
	billfile "github.com/custodia-labs/billtopics/internal/adapters/driven/billsource/file"
	"github.com/custodia-labs/billtopics/internal/adapters/driven/config/file"
	"github.com/custodia-labs/billtopics/internal/adapters/driven/export"
	"github.com/custodia-labs/billtopics/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/billtopics/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/billtopics/internal/adapters/driving/cli"
	"github.com/custodia-labs/billtopics/internal/aggregation"
	"github.com/custodia-labs/billtopics/internal/clustering"
	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
	"github.com/custodia-labs/billtopics/internal/core/ports/driving"
	"github.com/custodia-labs/billtopics/internal/core/services"
	"github.com/custodia-labs/billtopics/internal/correlation"
	"github.com/custodia-labs/billtopics/internal/labeling"
	"github.com/custodia-labs/billtopics/internal/logger"
	"github.com/custodia-labs/billtopics/internal/normalisers/legislative"
	"github.com/custodia-labs/billtopics/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// HomeEnv overrides the base directory holding config.toml and data/.
const HomeEnv = "BILLTOPICS_HOME"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := file.LoadDotEnv(".env"); err != nil {
		logger.Error("%v", err)
		return err
	}

	home := os.Getenv(HomeEnv)
	configStore, err := file.NewConfigStore(home)
	if err != nil {
		logger.Error("failed to open configuration: %v", err)
		return err
	}

	dataDir := ""
	if home != "" {
		dataDir = filepath.Join(home, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		logger.Error("failed to open result store: %v", err)
		return err
	}
	defer store.Close()

	history := store.ResultStore()
	exporters := []driven.Exporter{export.NewCSV(), export.NewJSON()}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		LoadConfig: func() (domain.Config, error) {
			return file.LoadConfig(configStore, os.LookupEnv)
		},
		NewPipeline: func(cfg domain.Config, persist bool) (driving.TopicPipeline, error) {
			target := history
			if !persist {
				target = memory.NewResultStore()
			}
			return buildPipeline(ctx, registry, cfg, target)
		},
		OpenSource: func(path string) (driven.BillSource, error) {
			return billfile.New(path)
		},
		Results:     services.NewResultService(history, exporters...),
		ConfigStore: configStore,
		Exporters:   exporters,
		WriteDefaults: func(cfg domain.Config) error {
			return file.WriteDefaults(configStore, cfg)
		},
	})

	return cli.Execute(ctx)
}

// buildPipeline assembles the stage components for cfg.
func buildPipeline(
	ctx context.Context,
	registry *postprocessors.Registry,
	cfg domain.Config,
	store driven.ResultStore,
) (driving.TopicPipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	filters, err := postprocessors.PipelineFromConfig(registry, cfg)
	if err != nil {
		return nil, fmt.Errorf("building token filters: %w", err)
	}
	normaliser, err := legislative.New(cfg.BoilerplatePatterns, filters)
	if err != nil {
		return nil, fmt.Errorf("building normaliser: %w", err)
	}
	embedder, err := ai.CreateAndValidateEmbedder(ctx, cfg.Embedding, cfg.RandomSeed)
	if err != nil {
		return nil, err
	}
	logger.Debug("Embedding with %s", embedder.Name())

	pipeline, err := services.NewPipeline(cfg, services.Components{
		Normaliser: normaliser,
		Embedder:   embedder,
		Clusterer:  clustering.New(cfg),
		Labeler:    labeling.New(cfg.KeywordCountPerTopic),
		Aggregator: aggregation.New(),
		Correlator: correlation.New(cfg.CooccurrenceKey),
		Store:      store,
	})
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}
	return &closingPipeline{pipeline: pipeline, embedder: embedder}, nil
}

// closingPipeline releases the embedder once its single run completes.
type closingPipeline struct {
	pipeline driving.TopicPipeline
	embedder driven.Embedder
}

func (c *closingPipeline) Run(ctx context.Context, records []domain.BillRecord) (*domain.RunResult, error) {
	defer func() {
		if err := c.embedder.Close(); err != nil {
			logger.Warn("closing embedder: %v", err)
		}
	}()
	return c.pipeline.Run(ctx, records)
}
