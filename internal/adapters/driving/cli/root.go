package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
	"github.com/custodia-labs/billtopics/internal/core/ports/driving"
	"github.com/custodia-labs/billtopics/internal/logger"
)

// PipelineFactory builds a pipeline for cfg. When persist is false the run
// is not written to the result history.
type PipelineFactory func(cfg domain.Config, persist bool) (driving.TopicPipeline, error)

// SourceOpener opens the bill source stored at path.
type SourceOpener func(path string) (driven.BillSource, error)

// Services holds everything the commands need. Wired by cmd/billtopics.
type Services struct {
	LoadConfig  func() (domain.Config, error)
	NewPipeline PipelineFactory
	OpenSource  SourceOpener
	Results     driving.ResultService
	ConfigStore driven.ConfigStore
	Exporters   []driven.Exporter

	// WriteDefaults stores a complete configuration for config init.
	WriteDefaults func(cfg domain.Config) error
}

var (
	version = "dev"
	verbose bool

	loadConfig    func() (domain.Config, error)
	newPipeline   PipelineFactory
	openSource    SourceOpener
	resultService driving.ResultService
	configStore   driven.ConfigStore
	writeDefaults func(cfg domain.Config) error
	exporters     = map[string]driven.Exporter{}
)

var rootCmd = &cobra.Command{
	Use:   "billtopics",
	Short: "Discover topics in climate legislation",
	Long: `billtopics clusters a batch of climate bills into topics, labels each
topic with its most distinctive terms, aggregates topics by party, state and
period, and measures how often topics share sponsors.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every pipeline stage")
}

// SetServices installs the services used by the commands.
func SetServices(s Services) {
	loadConfig = s.LoadConfig
	newPipeline = s.NewPipeline
	openSource = s.OpenSource
	resultService = s.Results
	configStore = s.ConfigStore
	writeDefaults = s.WriteDefaults
	exporters = make(map[string]driven.Exporter, len(s.Exporters))
	for _, e := range s.Exporters {
		exporters[e.Format()] = e
	}
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, or Background when run directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
