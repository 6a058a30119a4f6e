package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/logger"
)

var (
	runNoStore   bool
	runWatch     bool
	runExportDir string
	runFormat    string
	runTopics    int
	runMinSize   int
	runKeywords  int
	runSeed      int64
	runCutoff    string
)

var runCmd = &cobra.Command{
	Use:   "run <bills-file>",
	Short: "Run topic analysis over a batch of bills",
	Long: `Loads bills from a JSON, JSON Lines or CSV file and runs the full
pipeline: normalise, embed, cluster, label, aggregate and correlate.
The result is saved to the run history unless --no-store is given.
With --watch the whole batch is re-run whenever the file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "do not save the run to the history")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "re-run when the input file changes")
	runCmd.Flags().StringVarP(&runExportDir, "export", "o", "", "also export the result into this directory")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "csv", "export format (csv or json)")
	runCmd.Flags().IntVar(&runTopics, "topics", 0, "override target_topic_count")
	runCmd.Flags().IntVar(&runMinSize, "min-topic-size", 0, "override min_topic_size")
	runCmd.Flags().IntVar(&runKeywords, "keywords", 0, "override keyword_count_per_topic")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "override random_seed")
	runCmd.Flags().StringVar(&runCutoff, "cutoff", "", "override period_cutoff_date (YYYY-MM-DD)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if loadConfig == nil || newPipeline == nil || openSource == nil {
		return errors.New("pipeline not configured")
	}
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg, err = applyRunFlags(cmd, cfg)
	if err != nil {
		return err
	}
	if runExportDir != "" {
		if _, ok := exporters[runFormat]; !ok {
			return fmt.Errorf("%w: export format %q", domain.ErrUnsupportedType, runFormat)
		}
	}

	if err := runOnce(cmd, path, cfg); err != nil {
		if !runWatch {
			return err
		}
		logger.Error("%v", err)
	}
	if !runWatch {
		return nil
	}

	watcher, err := newFileWatcher(path)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", path)
	return watcher.Run(commandContext(cmd), watchDebounce, func() {
		cmd.Printf("\n%s changed, re-running\n", path)
		if err := runOnce(cmd, path, cfg); err != nil {
			logger.Error("%v", err)
		}
	})
}

// applyRunFlags overrides configuration values with explicitly set flags.
func applyRunFlags(cmd *cobra.Command, cfg domain.Config) (domain.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("topics") {
		cfg.TargetTopicCount = runTopics
	}
	if flags.Changed("min-topic-size") {
		cfg.MinTopicSize = runMinSize
	}
	if flags.Changed("keywords") {
		cfg.KeywordCountPerTopic = runKeywords
	}
	if flags.Changed("seed") {
		cfg.RandomSeed = runSeed
	}
	if flags.Changed("cutoff") {
		cutoff, err := time.Parse(time.DateOnly, runCutoff)
		if err != nil {
			return cfg, &domain.ConfigurationError{Field: "period_cutoff_date", Reason: "must be a date (YYYY-MM-DD)"}
		}
		cfg.PeriodCutoffDate = cutoff
	}
	return cfg, nil
}

// runOnce loads the whole batch and runs the pipeline over it.
func runOnce(cmd *cobra.Command, path string, cfg domain.Config) error {
	ctx := commandContext(cmd)

	source, err := openSource(path)
	if err != nil {
		return err
	}
	records, err := source.Load(ctx)
	if err != nil {
		return err
	}
	logger.Info("Loaded %d records from %s", len(records), source.Name())

	pipeline, err := newPipeline(cfg, !runNoStore)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}
	result, err := pipeline.Run(ctx, records)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	styles := NewStyles(nil)
	cmd.Print(renderReport(result, styles))
	if !runNoStore {
		cmd.Printf("\n%s\n", styles.Success.Render("Saved run "+result.RunID))
	}

	if runExportDir != "" {
		files, err := exporters[runFormat].Export(result, runExportDir)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		for _, f := range files {
			cmd.Printf("Wrote %s\n", f)
		}
	}
	return nil
}
