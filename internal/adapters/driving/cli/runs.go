package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportDir    string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	Long:  `Lists the runs saved in the result history, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runListRuns,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteRun,
}

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the topics of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a stored run",
	Long: `Writes a stored run to an exchange format.
csv writes topics.csv, topic_keywords.csv, assignments.csv, aggregates.csv
and correlations.csv; json writes result.json.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	runsCmd.AddCommand(runsDeleteCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "export format (csv or json)")
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", ".", "directory to write into")
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	if resultService == nil {
		return errors.New("result service not configured")
	}

	runs, err := resultService.ListRuns(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs stored.")
		return nil
	}
	cmd.Print(renderRuns(runs, nil))
	return nil
}

func runDeleteRun(cmd *cobra.Command, args []string) error {
	if resultService == nil {
		return errors.New("result service not configured")
	}

	if err := resultService.DeleteRun(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	cmd.Printf("Deleted run %s\n", args[0])
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if resultService == nil {
		return errors.New("result service not configured")
	}

	result, err := resultService.GetRun(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	cmd.Print(renderReport(result, nil))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	if resultService == nil {
		return errors.New("result service not configured")
	}

	files, err := resultService.Export(commandContext(cmd), args[0], strings.ToLower(exportFormat), exportDir)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	for _, f := range files {
		cmd.Printf("Wrote %s\n", f)
	}
	return nil
}
