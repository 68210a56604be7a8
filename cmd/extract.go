package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/s4bridge/s4bridge/internal/engine"
	"github.com/s4bridge/s4bridge/internal/tui"
)

var (
	extractProfile     string
	extractMode        string
	extractModules     []string
	extractCategories  []string
	extractConcurrency int
	extractWatch       bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run a forensic extraction against a source system",
	Long: `Run the extractor catalog against the profile's source system.
Results, checkpoints, and the coverage report land under the runs
directory. Use --watch for a live terminal monitor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := setupLogger(cfg)
		if err != nil {
			return err
		}
		eng, err := engine.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("building engine: %w", err)
		}

		runID, err := eng.StartExtraction(engine.ExtractionOptions{
			Profile:     extractProfile,
			Mode:        extractMode,
			Modules:     extractModules,
			Categories:  extractCategories,
			Concurrency: extractConcurrency,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "extraction run %s started\n", runID)

		if extractWatch {
			if err := tui.Watch(eng.Bus()); err != nil {
				return err
			}
		}

		for eng.Status().Running {
			time.Sleep(100 * time.Millisecond)
		}

		report := eng.Status().LastReport
		if report == nil {
			return fmt.Errorf("run %s produced no report", runID)
		}
		printRunReport(report)
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d extractors failed", len(report.Failed))
		}
		return nil
	},
}

func printRunReport(report *engine.RunReport) {
	fmt.Printf("\nRun %s (%s, profile %s)\n", report.RunID, report.Mode, report.Profile)
	fmt.Printf("Duration: %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	fmt.Printf("Extractors: %d, failed: %d\n", report.Extractors, len(report.Failed))

	if report.Coverage != nil {
		c := report.Coverage
		fmt.Printf("Coverage: %d extracted, %d skipped, %d failed\n", c.Extracted, c.Skipped, c.Failed)
		if len(c.CriticalMissed) > 0 {
			fmt.Printf("CRITICAL MISSED: %v\n", c.CriticalMissed)
		}
	}

	if len(report.ResultSizes) > 0 {
		ids := make([]string, 0, len(report.ResultSizes))
		for id := range report.ResultSizes {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\nEXTRACTOR\tSUBJECTS")
		for _, id := range ids {
			fmt.Fprintf(w, "%s\t%d\n", id, report.ResultSizes[id])
		}
		w.Flush()
	}

	for _, id := range report.Failed {
		fmt.Printf("FAILED: %s\n", id)
	}
}

func init() {
	extractCmd.Flags().StringVar(&extractProfile, "profile", "", "connection profile name (required)")
	extractCmd.Flags().StringVar(&extractMode, "mode", "", "override the profile mode (live, mock)")
	extractCmd.Flags().StringSliceVar(&extractModules, "modules", nil, "limit to modules (FI, CO, MM, ...)")
	extractCmd.Flags().StringSliceVar(&extractCategories, "categories", nil, "limit to categories (config, masterdata, ...)")
	extractCmd.Flags().IntVar(&extractConcurrency, "concurrency", 0, "parallel extractors (default 4)")
	extractCmd.Flags().BoolVar(&extractWatch, "watch", false, "show a live progress monitor")
	extractCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(extractCmd)
}
