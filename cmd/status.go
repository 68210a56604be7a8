package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/s4bridge/s4bridge/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent extraction runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		entries, err := os.ReadDir(cfg.Runs.Root)
		if os.IsNotExist(err) || len(entries) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading runs directory: %w", err)
		}

		var reports []*engine.RunReport
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(cfg.Runs.Root, entry.Name(), "report.json"))
			if err != nil {
				continue // run still in progress or aborted before the report
			}
			report := &engine.RunReport{}
			if err := json.Unmarshal(data, report); err != nil {
				continue
			}
			reports = append(reports, report)
		}
		if len(reports) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}
		sort.Slice(reports, func(i, j int) bool {
			return reports[i].StartedAt.After(reports[j].StartedAt)
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tPROFILE\tMODE\tSTARTED\tEXTRACTORS\tFAILED\tCRITICAL MISSED")
		for _, r := range reports {
			missed := 0
			if r.Coverage != nil {
				missed = len(r.Coverage.CriticalMissed)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
				r.RunID, r.Profile, r.Mode,
				r.StartedAt.Local().Format("2006-01-02 15:04"),
				r.Extractors, len(r.Failed), missed,
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
