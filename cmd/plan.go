package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/s4bridge/s4bridge/internal/planner"
)

var (
	planInput   string
	planModules []string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a migration plan from forensic results",
	Long: `Build a migration plan from a forensic result file (JSON with
results, confidence, and gapReport). Use "-" to read from stdin. The
plan is written to stdout as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var reader io.Reader
		if planInput == "-" {
			reader = os.Stdin
		} else {
			f, err := os.Open(planInput)
			if err != nil {
				return err
			}
			defer f.Close()
			reader = f
		}

		var input planner.ForensicInput
		if err := json.NewDecoder(reader).Decode(&input); err != nil {
			return fmt.Errorf("parsing forensic input: %w", err)
		}

		plan, err := planner.Build(&input, planner.Options{IncludeModules: planModules})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	},
}

func init() {
	planCmd.Flags().StringVar(&planInput, "input", "", "forensic result file, or - for stdin (required)")
	planCmd.Flags().StringSliceVar(&planModules, "modules", nil, "limit the plan to these modules")
	planCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(planCmd)
}
