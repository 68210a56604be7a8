package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/s4bridge/s4bridge/internal/engine"
	"github.com/s4bridge/s4bridge/internal/migrate"
)

var (
	migrateProfile string
	migrateMode    string
	migrateObjects []string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run migration objects through their lifecycle",
	Long: `Run the selected migration objects through extract, transform,
validate, and load. Without --objects the whole catalog runs.`,
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

		results, err := eng.RunMigration(context.Background(), engine.MigrationOptions{
			Profile:   migrateProfile,
			Mode:      migrateMode,
			ObjectIDs: migrateObjects,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "OBJECT\tSTATUS\tRECORDS\tVIOLATIONS")
		failed := 0
		for _, res := range results {
			if res.Status == migrate.StatusFailed {
				failed++
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n",
				res.ObjectID, res.Status,
				res.Phases.Extract.RecordCount,
				len(res.Phases.Validate.Violations),
			)
		}
		w.Flush()

		if failed > 0 {
			return fmt.Errorf("%d of %d objects failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateProfile, "profile", "", "connection profile name (required)")
	migrateCmd.Flags().StringVar(&migrateMode, "mode", "", "override the profile mode (live, mock)")
	migrateCmd.Flags().StringSliceVar(&migrateObjects, "objects", nil, "object ids to run (default: all)")
	migrateCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(migrateCmd)
}
