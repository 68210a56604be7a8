package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List configured connection profiles",
	Long: `List the connection profiles from the config file. Profiles bound
through S4BRIDGE_* environment variables are not shown here; they are
materialized when the engine starts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(cfg.Profiles) == 0 {
			fmt.Println("no profiles configured")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSYSTEM\tMODE\tAUTH\tBASE URL")
		for _, p := range cfg.Profiles {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.SourceSystem, p.Mode, p.Auth, p.BaseURL)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
