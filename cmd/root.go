package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/termfeed/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagRefresh  bool
	flagConfig   string
	flagLogLevel string
	flagCheck    bool
)

var rootCmd = &cobra.Command{
	Use:   "termfeed",
	Short: "Terminal RSS and Atom feed reader",
	Long: `termfeed fetches the feeds listed in your config concurrently, shows them as
they arrive and remembers which posts you have read between runs.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "ignore cached feed documents for this run")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check GitHub for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(stateCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "termfeed %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return nil
		}

		res, err := update.Check(cmd.Context(), update.ReleasesURL, version)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Fprintln(out, "You are on the latest release.")
		} else {
			fmt.Fprintf(out, "termfeed %s is available.\n", res.LatestVersion)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
