package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/termfeed/internal/cache"
	"github.com/matheuskafuri/termfeed/internal/config"
	"github.com/matheuskafuri/termfeed/internal/feed"
	"github.com/matheuskafuri/termfeed/internal/state"
)

var flagPruneOlderThan string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clean the feed document cache",
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired feed documents from the cache",
	Long: `Delete cached feed documents older than the cache TTL and reclaim disk space.

Uses cache_ttl from config (default: 1h) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		olderThan := cfg.CacheDuration()
		if flagPruneOlderThan != "" {
			d, err := parseSince(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			olderThan = d
		}

		c := cache.New(config.CacheDir(), cfg.CacheDuration())
		deleted, err := c.Prune(olderThan)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		out := cmd.OutOrStdout()
		if deleted == 0 {
			fmt.Fprintln(out, "Nothing to prune.")
		} else {
			fmt.Fprintf(out, "Pruned %d document(s) older than %s.\n", deleted, formatDuration(olderThan))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := config.CacheDir()
		count, size, err := cache.New(dir, cache.DefaultTTL).Stats()
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Cache: %s\n", dir)
		fmt.Fprintf(out, "Documents: %d\n", count)
		fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		return nil
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect saved read state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List saved feeds with their read counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		store, err := state.Open(cfg.StateBackend, config.StateDir())
		if err != nil {
			return fmt.Errorf("opening state: %w", err)
		}
		defer store.Close()

		feeds, err := store.Load()
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}
		return writeStateSummary(cmd.OutOrStdout(), feeds)
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override the cache TTL (e.g., 7d, 2h)")

	cacheCmd.AddCommand(pruneCmd)
	cacheCmd.AddCommand(statsCmd)
	stateCmd.AddCommand(stateShowCmd)
}

func writeStateSummary(w io.Writer, feeds feed.Feeds) error {
	if len(feeds) == 0 {
		_, err := fmt.Fprintln(w, "No saved state.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FEED\tREAD\tUNREAD")
	for _, f := range feeds {
		unread := f.TotalUnread()
		fmt.Fprintf(tw, "%s\t%d\t%d\n", f.URL, len(f.Posts)-unread, unread)
	}
	fmt.Fprintf(tw, "total\t\t%d\n", feeds.TotalUnread())
	return tw.Flush()
}

// parseSince accepts Go durations plus a whole-day "Nd" form.
func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatDuration(d time.Duration) string {
	h := d.Hours()
	days := int(h / 24)
	if days > 0 && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return d.String()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
