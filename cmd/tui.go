package cmd

import (
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/termfeed/internal/cache"
	"github.com/matheuskafuri/termfeed/internal/config"
	"github.com/matheuskafuri/termfeed/internal/feed"
	"github.com/matheuskafuri/termfeed/internal/logging"
	"github.com/matheuskafuri/termfeed/internal/reader"
	"github.com/matheuskafuri/termfeed/internal/state"
	"github.com/matheuskafuri/termfeed/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logFile, err := logging.Setup(config.LogPath(), flagLogLevel)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer logFile.Close()

	urls := cfg.FeedURLs()
	if len(urls) == 0 {
		return fmt.Errorf("no feeds configured: add urls to %s", configPath())
	}

	store, err := state.Open(cfg.StateBackend, config.StateDir())
	if err != nil {
		return fmt.Errorf("opening state: %w", err)
	}
	defer store.Close()

	rd := reader.New(store, state.ReadState(store), reader.WithDateFormat(cfg.DateFormat))

	client := &http.Client{Timeout: cfg.FetchTimeoutDuration()}
	opts := []cache.Option{cache.WithClient(client)}
	if flagRefresh {
		opts = append(opts, cache.WithForceRefresh())
	}
	cached := newFetcher(cfg, cache.New(config.CacheDir(), cfg.CacheDuration(), opts...))
	fresh := newFetcher(cfg, cache.New(config.CacheDir(), cfg.CacheDuration(),
		cache.WithClient(client), cache.WithForceRefresh()))

	log.WithFields(log.Fields{
		"feeds":   len(urls),
		"backend": cfg.StateBackend,
		"refresh": flagRefresh,
	}).Info("starting")

	return tui.Run(tui.RunOpts{
		Cfg:     cfg,
		Reader:  rd,
		Start:   startFunc(cached),
		Refresh: startFunc(fresh),
	})
}

func newFetcher(cfg *config.Config, c *cache.Cache) *feed.Fetcher {
	return feed.NewFetcher(c, feed.WithDateFormat(cfg.DateFormat))
}

func startFunc(f *feed.Fetcher) func(urls []string) <-chan feed.Feed {
	return func(urls []string) <-chan feed.Feed {
		return feed.Start(context.Background(), f, urls)
	}
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultConfigPath()
}
