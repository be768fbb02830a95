package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const appName = "termfeed"

// Start views selectable with home.
const (
	HomeFeeds = "feeds"
	HomeMixed = "mixed"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type Reader struct {
	Size          string  `yaml:"size"`
	Theme         string  `yaml:"theme"`
	ReadThreshold float64 `yaml:"read_threshold"`
}

type Colors struct {
	Text       string `yaml:"text"`
	InvertText string `yaml:"inverttext"`
	Subtext    string `yaml:"subtext"`
	Accent     string `yaml:"accent"`
	Borders    string `yaml:"borders"`
}

type Config struct {
	URLs         []string `yaml:"urls"`
	Home         string   `yaml:"home"`
	DateFormat   string   `yaml:"dateformat"`
	CacheTTL     string   `yaml:"cache_ttl"`
	FetchTimeout string   `yaml:"fetch_timeout"`
	StateBackend string   `yaml:"state_backend"`
	Reader       Reader   `yaml:"reader"`
	Colors       Colors   `yaml:"colors"`
}

// Env holds overrides read from TERMFEED_* environment variables.
type Env struct {
	Config       string        `envconfig:"CONFIG"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT"`
	StateBackend string        `envconfig:"STATE_BACKEND"`
}

func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(appName, &env); err != nil {
		return Env{}, fmt.Errorf("reading environment: %w", err)
	}
	return env, nil
}

// FeedURLs returns the subscribed feed URLs in configured order.
func (c *Config) FeedURLs() []string {
	return append([]string(nil), c.URLs...)
}

func (c *Config) CacheDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

func (c *Config) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ReaderWidth is the column count posts are wrapped at for a terminal of
// the given width.
func (c *Config) ReaderWidth(termWidth int) int {
	switch c.Reader.Size {
	case "full", "fullscreen":
		return termWidth
	case "most":
		return termWidth * 3 / 4
	case "", "recommended":
		return 80
	}
	if n, err := strconv.Atoi(c.Reader.Size); err == nil && n > 0 {
		return n
	}
	return 80
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func CacheDir() string {
	return filepath.Join(xdg.CacheHome, appName, "feeds")
}

func StateDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config file at path over the embedded defaults and applies
// environment overrides. A missing file is created from the defaults.
func Load(path string) (*Config, error) {
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}

	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = env.Config
	}
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Non-fatal: the embedded defaults still apply.
		if err := writeDefaults(path); err != nil {
			log.WithField("path", path).WithError(err).Warn("could not write default config")
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyEnv(cfg, env)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, env Env) {
	if env.CacheTTL > 0 {
		cfg.CacheTTL = env.CacheTTL.String()
	}
	if env.FetchTimeout > 0 {
		cfg.FetchTimeout = env.FetchTimeout.String()
	}
	if env.StateBackend != "" {
		cfg.StateBackend = env.StateBackend
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	for i, raw := range cfg.URLs {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("url %d: invalid url: %w", i, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("url %q: scheme must be http or https, got %q", raw, u.Scheme)
		}
	}
	switch cfg.StateBackend {
	case "", "json", "sqlite":
	default:
		return fmt.Errorf("unknown state_backend %q (valid: json, sqlite)", cfg.StateBackend)
	}
	switch cfg.Home {
	case "", HomeFeeds, HomeMixed:
	default:
		return fmt.Errorf("unknown home %q (valid: feeds, mixed)", cfg.Home)
	}
	if cfg.Reader.ReadThreshold < 0 || cfg.Reader.ReadThreshold > 1 {
		return fmt.Errorf("reader.read_threshold must be between 0 and 1, got %v", cfg.Reader.ReadThreshold)
	}
	return nil
}
