package config

//go:generate go run ../tools/schema-generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	core_config "github.com/grovetools/core/config"
	"gopkg.in/yaml.v3"
)

// ExtensionName is the grove.yml key holding devdash settings.
const ExtensionName = "devdash"

// Environment variables that override file settings.
const (
	EnvGitHubUser = "DEVDASH_GITHUB_USER"
	EnvDataDir    = "DEVDASH_DATA_DIR"
)

// DefaultFilePath is the standalone config file, read when present.
const DefaultFilePath = "~/.config/devdash/config.yaml"

// DashboardConfig defines settings for the dashboard.
type DashboardConfig struct {
	// GitHubUser is the account whose public activity is shown.
	// Empty hides the activity feed.
	GitHubUser string `yaml:"github_user,omitempty"`

	// DataDir is where todos.json and time_entries.json live.
	// Empty (default) uses the current working directory.
	DataDir string `yaml:"data_dir,omitempty"`

	// RecentEntries is how many time entries are shown. Default 5.
	RecentEntries int `yaml:"recent_entries,omitempty"`

	// FeedLimit is how many activity events are shown, at most 5. Default 5.
	FeedLimit int `yaml:"feed_limit,omitempty"`

	// SampleWindow is how long CPU usage is measured per frame, e.g. "1s".
	SampleWindow string `yaml:"sample_window,omitempty"`

	// FetchTimeout bounds the activity request, e.g. "10s".
	FetchTimeout string `yaml:"fetch_timeout,omitempty"`

	// DiskPath is the filesystem whose usage is shown. Default "/".
	DiskPath string `yaml:"disk_path,omitempty"`
}

// Config is the top-level configuration structure for devdash.
type Config struct {
	Dashboard DashboardConfig `yaml:"dashboard,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Dashboard: DashboardConfig{
			RecentEntries: 5,
			FeedLimit:     5,
			SampleWindow:  "1s",
			FetchTimeout:  "10s",
			DiskPath:      "/",
		},
	}
}

// Load resolves settings from defaults, the grove.yml extension, the
// standalone config file and the environment, later sources winning.
func Load() (*Config, error) {
	cfg := Default()

	if coreCfg, err := core_config.LoadDefault(); err == nil {
		var ext Config
		if err := coreCfg.UnmarshalExtension(ExtensionName, &ext); err == nil {
			cfg.Merge(ext)
		}
	}

	if err := cfg.LoadFile(ExpandPath(DefaultFilePath)); err != nil {
		return nil, err
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// LoadFile merges a yaml config file into c. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	c.Merge(fileCfg)
	return nil
}

// Merge copies every non-zero field of other into c.
func (c *Config) Merge(other Config) {
	o := other.Dashboard
	d := &c.Dashboard
	if o.GitHubUser != "" {
		d.GitHubUser = o.GitHubUser
	}
	if o.DataDir != "" {
		d.DataDir = o.DataDir
	}
	if o.RecentEntries > 0 {
		d.RecentEntries = o.RecentEntries
	}
	if o.FeedLimit > 0 {
		d.FeedLimit = o.FeedLimit
	}
	if o.SampleWindow != "" {
		d.SampleWindow = o.SampleWindow
	}
	if o.FetchTimeout != "" {
		d.FetchTimeout = o.FetchTimeout
	}
	if o.DiskPath != "" {
		d.DiskPath = o.DiskPath
	}
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvGitHubUser); ok && v != "" {
		c.Dashboard.GitHubUser = v
	}
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		c.Dashboard.DataDir = v
	}
}

// ResolvedDataDir returns the data directory with ~ expanded, defaulting to ".".
func (d DashboardConfig) ResolvedDataDir() string {
	if d.DataDir == "" {
		return "."
	}
	return ExpandPath(d.DataDir)
}

// SampleWindowDuration parses SampleWindow, falling back to one second.
func (d DashboardConfig) SampleWindowDuration() time.Duration {
	return parseDuration(d.SampleWindow, time.Second)
}

// FetchTimeoutDuration parses FetchTimeout, falling back to ten seconds.
func (d DashboardConfig) FetchTimeoutDuration() time.Duration {
	return parseDuration(d.FetchTimeout, 10*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// ExpandPath expands a leading ~ to the home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
