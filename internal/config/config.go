package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/aemoncannon/far-search-mode/internal/model"
)

type GitHub struct {
	Owner string `toml:"owner"`
	Repo  string `toml:"repo"`
}

type Cache struct {
	SizeMB int    `toml:"size_mb"`
	TTL    string `toml:"ttl"`
	Dir    string `toml:"dir"`
}

type Config struct {
	Mode          string   `toml:"mode"`
	CaseSensitive bool     `toml:"case_sensitive"`
	SmartCase     bool     `toml:"smart_case"`
	Lookahead     int      `toml:"lookahead"`
	MaxFileSize   int64    `toml:"max_file_size"`
	Exclude       []string `toml:"exclude"`
	Editor        string   `toml:"editor"`
	GitHub        GitHub   `toml:"github"`
	Cache         Cache    `toml:"cache"`
}

func Default() Config {
	return Config{
		Mode:        string(model.ModeRegex),
		SmartCase:   true,
		Lookahead:   model.DefaultLookahead,
		MaxFileSize: 4 << 20,
		Exclude:     []string{"*.min.js", "*.lock"},
		Cache: Cache{
			SizeMB: 500,
			TTL:    "24h",
			Dir:    filepath.Join(os.TempDir(), "far-search", "logs"),
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/far-search/config.toml, falling back to
// the user config dir.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		d, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		dir = d
	}
	return filepath.Join(dir, "far-search", "config.toml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SetRepo parses an owner/repo argument.
func (c *Config) SetRepo(nwo string) error {
	parts := strings.SplitN(nwo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("repo must be in owner/repo format")
	}
	c.GitHub.Owner, c.GitHub.Repo = parts[0], parts[1]
	return nil
}

func (c Config) HasRepo() bool {
	return c.GitHub.Owner != "" && c.GitHub.Repo != ""
}

func (c Config) RepoNWO() string {
	return fmt.Sprintf("%s/%s", c.GitHub.Owner, c.GitHub.Repo)
}

func (c Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func (c Config) SearchOptions() model.SearchOptions {
	return model.SearchOptions{
		Mode:          model.MatchMode(c.Mode),
		CaseSensitive: c.CaseSensitive,
		SmartCase:     c.SmartCase,
		Lookahead:     c.Lookahead,
	}
}

func (c Config) Validate() error {
	if !model.MatchMode(c.Mode).Valid() {
		return fmt.Errorf("unknown mode %q (want regex, literal or fuzzy)", c.Mode)
	}
	if c.Lookahead < 1 {
		return fmt.Errorf("lookahead must be at least 1")
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must not be negative")
	}
	for _, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("bad exclude pattern %q: %w", pattern, err)
		}
	}
	if (c.GitHub.Owner == "") != (c.GitHub.Repo == "") {
		return fmt.Errorf("owner and repo are required together (use -R owner/repo)")
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("bad cache ttl %q: %w", c.Cache.TTL, err)
	}
	if c.Cache.SizeMB <= 0 {
		return fmt.Errorf("cache size_mb must be positive")
	}
	return nil
}
