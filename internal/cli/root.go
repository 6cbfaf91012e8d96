// Package cli wires the far-search command line onto the search session,
// the TUI host and the source providers.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/aemoncannon/far-search-mode/internal/api"
	"github.com/aemoncannon/far-search-mode/internal/cache"
	"github.com/aemoncannon/far-search-mode/internal/config"
	"github.com/aemoncannon/far-search-mode/internal/logger"
	"github.com/aemoncannon/far-search-mode/internal/sources"
)

var (
	configPath    string
	verbose       bool
	logFile       string
	noColor       bool
	mode          string
	caseSensitive bool
	repo          string
	runID         int64
	refreshLogs   bool
)

var rootCmd = &cobra.Command{
	Use:   "far-search [paths...]",
	Short: "Incremental search across many files at once",
	Long: `far-search searches every file under the given paths as you type and
shows the first match in each one. Selecting a match opens the file there.

With -R owner/repo --run ID the job logs of a GitHub Actions run are
downloaded and searched alongside the files.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/far-search/config.toml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")
	pf.BoolVar(&noColor, "no-color", false, "disable colour output")
	pf.StringVarP(&mode, "mode", "m", "", "match mode: regex, literal or fuzzy")
	pf.BoolVarP(&caseSensitive, "case-sensitive", "c", false, "match case exactly")
	pf.StringVarP(&repo, "repo", "R", "", "GitHub repository in owner/repo format")
	pf.Int64Var(&runID, "run", 0, "workflow run id whose logs are searched (0 = latest)")
	pf.BoolVar(&refreshLogs, "refresh-logs", false, "download run logs even when cached")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	lipgloss.SetColorProfile(colorProfile(noColor))
	return nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("case-sensitive") {
		cfg.CaseSensitive = caseSensitive
		cfg.SmartCase = !caseSensitive
	}
	if repo != "" {
		if err := cfg.SetRepo(repo); err != nil {
			return cfg, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// fileSet collects the file sources named on the command line. No paths
// and no repository means the working directory.
func fileSet(cfg config.Config, paths []string) (*sources.FileSet, error) {
	files := sources.NewFileSet(sources.Options{Exclude: cfg.Exclude, MaxSize: cfg.MaxFileSize})
	if len(paths) == 0 && !cfg.HasRepo() {
		paths = []string{"."}
	}
	if err := files.Add(paths...); err != nil {
		return nil, err
	}
	return files, nil
}

func runLogAccess(cfg config.Config) (*api.Client, *cache.LogCache, error) {
	client, err := api.NewClient(cfg.GitHub.Owner, cfg.GitHub.Repo)
	if err != nil {
		return nil, nil, fmt.Errorf("auth error: %w (make sure you are authenticated with: gh auth login)", err)
	}
	lc, err := cache.NewLogCache(cfg.Cache.Dir, cfg.Cache.SizeMB, cfg.CacheTTL())
	if err != nil {
		return nil, nil, fmt.Errorf("cache error: %w", err)
	}
	return client, lc, nil
}

// fetchLogs downloads the selected run's logs and adds them to files.
func fetchLogs(ctx context.Context, cfg config.Config, files *sources.FileSet) error {
	client, lc, err := runLogAccess(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	logs, err := sources.FetchRunLogs(ctx, client, lc, runID, refreshLogs)
	if err != nil {
		return err
	}
	logger.Info("searching %d job logs from %s run #%d", len(logs.Files), cfg.RepoNWO(), logs.Run.RunNumber)
	return files.Add(logs.Files...)
}
