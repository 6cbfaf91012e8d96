package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aemoncannon/far-search-mode/internal/logger"
	"github.com/aemoncannon/far-search-mode/internal/sources"
	"github.com/aemoncannon/far-search-mode/internal/tui"
)

var initialQuery string

func init() {
	rootCmd.Flags().StringVarP(&initialQuery, "query", "q", "", "start searching for this query")
}

func runTUI(cmd *cobra.Command, args []string) error {
	// bubbletea owns the terminal: logs go to --log-file or nowhere.
	closeLog, err := logger.OpenFile(logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	files, err := fileSet(cfg, args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := tui.Options{
		Files:       files,
		Query:       initialQuery,
		StartSearch: true,
	}

	if files.Len() > 0 {
		w, err := sources.Watch(ctx, files.Paths(), sources.DefaultDebounce)
		if err != nil {
			logger.Warn("live refresh disabled: %v", err)
		} else {
			defer w.Close()
			opts.Watcher = w
		}
	}

	if cfg.HasRepo() {
		client, lc, err := runLogAccess(cfg)
		if err != nil {
			return err
		}
		opts.Client = client
		opts.LogCache = lc
		opts.RunID = runID
		opts.FetchRun = true
		opts.RefreshLogs = refreshLogs
	}

	app := tui.NewApp(cfg, opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
