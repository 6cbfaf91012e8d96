package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aemoncannon/far-search-mode/internal/logger"
	"github.com/aemoncannon/far-search-mode/internal/model"
	"github.com/aemoncannon/far-search-mode/internal/render"
	"github.com/aemoncannon/far-search-mode/internal/search"
	"github.com/aemoncannon/far-search-mode/internal/ui"
)

// ErrNoMatches is returned by the search command when nothing matched.
var ErrNoMatches = errors.New("no matches")

var listOnly bool

var searchCmd = &cobra.Command{
	Use:   "search <pattern> [paths...]",
	Short: "Search once and print the results document",
	Long: `Runs a single search and prints the same results document the TUI shows:
for each matching source a snippet, then the bracketed source path.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVarP(&listOnly, "list", "l", false, "print path:line for each match instead of the document")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if logFile != "" {
		closeLog, err := logger.OpenFile(logFile)
		if err != nil {
			return err
		}
		defer closeLog()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Reject a bad pattern before walking trees or downloading logs.
	q := model.Query{Raw: args[0], Options: cfg.SearchOptions()}
	eng := search.New()
	if err := eng.Compile(q); err != nil {
		return err
	}

	files, err := fileSet(cfg, args[1:])
	if err != nil {
		return err
	}
	if cfg.HasRepo() {
		if err := fetchLogs(cmd.Context(), cfg, files); err != nil {
			return err
		}
	}

	matches, err := eng.Search(q, files.Sources())
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return ErrNoMatches
	}

	if listOnly {
		for _, m := range matches {
			cmd.Println(describeMatch(m))
		}
		return nil
	}

	doc, mapping := render.Render(matches)
	out := doc.Text
	if isTerminal(os.Stdout) {
		out = styleDocument(doc, mapping)
	}
	cmd.Print(out)
	cmd.PrintErrf("%d matches in %d sources\n", len(matches), files.Len())
	return nil
}

// styleDocument underlines each link span and mutes the source id lines.
func styleDocument(doc render.Document, mapping render.Mapping) string {
	var b strings.Builder
	pos := 0
	for _, r := range mapping {
		b.WriteString(doc.Text[pos:r.Link.Start])
		b.WriteString(ui.StyleLink.Render(doc.Text[r.Link.Start:r.Link.End]))

		idEnd := r.Block.End - len(render.Separator)
		idStart := r.Block.Start + strings.LastIndexByte(doc.Text[r.Block.Start:idEnd], '\n')
		b.WriteString(doc.Text[r.Link.End : idStart+1])
		b.WriteString(ui.StyleMuted.Render(doc.Text[idStart+1 : idEnd]))
		b.WriteString(doc.Text[idEnd:r.Block.End])
		pos = r.Block.End
	}
	b.WriteString(doc.Text[pos:])
	return b.String()
}

func describeMatch(m model.Match) string {
	return fmt.Sprintf("%s:%d", m.SourceID, m.Line)
}
