package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aemoncannon/far-search-mode/internal/api"
	"github.com/aemoncannon/far-search-mode/internal/cache"
	"github.com/aemoncannon/far-search-mode/internal/config"
	"github.com/aemoncannon/far-search-mode/internal/logger"
	"github.com/aemoncannon/far-search-mode/internal/model"
	"github.com/aemoncannon/far-search-mode/internal/session"
	"github.com/aemoncannon/far-search-mode/internal/sources"
	"github.com/aemoncannon/far-search-mode/internal/tui/sourceview"
	"github.com/aemoncannon/far-search-mode/internal/ui"
)

type View int

const (
	ViewSources View = iota
	ViewSearch
	ViewSource
)

// LogClient is the GitHub access the app needs to load run logs.
type LogClient interface {
	sources.RunLogClient
	RateLimit() api.RateLimit
}

type Options struct {
	Files    *sources.FileSet
	Watcher  *sources.Watcher // nil disables live refresh
	Client   LogClient        // nil when no repository is configured
	LogCache *cache.LogCache

	RunID       int64 // 0 means the latest completed run
	FetchRun    bool
	RefreshLogs bool

	Query       string
	StartSearch bool
}

const fetchTimeout = 2 * time.Minute

type App struct {
	cfg  config.Config
	opts Options

	host  *host
	ctrl  *session.Controller
	files *sources.FileSet

	sourceView sourceview.Model
	listView   viewport.Model
	listReady  bool

	// State
	run       *model.Run
	cwd       string
	status    string
	statusErr bool
	width     int
	height    int
	showHelp  bool

	rateRemaining int
	rateLimit     int
}

func NewApp(cfg config.Config, opts Options) App {
	files := opts.Files
	if files == nil {
		files = sources.NewFileSet(sources.Options{Exclude: cfg.Exclude, MaxSize: cfg.MaxFileSize})
	}
	files.Reserve(QueryPaneID, ResultsPaneID)

	h := newHost()
	ctrl := session.NewController(session.Deps{
		Sources:   files,
		Query:     h.query,
		Surfaces:  h,
		Navigator: h,
		Layout:    h,
	}, cfg.SearchOptions())

	cwd, _ := os.Getwd()
	a := App{
		cfg:        cfg,
		opts:       opts,
		host:       h,
		ctrl:       ctrl,
		files:      files,
		sourceView: sourceview.New(),
		cwd:        cwd,
		status:     fmt.Sprintf("%d sources", files.Len()),
	}
	if opts.FetchRun && opts.Client != nil && opts.LogCache != nil {
		a.status = "Downloading run logs..."
	}
	return a
}

func (a App) Init() tea.Cmd {
	var cmds []tea.Cmd
	if a.opts.Watcher != nil {
		cmds = append(cmds, waitForChanges(a.opts.Watcher.Changes()))
	}
	if a.opts.FetchRun && a.opts.Client != nil && a.opts.LogCache != nil {
		cmds = append(cmds, a.fetchRunLogs(a.opts.RunID, a.opts.RefreshLogs))
	}
	if a.opts.StartSearch || a.opts.Query != "" {
		q := a.opts.Query
		cmds = append(cmds, func() tea.Msg { return ui.StartSearchMsg{Query: q} })
	}
	return tea.Batch(cmds...)
}

// Controller exposes the session controller driving the search panes.
func (a App) Controller() *session.Controller {
	return a.ctrl
}

func (a App) CurrentView() View {
	return a.host.view
}

// --- Commands ---

func waitForChanges(ch <-chan []string) tea.Cmd {
	return func() tea.Msg {
		paths, ok := <-ch
		if !ok {
			return nil
		}
		return ui.SourcesChangedMsg{Paths: paths}
	}
}

func (a App) fetchRunLogs(runID int64, refresh bool) tea.Cmd {
	client, lc := a.opts.Client, a.opts.LogCache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		logs, err := sources.FetchRunLogs(ctx, client, lc, runID, refresh)
		if err != nil {
			return ui.RunLogsLoadedMsg{Err: err}
		}
		return ui.RunLogsLoadedMsg{Run: logs.Run, Files: logs.Files}
	}
}

func loadSource(msg ui.OpenSourceMsg) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(msg.SourceID)
		return ui.SourceLoadedMsg{
			SourceID: msg.SourceID,
			Offset:   msg.Offset,
			Length:   msg.Length,
			Query:    msg.Query,
			Content:  string(data),
			Err:      err,
		}
	}
}

func reloadSource(sourceID string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(sourceID)
		return ui.SourceLoadedMsg{SourceID: sourceID, Reload: true, Content: string(data), Err: err}
	}
}

func (a App) openInEditor(path string, line int) tea.Cmd {
	fields := strings.Fields(a.cfg.Editor)
	if len(fields) == 0 {
		return nil
	}
	args := append(fields[1:], fmt.Sprintf("+%d", line), path)
	c := exec.Command(fields[0], args...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return ui.EditorFinishedMsg{SourceID: path, Err: err}
	})
}

// --- Update ---

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.propagateSize()
		return &a, nil

	case ui.StartSearchMsg:
		return &a, a.startSession(msg.Query)

	case ui.OpenSourceMsg:
		a.status = "Opening " + a.displayName(msg.SourceID) + "..."
		a.statusErr = false
		if a.cfg.Editor == "" {
			a.sourceView.SetLoading(msg.SourceID)
			a.host.view = ViewSource
		}
		return &a, loadSource(msg)

	case ui.SourceLoadedMsg:
		return &a, a.sourceLoaded(msg)

	case ui.EditorFinishedMsg:
		if msg.Err != nil {
			a.setError(fmt.Errorf("editor: %w", msg.Err))
		} else {
			a.status = "Returned from editor"
			a.statusErr = false
		}
		return &a, nil

	case ui.SourcesChangedMsg:
		var cmds []tea.Cmd
		logger.Debug("sources changed: %v", msg.Paths)
		a.syncFiles(msg.Paths)
		if a.ctrl.Active() != nil {
			_ = a.ctrl.Refresh()
			a.updateStatus()
		}
		if a.host.view == ViewSource {
			for _, p := range msg.Paths {
				if p == a.sourceView.SourceID() {
					cmds = append(cmds, reloadSource(p))
					break
				}
			}
		}
		if a.opts.Watcher != nil {
			cmds = append(cmds, waitForChanges(a.opts.Watcher.Changes()))
		}
		return &a, tea.Batch(cmds...)

	case ui.RunLogsLoadedMsg:
		a.recordRate()
		if msg.Err != nil {
			a.setError(fmt.Errorf("loading run logs: %w", msg.Err))
			return &a, nil
		}
		if err := a.files.Add(msg.Files...); err != nil {
			a.setError(err)
			return &a, nil
		}
		run := msg.Run
		a.run = &run
		a.refreshList()
		a.status = fmt.Sprintf("Loaded %d job logs from run #%d", len(msg.Files), run.RunNumber)
		a.statusErr = false
		if a.ctrl.Active() != nil {
			_ = a.ctrl.Refresh()
			a.updateStatus()
		}
		return &a, nil

	case ui.StatusMsg:
		a.status = msg.Text
		a.statusErr = false
		return &a, nil

	case tea.MouseMsg:
		if a.host.view != ViewSearch || a.host.results == nil {
			return &a, nil
		}
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			return &a, a.click(msg.X, msg.Y)
		}
		var cmd tea.Cmd
		a.host.results.view, cmd = a.host.results.view.Update(msg)
		return &a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.ctrl.Quit()
			return &a, tea.Quit
		}
		if a.showHelp {
			if key.Matches(msg, ui.Keys.Help) || key.Matches(msg, ui.Keys.Back) || key.Matches(msg, ui.Keys.Quit) {
				a.showHelp = false
			}
			return &a, nil
		}
		switch a.host.view {
		case ViewSearch:
			return &a, a.updateSearch(msg)
		case ViewSource:
			return &a, a.updateSource(msg)
		default:
			return &a, a.updateSources(msg)
		}
	}

	if a.host.view == ViewSearch {
		return &a, a.host.query.update(msg)
	}
	return &a, nil
}

func (a *App) updateSearch(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, ui.Keys.Back):
		a.ctrl.Quit()
		a.status = fmt.Sprintf("%d sources", a.files.Len())
		a.statusErr = false
		return nil

	case key.Matches(msg, ui.Keys.Activate):
		s := a.ctrl.Active()
		if s == nil {
			return nil
		}
		return a.activate(s.Results().Selected(), a.ctrl.ActivateSelected)

	case key.Matches(msg, ui.Keys.Next):
		_ = a.ctrl.SelectNext()

	case key.Matches(msg, ui.Keys.Prev):
		_ = a.ctrl.SelectPrev()

	case key.Matches(msg, ui.Keys.PageUp), key.Matches(msg, ui.Keys.PageDown):
		if a.host.results != nil {
			a.host.results.view, cmd = a.host.results.view.Update(msg)
		}

	case key.Matches(msg, ui.Keys.ToggleMode):
		opts := a.ctrl.Options()
		opts.Mode = opts.Mode.Next()
		_ = a.ctrl.SetOptions(opts)

	case key.Matches(msg, ui.Keys.ToggleCase):
		opts := a.ctrl.Options()
		switch {
		case opts.SmartCase:
			opts.SmartCase, opts.CaseSensitive = false, true
		case opts.CaseSensitive:
			opts.CaseSensitive = false
		default:
			opts.SmartCase = true
		}
		_ = a.ctrl.SetOptions(opts)

	case key.Matches(msg, ui.Keys.Refresh):
		_ = a.ctrl.Refresh()

	default:
		cmd = a.host.query.update(msg)
	}
	a.updateStatus()
	return cmd
}

func (a *App) updateSource(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, ui.Keys.Back):
		a.host.view = ViewSources
		return nil
	case key.Matches(msg, ui.Keys.Search):
		return a.startSession("")
	case key.Matches(msg, ui.Keys.Edit):
		if a.cfg.Editor == "" {
			a.setError(errors.New("no editor configured"))
			return nil
		}
		return a.openInEditor(a.sourceView.SourceID(), a.sourceView.CurrentLine())
	case key.Matches(msg, ui.Keys.Help):
		a.showHelp = true
		return nil
	case key.Matches(msg, ui.Keys.Quit):
		return tea.Quit
	}
	var cmd tea.Cmd
	a.sourceView, cmd = a.sourceView.Update(msg)
	return cmd
}

func (a *App) updateSources(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, ui.Keys.Search):
		return a.startSession("")
	case key.Matches(msg, ui.Keys.Help):
		a.showHelp = true
		return nil
	case key.Matches(msg, ui.Keys.Quit):
		return tea.Quit
	case key.Matches(msg, ui.Keys.Down):
		a.listView.SetYOffset(a.listView.YOffset + 1)
	case key.Matches(msg, ui.Keys.Up):
		a.listView.SetYOffset(a.listView.YOffset - 1)
	case key.Matches(msg, ui.Keys.Top):
		a.listView.GotoTop()
	case key.Matches(msg, ui.Keys.Bottom):
		a.listView.GotoBottom()
	default:
		var cmd tea.Cmd
		a.listView, cmd = a.listView.Update(msg)
		return cmd
	}
	return nil
}

// startSession opens a search session. A non-empty seed replaces the
// query text; otherwise the text left from the last session is searched.
func (a *App) startSession(seed string) tea.Cmd {
	s, err := a.ctrl.Start()
	if err != nil && !errors.Is(err, session.ErrSessionActive) {
		a.setError(err)
		return nil
	}
	if s == nil {
		s = a.ctrl.Active()
	}
	a.host.sizeResults()
	if a.host.results != nil {
		a.host.results.view.SetEmptyText("Type to search " + fmt.Sprint(a.files.Len()) + " sources")
	}
	if seed != "" {
		a.host.query.SetText(seed)
	} else if a.host.query.Text() != "" {
		_ = s.OnTextChanged(false)
	}
	a.updateStatus()
	return textinput.Blink
}

// activate runs an activation and turns the queued open into a command.
// The applied query travels with it so the viewer can highlight every hit.
func (a *App) activate(m *model.Match, run func() error) tea.Cmd {
	q := a.ctrl.Active().Query()
	q.Raw = q.Applied
	q.Err = nil

	if err := run(); err != nil {
		a.setError(err)
		return nil
	}
	if a.host.pending != nil {
		a.host.pending.Query = q
		if m != nil {
			a.host.pending.Length = m.End - m.Start
		}
	}
	return a.host.takePending()
}

// click activates the match under a left click in the results pane.
func (a *App) click(x, y int) tea.Cmd {
	s := a.ctrl.Active()
	if s == nil {
		return nil
	}
	// header, query line and the pane's top border sit above row 0
	offset, ok := a.host.results.view.OffsetAt(y-3, x-1)
	if !ok {
		return nil
	}
	var m *model.Match
	if idx, ok := s.Mapping().At(offset); ok {
		matches := s.Results().Matches()
		m = &matches[idx]
	}
	return a.activate(m, func() error { return a.ctrl.ActivateAt(offset) })
}

func (a *App) sourceLoaded(msg ui.SourceLoadedMsg) tea.Cmd {
	if msg.Reload {
		if msg.Err == nil && a.host.view == ViewSource && a.sourceView.SourceID() == msg.SourceID {
			a.sourceView.Reload(msg.Content, a.sourceView.Query())
		}
		return nil
	}
	if msg.Err != nil {
		a.sourceView.SetError(msg.SourceID, msg.Err)
		a.setError(msg.Err)
		return nil
	}
	if a.cfg.Editor != "" {
		offset := min(max(msg.Offset, 0), len(msg.Content))
		a.status = "Opening " + a.displayName(msg.SourceID) + " in " + a.cfg.Editor
		return a.openInEditor(msg.SourceID, 1+strings.Count(msg.Content[:offset], "\n"))
	}
	a.sourceView.Open(msg.SourceID, a.displayName(msg.SourceID), msg.Content, msg.Query, msg.Offset)
	a.host.view = ViewSource
	a.status = a.displayName(msg.SourceID)
	a.statusErr = false
	return nil
}

// updateStatus reflects the active session in the status bar.
func (a *App) updateStatus() {
	s := a.ctrl.Active()
	if s == nil {
		return
	}
	if err := s.Err(); err != nil {
		a.status = err.Error()
		a.statusErr = true
		return
	}
	a.statusErr = false
	n := s.Results().Len()
	switch {
	case s.Query().Applied == "":
		a.status = fmt.Sprintf("%d sources", a.files.Len())
	case n == 1:
		a.status = "1 match"
	default:
		a.status = fmt.Sprintf("%d matches", n)
	}
	if i := s.Results().Index(); i >= 0 {
		a.status += fmt.Sprintf("  [%d/%d]", i+1, n)
	}
}

func (a *App) setError(err error) {
	logger.Warn("%v", err)
	a.status = err.Error()
	a.statusErr = true
}

func (a *App) recordRate() {
	if a.opts.Client == nil {
		return
	}
	rl := a.opts.Client.RateLimit()
	a.rateRemaining = rl.Remaining
	a.rateLimit = rl.Limit
}

func (a *App) propagateSize() {
	a.host.width = a.width
	a.host.height = a.height

	// header(1) + statusbar(1) = 2 lines of chrome.
	contentH := max(1, a.height-2)

	a.host.query.input.Width = max(1, a.width-lipgloss.Width(a.host.query.input.Prompt)-2)
	a.host.sizeResults()
	a.sourceView, _ = a.sourceView.Update(tea.WindowSizeMsg{Width: a.width, Height: contentH})

	listW, listH := max(1, a.width-2), max(1, contentH-2)
	if !a.listReady {
		a.listView = viewport.New(listW, listH)
		a.listReady = true
	} else {
		a.listView.Width = listW
		a.listView.Height = listH
	}
	a.refreshList()
}

// syncFiles drops deleted paths from the source set and takes back paths
// that reappeared, as editors that save by rename briefly remove the file.
func (a *App) syncFiles(paths []string) {
	changed := false
	for _, p := range paths {
		_, err := os.Stat(p)
		switch {
		case errors.Is(err, os.ErrNotExist):
			a.files.Remove(p)
			changed = true
		case err == nil:
			if err := a.files.Add(p); err != nil {
				logger.Warn("re-add %s: %v", p, err)
			}
			changed = true
		}
	}
	if changed {
		a.refreshList()
	}
}

func (a *App) refreshList() {
	if !a.listReady {
		return
	}
	paths := a.files.Paths()
	if len(paths) == 0 {
		a.listView.SetContent(ui.StyleMuted.Render("  No sources. Pass files or directories, or -R owner/repo --run ID."))
		return
	}
	var b strings.Builder
	if r := a.run; r != nil {
		b.WriteString(fmt.Sprintf("  %s %s  %s  %s@%s by %s\n\n",
			ui.StatusIcon(r.Conclusion),
			r.DisplayTitle,
			ui.ConclusionStyle(r.Conclusion).Render(r.Conclusion),
			r.HeadBranch, r.ShortSHA(), r.Actor.Login))
	}
	for _, p := range paths {
		b.WriteString("  " + a.displayName(p) + "\n")
	}
	a.listView.SetContent(strings.TrimSuffix(b.String(), "\n"))
}

// displayName shortens a source id: job names for cached run logs,
// otherwise a path relative to the working directory.
func (a App) displayName(path string) string {
	if a.opts.LogCache != nil && strings.HasPrefix(path, a.opts.LogCache.Dir()+string(filepath.Separator)) {
		return "[log] " + cache.JobName(path)
	}
	if a.cwd != "" {
		if rel, err := filepath.Rel(a.cwd, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return path
}

// --- View ---

func (a App) View() string {
	header := RenderHeader(a.summary(), a.rateRemaining, a.rateLimit, a.width)
	contentH := max(1, a.height-2)

	var content string
	switch a.host.view {
	case ViewSearch:
		pane := ui.StylePaneFocused.Width(a.width - 2).Height(a.host.resultsHeight())
		results := ""
		if a.host.results != nil {
			results = a.host.results.view.View()
		}
		content = a.host.query.input.View() + "\n" + pane.Render(results)
	case ViewSource:
		content = a.sourceView.View()
	default:
		style := ui.StylePane.Width(a.width - 2).Height(max(1, contentH-2))
		content = style.Render(a.listView.View())
	}

	if a.showHelp {
		content = a.renderHelp()
	}

	statusBar := RenderStatusBar(a.status, a.statusErr, a.contextHints(), a.width)

	// Hard clamp: ensure content never overflows the terminal.
	if a.height > 2 {
		lines := strings.Split(content, "\n")
		if len(lines) > contentH {
			content = strings.Join(lines[:contentH], "\n")
		}
	}

	return header + "\n" + content + "\n" + statusBar
}

func (a App) summary() string {
	opts := a.ctrl.Options()
	s := fmt.Sprintf("%d sources | %s | %s", a.files.Len(), opts.Mode, caseLabel(opts))
	if a.run != nil {
		s += fmt.Sprintf(" | %s #%d %s", a.run.Name, a.run.RunNumber, a.run.ShortSHA())
	}
	return s
}

func caseLabel(opts model.SearchOptions) string {
	switch {
	case opts.CaseSensitive:
		return "case"
	case opts.SmartCase:
		return "smart-case"
	default:
		return "ignore-case"
	}
}

func (a App) contextHints() string {
	if a.showHelp {
		return "esc:close"
	}
	switch a.host.view {
	case ViewSearch:
		return "enter:open  C-n/C-p:next/prev  C-t:mode  M-c:case  C-r:refresh  esc:quit search"
	case ViewSource:
		if a.run != nil {
			return ui.StatusIcon(a.run.Conclusion) + " " + a.run.DisplayTitle + "  |  /:search  e:editor  esc:back  ?:help"
		}
		return "/:search  e:editor  esc:back  ?:help"
	}
	return "/:search  j/k:scroll  ?:help  q:quit"
}

func (a App) renderHelp() string {
	bold := lipgloss.NewStyle().Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true).Width(14)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB"))

	row := func(k, d string) string {
		return "  " + keyStyle.Render(k) + desc.Render(d) + "\n"
	}

	var b strings.Builder
	b.WriteString("\n" + bold.Render("  Sources") + "\n\n")
	b.WriteString(row("/", "Start a search"))
	b.WriteString(row("j / k", "Scroll down / up"))
	b.WriteString(row("g / G", "Go to top / bottom"))
	b.WriteString(row("q", "Quit"))

	b.WriteString("\n" + bold.Render("  Search") + "\n\n")
	b.WriteString(row("type", "Edit the query; results follow as you type"))
	b.WriteString(row("C-n / C-p", "Next / previous match"))
	b.WriteString(row("enter / click", "Open the match and end the search"))
	b.WriteString(row("PgUp/PgDn", "Scroll results"))
	b.WriteString(row("C-t", "Cycle mode: regex, literal, fuzzy"))
	b.WriteString(row("M-c", "Cycle case: smart, sensitive, ignore"))
	b.WriteString(row("C-r", "Rescan sources"))
	b.WriteString(row("esc", "End the search"))

	b.WriteString("\n" + bold.Render("  Source Viewer") + "\n\n")
	b.WriteString(row("n / N", "Next / previous match"))
	b.WriteString(row("g / G", "Go to top / bottom"))
	b.WriteString(row("PgUp/PgDn", "Page up / page down"))
	b.WriteString(row("e", "Open in $EDITOR at the current line"))
	b.WriteString(row("esc", "Back to sources"))

	b.WriteString("\n" + desc.Render("  Press ? or esc to close"))

	return ui.StylePaneFocused.Width(a.width - 2).Height(max(1, a.height-4)).Render(b.String())
}
