package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aemoncannon/far-search-mode/internal/render"
	"github.com/aemoncannon/far-search-mode/internal/session"
	"github.com/aemoncannon/far-search-mode/internal/tui/resultsview"
	"github.com/aemoncannon/far-search-mode/internal/ui"
)

const (
	QueryPaneID   = "*far-search-query*"
	ResultsPaneID = "*far-search-results*"
)

// queryPane is the query input. Edits are pushed to subscribers.
type queryPane struct {
	input     textinput.Model
	observers map[int]func(text string, forced bool)
	nextID    int
}

func newQueryPane() *queryPane {
	ti := textinput.New()
	ti.Placeholder = "Search all sources..."
	ti.Prompt = "far> "
	ti.CharLimit = 512
	return &queryPane{input: ti, observers: make(map[int]func(string, bool))}
}

func (q *queryPane) ID() string {
	return QueryPaneID
}

func (q *queryPane) Text() string {
	return q.input.Value()
}

func (q *queryPane) Subscribe(fn func(text string, forced bool)) func() {
	id := q.nextID
	q.nextID++
	q.observers[id] = fn
	return func() { delete(q.observers, id) }
}

func (q *queryPane) notify(forced bool) {
	text := q.input.Value()
	for _, fn := range q.observers {
		fn(text, forced)
	}
}

// SetText replaces the query and notifies subscribers.
func (q *queryPane) SetText(text string) {
	q.input.SetValue(text)
	q.input.CursorEnd()
	q.notify(false)
}

// update forwards a key to the input and notifies on a text change.
func (q *queryPane) update(msg tea.Msg) tea.Cmd {
	before := q.input.Value()
	var cmd tea.Cmd
	q.input, cmd = q.input.Update(msg)
	if q.input.Value() != before {
		q.notify(false)
	}
	return cmd
}

// resultsPane is the results surface shown while a session is active.
type resultsPane struct {
	host *host
	view resultsview.Model
}

func (r *resultsPane) ID() string {
	return ResultsPaneID
}

func (r *resultsPane) Present(doc render.Document, m render.Mapping) {
	r.view.SetDocument(doc, m)
}

func (r *resultsPane) Show() {
	r.host.view = ViewSearch
	r.host.query.input.Focus()
}

func (r *resultsPane) Hide() {
	r.host.query.input.Blur()
}

func (r *resultsPane) Dispose() {
	r.Hide()
	if r.host.results == r {
		r.host.results = nil
	}
}

// layoutToken is what Capture records: the view to return to.
type layoutToken struct {
	view View
}

// host owns the state the session ports act on. App values are copied by
// bubbletea on every update, so everything the controller touches lives
// behind this pointer.
type host struct {
	view    View
	query   *queryPane
	results *resultsPane
	pending *ui.OpenSourceMsg
	width   int
	height  int
}

func newHost() *host {
	return &host{view: ViewSources, query: newQueryPane()}
}

func (h *host) Capture() session.LayoutToken {
	return layoutToken{view: h.view}
}

func (h *host) Restore(tok session.LayoutToken) {
	if t, ok := tok.(layoutToken); ok {
		h.view = t.view
	}
}

// Results returns the results pane, creating it when none exists.
func (h *host) Results() (session.ResultsSurface, bool) {
	if h.results != nil {
		return h.results, false
	}
	h.results = &resultsPane{host: h, view: resultsview.New()}
	h.sizeResults()
	return h.results, true
}

func (h *host) SetCursor(s session.ResultsSurface, offset int) {
	if pane, ok := s.(*resultsPane); ok {
		pane.view.SetCursor(offset)
	}
}

// OpenSourceAt queues the open. It is carried out as a command once the
// session has torn down and the layout is restored.
func (h *host) OpenSourceAt(sourceID string, offset int) error {
	if _, err := os.Stat(sourceID); err != nil {
		return fmt.Errorf("source unavailable: %w", err)
	}
	h.pending = &ui.OpenSourceMsg{SourceID: sourceID, Offset: offset}
	return nil
}

// takePending returns the queued open, if any, as a command.
func (h *host) takePending() tea.Cmd {
	if h.pending == nil {
		return nil
	}
	msg := *h.pending
	h.pending = nil
	return func() tea.Msg { return msg }
}

// resultsHeight is the results pane height inside the chrome: header,
// query line, status bar and the pane border.
func (h *host) resultsHeight() int {
	return max(1, h.height-5)
}

func (h *host) sizeResults() {
	if h.results == nil || h.width == 0 {
		return
	}
	h.results.view, _ = h.results.view.Update(tea.WindowSizeMsg{Width: h.width - 2, Height: h.resultsHeight()})
}
