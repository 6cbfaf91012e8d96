package resultsview

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/aemoncannon/far-search-mode/internal/render"
	"github.com/aemoncannon/far-search-mode/internal/ui"
)

// Model displays a rendered results document. It never edits the
// document; it only styles link spans and tracks a cursor offset.
type Model struct {
	viewport viewport.Model
	doc      render.Document
	mapping  render.Mapping
	lines    []int // byte offset of each line start
	cursor   int   // document offset, -1 for none
	empty    string
	width    int
	height   int
	ready    bool
}

func New() Model {
	return Model{cursor: -1, empty: "No matches"}
}

// SetDocument replaces the document wholesale and drops the cursor.
func (m *Model) SetDocument(doc render.Document, mapping render.Mapping) {
	m.doc = doc
	m.mapping = mapping
	m.cursor = -1
	m.lines = lineStarts(doc.Text)
	if m.ready {
		m.viewport.SetContent(m.renderDocument())
		m.viewport.GotoTop()
	}
}

// SetEmptyText sets what is shown while the document is empty.
func (m *Model) SetEmptyText(s string) {
	m.empty = s
}

func (m Model) Document() render.Document {
	return m.doc
}

func (m Model) Cursor() int {
	return m.cursor
}

// Selected returns the index of the region under the cursor, or -1.
func (m Model) Selected() int {
	if m.cursor < 0 {
		return -1
	}
	idx, ok := m.mapping.At(m.cursor)
	if !ok {
		return -1
	}
	return idx
}

// SetCursor moves the cursor to a document offset and scrolls it into view.
func (m *Model) SetCursor(offset int) {
	m.cursor = offset
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderDocument())
	line := m.lineOf(offset)
	if line < m.viewport.YOffset || line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line)
	}
}

// OffsetAt converts a position inside the pane, relative to its top-left
// corner, into a document offset.
func (m Model) OffsetAt(row, col int) (int, bool) {
	line := m.viewport.YOffset + row
	if row < 0 || col < 0 || line >= len(m.lines) {
		return 0, false
	}
	start := m.lines[line]
	text := m.lineText(line)
	return start + bytesInWidth(text, col), true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, ui.Keys.PageDown):
			m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height/2)
		case key.Matches(msg, ui.Keys.PageUp):
			m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height/2)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height
		}
		m.viewport.SetContent(m.renderDocument())
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return ""
	}
	if m.doc.Len() == 0 {
		return ui.StyleMuted.Render("  " + m.empty)
	}
	return m.viewport.View()
}

func (m Model) lineOf(offset int) int {
	i := sort.SearchInts(m.lines, offset+1) - 1
	if i < 0 {
		return 0
	}
	return i
}

func (m Model) lineText(line int) string {
	start := m.lines[line]
	end := len(m.doc.Text)
	if line+1 < len(m.lines) {
		end = m.lines[line+1] - 1
	}
	return m.doc.Text[start:end]
}

type styledSpan struct {
	span  render.Span
	style lipgloss.Style
}

// renderDocument styles each line: link spans are underlined, the one
// under the cursor is highlighted and source id lines are muted.
func (m Model) renderDocument() string {
	if m.doc.Len() == 0 {
		return ""
	}

	selected := m.Selected()
	var spans []styledSpan
	idLines := make(map[int]bool, len(m.mapping))
	for i, r := range m.mapping {
		style := ui.StyleLink
		if i == selected {
			style = ui.StyleMatch
		}
		spans = append(spans, styledSpan{span: r.Link, style: style})

		idEnd := r.Block.End - len(render.Separator)
		if idEnd > 0 {
			idLines[m.lineOf(idEnd-1)] = true
		}
	}

	out := make([]string, len(m.lines))
	for i := range m.lines {
		text := strings.ReplaceAll(m.lineText(i), "\t", " ")
		if idLines[i] {
			out[i] = ui.StyleMuted.Render(runewidth.Truncate(text, m.width, "..."))
			continue
		}
		out[i] = styleLine(text, m.lines[i], m.width, spans)
	}
	return strings.Join(out, "\n")
}

func styleLine(text string, lineStart, width int, spans []styledSpan) string {
	limit := len(text)
	if width > 0 {
		limit = bytesInWidth(text, width)
	}

	var b strings.Builder
	pos := 0
	for _, s := range spans {
		start := max(s.span.Start-lineStart, pos)
		end := min(s.span.End-lineStart, limit)
		if start >= end {
			continue
		}
		b.WriteString(text[pos:start])
		b.WriteString(s.style.Render(text[start:end]))
		pos = end
	}
	if pos < limit {
		b.WriteString(text[pos:limit])
	}
	return b.String()
}

// bytesInWidth returns the length of the longest prefix of s that fits in
// width terminal cells.
func bytesInWidth(s string, width int) int {
	w := 0
	for i, r := range s {
		w += runewidth.RuneWidth(r)
		if w > width {
			return i
		}
	}
	return len(s)
}

func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
