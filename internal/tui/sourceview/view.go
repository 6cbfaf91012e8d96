package sourceview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aemoncannon/far-search-mode/internal/logger"
	"github.com/aemoncannon/far-search-mode/internal/model"
	"github.com/aemoncannon/far-search-mode/internal/search"
	"github.com/aemoncannon/far-search-mode/internal/ui"
)

type hit struct {
	line       int // 0-based
	start, end int // byte offsets within the line
}

// Model is a read-only viewer for one source, opened at a match.
type Model struct {
	viewport viewport.Model
	engine   *search.Engine
	sourceID string
	title    string
	query    model.Query
	content  string
	lines    []string
	width    int
	height   int
	ready    bool
	loading  bool

	hits     []hit
	hitIndex int
	err      string
}

func New() Model {
	return Model{engine: search.New()}
}

func (m Model) SourceID() string {
	return m.sourceID
}

// CurrentLine returns the 1-based line of the current hit, or 1.
func (m Model) CurrentLine() int {
	if m.hitIndex < len(m.hits) {
		return m.hits[m.hitIndex].line + 1
	}
	return 1
}

// Query returns the query whose occurrences are highlighted.
func (m Model) Query() model.Query {
	return m.query
}

func (m *Model) SetLoading(sourceID string) {
	m.sourceID = sourceID
	m.loading = true
}

func (m *Model) SetError(sourceID string, err error) {
	m.sourceID = sourceID
	m.loading = false
	m.err = err.Error()
	m.content = ""
}

// Open shows content with every occurrence of q highlighted and the one
// at offset made current.
func (m *Model) Open(sourceID, title, content string, q model.Query, offset int) {
	m.sourceID = sourceID
	m.title = title
	m.query = q
	m.content = content
	m.lines = strings.Split(content, "\n")
	m.loading = false
	m.err = ""
	m.hits = nil
	m.hitIndex = 0

	spans, err := m.engine.Occurrences(q, content)
	if err != nil {
		logger.Debug("viewer occurrences: %v", err)
	}
	for _, sp := range spans {
		m.hits = append(m.hits, toHit(content, sp[0], sp[1]))
		if sp[0] <= offset {
			m.hitIndex = len(m.hits) - 1
		}
	}
	if len(m.hits) == 0 && offset >= 0 && offset <= len(content) {
		m.hits = []hit{toHit(content, offset, offset)}
	}

	if m.ready {
		m.viewport.SetContent(m.applyHighlights())
		m.jump()
	}
}

// Reload replaces the content after an on-disk change, keeping the
// scroll position.
func (m *Model) Reload(content string, q model.Query) {
	offset := m.viewport.YOffset
	cur := m.CurrentLine()
	m.Open(m.sourceID, m.title, content, q, lineOffset(content, cur-1))
	if m.ready {
		m.viewport.SetYOffset(offset)
	}
}

// toHit locates a span by line, clipping it to the line it starts on.
func toHit(content string, start, end int) hit {
	line := strings.Count(content[:start], "\n")
	lineStart := strings.LastIndexByte(content[:start], '\n') + 1
	lineEnd := strings.IndexByte(content[start:], '\n')
	if lineEnd < 0 {
		lineEnd = len(content)
	} else {
		lineEnd += start
	}
	return hit{line: line, start: start - lineStart, end: min(end, lineEnd) - lineStart}
}

func lineOffset(content string, line int) int {
	off := 0
	for i := 0; i < line; i++ {
		next := strings.IndexByte(content[off:], '\n')
		if next < 0 {
			return off
		}
		off += next + 1
	}
	return off
}

func (m *Model) jump() {
	if m.hitIndex >= len(m.hits) {
		return
	}
	line := m.hits[m.hitIndex].line
	m.viewport.SetYOffset(max(0, line-m.viewport.Height/3))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, ui.Keys.NextHit):
			if len(m.hits) > 0 {
				m.hitIndex = (m.hitIndex + 1) % len(m.hits)
				m.viewport.SetContent(m.applyHighlights())
				m.jump()
			}
			return m, nil
		case key.Matches(msg, ui.Keys.PrevHit):
			if len(m.hits) > 0 {
				m.hitIndex = (m.hitIndex - 1 + len(m.hits)) % len(m.hits)
				m.viewport.SetContent(m.applyHighlights())
				m.jump()
			}
			return m, nil
		case key.Matches(msg, ui.Keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, ui.Keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerH := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerH)
			m.ready = true
			if m.content != "" {
				m.viewport.SetContent(m.applyHighlights())
				m.jump()
			}
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerH
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// applyHighlights returns the content with hit lines shaded and the
// current hit's text marked.
func (m Model) applyHighlights() string {
	if len(m.hits) == 0 {
		return m.content
	}

	hitLines := make(map[int]bool, len(m.hits))
	for _, h := range m.hits {
		hitLines[h.line] = true
	}
	current := m.hits[m.hitIndex]

	lines := append([]string(nil), m.lines...)
	for i, line := range lines {
		switch {
		case i == current.line && current.end > current.start:
			lines[i] = ui.StyleLineHighlight.Render(line[:current.start]) +
				ui.StyleMatch.Render(line[current.start:current.end]) +
				ui.StyleLineHighlight.Render(line[current.end:])
		case i == current.line:
			lines[i] = ui.StyleMatch.Render(line)
		case hitLines[i]:
			lines[i] = ui.StyleLineHighlight.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if m.loading {
		return "\n  Loading source..."
	}
	if m.err != "" {
		return "\n  " + ui.StyleFailure.Render(m.err)
	}
	if m.content == "" && m.sourceID == "" {
		return "\n  Nothing open"
	}

	headerParts := fmt.Sprintf(" %s  L%d  %3.f%%", m.title, m.CurrentLine(), m.viewport.ScrollPercent()*100)
	if len(m.hits) > 1 {
		headerParts += fmt.Sprintf("  [%d/%d matches]", m.hitIndex+1, len(m.hits))
	}
	hints := lipgloss.NewStyle().Foreground(ui.ColorMuted).Render(
		"  n/N:match  j/k:line  PgUp/PgDn:page  g/G:top/bot  e:editor  esc:back")
	header := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#F9FAFB")).
		Render(headerParts) + hints

	return header + "\n" + m.viewport.View()
}
