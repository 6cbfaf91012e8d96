package resultsview

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aemoncannon/far-search-mode/internal/model"
	"github.com/aemoncannon/far-search-mode/internal/render"
)

func sized(t *testing.T, w, h int) Model {
	t.Helper()
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return m
}

func sampleDocument() (render.Document, render.Mapping) {
	return render.Render([]model.Match{
		{SourceID: "/src/a.go", Start: 0, End: 3, Snippet: "foo bar", LinkOffset: 0, LinkLength: 3},
		{SourceID: "/src/b.go", Start: 6, End: 9, Snippet: "  x = foo()", LinkOffset: 6, LinkLength: 3},
		{SourceID: "/src/c.go", Start: 2, End: 5, Snippet: "a foo", LinkOffset: 2, LinkLength: 3},
	})
}

func TestEmptyDocumentShowsPlaceholder(t *testing.T) {
	m := sized(t, 40, 10)
	m.SetEmptyText("Type to search")
	m.SetDocument(render.Render(nil))

	if !strings.Contains(m.View(), "Type to search") {
		t.Errorf("View() = %q, want placeholder", m.View())
	}
	if m.Selected() != -1 {
		t.Errorf("Selected() = %d, want -1", m.Selected())
	}
}

func TestViewShowsSnippetsAndIDs(t *testing.T) {
	m := sized(t, 40, 20)
	m.SetDocument(sampleDocument())

	view := m.View()
	for _, want := range []string{"bar...", "[/src/a.go]", "x = ", "[/src/c.go]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestSetCursorSelectsRegion(t *testing.T) {
	m := sized(t, 40, 20)
	doc, mapping := sampleDocument()
	m.SetDocument(doc, mapping)

	m.SetCursor(mapping[1].Link.Start)

	if got := m.Selected(); got != 1 {
		t.Errorf("Selected() = %d, want 1", got)
	}
	if got := m.lineOf(m.cursor); got != 3 {
		t.Errorf("cursor line = %d, want 3", got)
	}
}

func TestSetDocumentDropsCursor(t *testing.T) {
	m := sized(t, 40, 20)
	doc, mapping := sampleDocument()
	m.SetDocument(doc, mapping)
	m.SetCursor(mapping[2].Link.Start)

	m.SetDocument(doc, mapping)

	if m.Cursor() != -1 {
		t.Errorf("Cursor() = %d, want -1", m.Cursor())
	}
}

func TestSetCursorScrollsIntoView(t *testing.T) {
	m := sized(t, 40, 2)
	doc, mapping := sampleDocument()
	m.SetDocument(doc, mapping)

	m.SetCursor(mapping[2].Link.Start)

	if m.viewport.YOffset == 0 {
		t.Error("expected viewport to scroll to the cursor")
	}
	if !strings.Contains(m.View(), "foo") {
		t.Errorf("cursor line not visible:\n%s", m.View())
	}
}

func TestOffsetAt(t *testing.T) {
	m := sized(t, 40, 20)
	doc, mapping := sampleDocument()
	m.SetDocument(doc, mapping)

	off, ok := m.OffsetAt(3, 6)
	if !ok {
		t.Fatal("OffsetAt(3, 6) not ok")
	}
	if idx, _ := mapping.At(off); idx != 1 {
		t.Errorf("offset %d resolves to region %d, want 1", off, idx)
	}
	if doc.Text[off:off+3] != "foo" {
		t.Errorf("offset %d points at %q, want foo", off, doc.Text[off:off+3])
	}

	if _, ok := m.OffsetAt(100, 0); ok {
		t.Error("OffsetAt past the document should fail")
	}
}

func TestStyleLineClipsToWidth(t *testing.T) {
	got := styleLine("abcdefgh", 0, 4, nil)
	if got != "abcd" {
		t.Errorf("styleLine() = %q, want %q", got, "abcd")
	}
}

func TestBytesInWidthWide(t *testing.T) {
	// Each CJK rune is three bytes and two cells wide.
	if got := bytesInWidth("日本語", 4); got != 6 {
		t.Errorf("bytesInWidth() = %d, want 6", got)
	}
}
