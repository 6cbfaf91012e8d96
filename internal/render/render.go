// Package render turns a result set into one read-only document plus a
// table mapping clickable regions of that document to jump targets.
package render

import (
	"strings"

	"github.com/aemoncannon/far-search-mode/internal/model"
)

const (
	Ellipsis  = "..."
	Separator = "\n\n"
)

// Span is a half-open byte range [Start, End) in the rendered document.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Target is where activating a region jumps to.
type Target struct {
	SourceID string
	Offset   int
}

// Region ties one rendered block to its clickable link and target.
type Region struct {
	Block  Span
	Link   Span
	Target Target
}

// Mapping lists regions in document order, one per match.
type Mapping []Region

// At returns the index of the region whose block contains offset.
func (m Mapping) At(offset int) (int, bool) {
	for i, r := range m {
		if r.Block.Contains(offset) {
			return i, true
		}
	}
	return -1, false
}

// Document is the rendered results text. It is rebuilt in full on every
// recompute and is never edited in place.
type Document struct {
	Text     string
	ReadOnly bool
}

func (d Document) Len() int {
	return len(d.Text)
}

// Render builds the results document. Each match becomes a block of
// snippet, ellipsis, bracketed source id and separator.
func Render(matches []model.Match) (Document, Mapping) {
	var b strings.Builder
	mapping := make(Mapping, 0, len(matches))

	for _, m := range matches {
		blockStart := b.Len()
		b.WriteString(m.Snippet)
		b.WriteString(Ellipsis)
		b.WriteString("\n[")
		b.WriteString(m.SourceID)
		b.WriteString("]")
		b.WriteString(Separator)

		linkStart := blockStart + m.LinkOffset
		mapping = append(mapping, Region{
			Block:  Span{Start: blockStart, End: b.Len()},
			Link:   Span{Start: linkStart, End: linkStart + m.LinkLength},
			Target: Target{SourceID: m.SourceID, Offset: m.Start},
		})
	}

	return Document{Text: b.String(), ReadOnly: true}, mapping
}
