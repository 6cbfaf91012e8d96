package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aemoncannon/far-search-mode/internal/model"
)

func sampleMatches() []model.Match {
	return []model.Match{
		{SourceID: "/src/a.go", Start: 0, End: 3, Line: 1, Snippet: "foo bar foo", LinkOffset: 0, LinkLength: 3},
		{SourceID: "/src/c.go", Start: 4, End: 7, Line: 1, Snippet: "zzz foo zzz", LinkOffset: 4, LinkLength: 3},
		{SourceID: "/src/d.go", Start: 30, End: 33, Line: 3, Snippet: "  x := foo()", LinkOffset: 7, LinkLength: 3},
	}
}

func TestRenderEmpty(t *testing.T) {
	doc, mapping := Render(nil)

	assert.Equal(t, "", doc.Text)
	assert.True(t, doc.ReadOnly)
	assert.Empty(t, mapping)
}

func TestRenderBlockFormat(t *testing.T) {
	doc, mapping := Render(sampleMatches()[:1])

	assert.Equal(t, "foo bar foo...\n[/src/a.go]\n\n", doc.Text)
	require.Len(t, mapping, 1)
	assert.Equal(t, Span{Start: 0, End: len(doc.Text)}, mapping[0].Block)
	assert.Equal(t, Span{Start: 0, End: 3}, mapping[0].Link)
	assert.Equal(t, Target{SourceID: "/src/a.go", Offset: 0}, mapping[0].Target)
}

func TestRenderLinksPointAtMatchText(t *testing.T) {
	matches := sampleMatches()
	doc, mapping := Render(matches)

	require.Len(t, mapping, len(matches))
	for i, r := range mapping {
		assert.Equal(t, "foo", doc.Text[r.Link.Start:r.Link.End], "region %d", i)
		assert.Equal(t, matches[i].SourceID, r.Target.SourceID)
		assert.Equal(t, matches[i].Start, r.Target.Offset)
	}
}

func TestRenderSpansInBoundsAndDisjoint(t *testing.T) {
	doc, mapping := Render(sampleMatches())

	prevEnd := 0
	for i, r := range mapping {
		assert.GreaterOrEqual(t, r.Block.Start, prevEnd, "block %d overlaps", i)
		assert.LessOrEqual(t, r.Block.End, doc.Len())
		assert.GreaterOrEqual(t, r.Link.Start, r.Block.Start)
		assert.LessOrEqual(t, r.Link.End, r.Block.End)
		prevEnd = r.Block.End
	}
	assert.Equal(t, doc.Len(), prevEnd, "blocks cover the whole document")
}

func TestMappingAt(t *testing.T) {
	doc, mapping := Render(sampleMatches())

	idx, ok := mapping.At(0)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = mapping.At(mapping[1].Link.Start + 1)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = mapping.At(mapping[2].Block.End - 1)
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = mapping.At(doc.Len())
	assert.False(t, ok)
	_, ok = mapping.At(-1)
	assert.False(t, ok)
}

func TestSpan(t *testing.T) {
	s := Span{Start: 2, End: 5}

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(4))
	assert.False(t, s.Contains(5))
}
