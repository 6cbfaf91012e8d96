package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aemoncannon/far-search-mode/internal/model"
)

type memSource struct {
	id      string
	content string
	err     error
}

func (s memSource) ID() string               { return s.id }
func (s memSource) Content() (string, error) { return s.content, s.err }

func sources(pairs ...string) []model.Source {
	var out []model.Source
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, memSource{id: pairs[i], content: pairs[i+1]})
	}
	return out
}

func query(raw string) model.Query {
	return model.Query{Raw: raw, Options: model.DefaultSearchOptions()}
}

func TestSearchFirstMatchPerSource(t *testing.T) {
	srcs := sources(
		"/a", "foo bar foo",
		"/b", "no match here",
		"/c", "zzz foo zzz",
	)

	matches, err := New().Search(query("foo"), srcs)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "/a", matches[0].SourceID)
	assert.Equal(t, 0, matches[0].Start)
	assert.Equal(t, 3, matches[0].End)
	assert.Equal(t, "/c", matches[1].SourceID)
	assert.Equal(t, 4, matches[1].Start)
}

func TestSearchPreservesProviderOrder(t *testing.T) {
	srcs := sources(
		"/z", "late foo",
		"/a", "foo early",
		"/m", "mid foo",
	)

	matches, err := New().Search(query("foo"), srcs)
	require.NoError(t, err)

	var ids []string
	for _, m := range matches {
		ids = append(ids, m.SourceID)
	}
	assert.Equal(t, []string{"/z", "/a", "/m"}, ids)
}

func TestSearchCountBounds(t *testing.T) {
	tests := []struct {
		name    string
		content []string
		want    int
	}{
		{name: "all match", content: []string{"foo", "a foo", "foofoo"}, want: 3},
		{name: "some match", content: []string{"foo", "bar", "baz"}, want: 1},
		{name: "none match", content: []string{"bar", "baz"}, want: 0},
		{name: "no sources", content: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var srcs []model.Source
			for i, c := range tt.content {
				srcs = append(srcs, memSource{id: string(rune('a' + i)), content: c})
			}
			matches, err := New().Search(query("foo"), srcs)
			require.NoError(t, err)
			assert.Len(t, matches, tt.want)
			assert.LessOrEqual(t, len(matches), len(srcs))
		})
	}
}

func TestSearchDuplicateSourceIDs(t *testing.T) {
	srcs := sources("/a", "foo", "/a", "foo again")

	matches, err := New().Search(query("foo"), srcs)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSearchEmptyQuery(t *testing.T) {
	matches, err := New().Search(query(""), sources("/a", "anything"))

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchCompileErrorAbortsWholeCall(t *testing.T) {
	srcs := sources("/a", "foo(", "/b", "foo")

	matches, err := New().Search(query("foo("), srcs)

	require.Error(t, err)
	assert.Nil(t, matches)
	assert.True(t, errors.Is(err, ErrPatternCompile))

	var perr *PatternError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "foo(", perr.Pattern)
	assert.Equal(t, model.ModeRegex, perr.Mode)
}

func TestSearchUnknownMode(t *testing.T) {
	q := query("foo")
	q.Options.Mode = "glob"

	_, err := New().Search(q, sources("/a", "foo"))

	assert.ErrorIs(t, err, ErrPatternCompile)
}

func TestSearchSkipsUnavailableSource(t *testing.T) {
	srcs := []model.Source{
		memSource{id: "/gone", err: errors.New("file removed")},
		memSource{id: "/ok", content: "foo"},
	}

	matches, err := New().Search(query("foo"), srcs)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "/ok", matches[0].SourceID)
}

func TestSearchSnippet(t *testing.T) {
	content := "first line\nsecond foo line with a long tail of text\nthird"

	matches, err := New().Search(query("foo"), sources("/a", content))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, 2, m.Line)
	assert.Equal(t, "second foo line with a long ta", m.Snippet)
	assert.Equal(t, 7, m.LinkOffset)
	assert.Equal(t, 3, m.LinkLength)
	assert.Equal(t, "foo", m.Snippet[m.LinkOffset:m.LinkOffset+m.LinkLength])
	assert.Equal(t, content[m.Start:m.End], "foo")
}

func TestSearchSnippetClampedToContentEnd(t *testing.T) {
	matches, err := New().Search(query("foo"), sources("/a", "xx foo!"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, "xx foo!", matches[0].Snippet)
}

func TestSearchSnippetRunesNotSplit(t *testing.T) {
	q := query("foo")
	q.Options.Lookahead = 2

	matches, err := New().Search(q, sources("/a", "fooéé tail"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, "fooéé", matches[0].Snippet)
}

func TestSearchCaseInsensitive(t *testing.T) {
	matches, err := New().Search(query("error"), sources("/a", "x\nError: file not found"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].Start)
}

func TestSearchSmartCase(t *testing.T) {
	srcs := sources("/a", "error then Error")

	matches, err := New().Search(query("Error"), srcs)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 11, matches[0].Start)
}

func TestSearchCaseSensitive(t *testing.T) {
	q := query("error")
	q.Options.CaseSensitive = true

	matches, err := New().Search(q, sources("/a", "Error: nope"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchRegex(t *testing.T) {
	matches, err := New().Search(query(`[Ee]rror:\s+\w+`), sources("/a", "ok\nerror:   missing dep"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "error:   missing", matches[0].Snippet[matches[0].LinkOffset:matches[0].LinkOffset+matches[0].LinkLength])
}

func TestSearchLiteral(t *testing.T) {
	q := query("a.c(")
	q.Options.Mode = model.ModeLiteral

	matches, err := New().Search(q, sources("/a", "abc( a.c("))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 5, matches[0].Start)
}

func TestSearchFuzzy(t *testing.T) {
	q := query("fbr")
	q.Options.Mode = model.ModeFuzzy

	matches, err := New().Search(q, sources("/a", "nothing here\nfoo bar baz"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, 2, m.Line)
	assert.Equal(t, 13, m.Start)
	assert.Equal(t, "foo bar", m.Snippet[m.LinkOffset:m.LinkOffset+m.LinkLength])
}

func TestSearchFuzzyCaseSensitive(t *testing.T) {
	q := model.Query{Raw: "ab", Options: model.SearchOptions{Mode: model.ModeFuzzy, CaseSensitive: true}}

	matches, err := New().Search(q, sources("/x", "AxB"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = New().Search(q, sources("/x", "AxB\nAab"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, 2, m.Line)
	assert.Equal(t, "ab", m.Snippet[m.LinkOffset:m.LinkOffset+m.LinkLength])
}

func TestSearchFuzzySmartCase(t *testing.T) {
	q := query("AB")
	q.Options.Mode = model.ModeFuzzy

	matches, err := New().Search(q, sources("/x", "a x b"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = New().Search(q, sources("/x", "A x B"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Start)
	assert.Equal(t, 5, matches[0].End)

	q = query("ab")
	q.Options.Mode = model.ModeFuzzy
	matches, err = New().Search(q, sources("/x", "A x B"))
	require.NoError(t, err)
	assert.Len(t, matches, 1, "lower-case query stays insensitive")
}

func TestSearchIdempotent(t *testing.T) {
	srcs := sources("/a", "foo bar foo", "/c", "zzz foo zzz")
	eng := New()

	first, err := eng.Search(query("foo"), srcs)
	require.NoError(t, err)
	second, err := eng.Search(query("foo"), srcs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompile(t *testing.T) {
	eng := New()

	assert.NoError(t, eng.Compile(query("")))
	assert.NoError(t, eng.Compile(query("fo+")))
	assert.ErrorIs(t, eng.Compile(query("[")), ErrPatternCompile)
}

func TestOccurrences(t *testing.T) {
	e := New()

	spans, err := e.Occurrences(query("foo"), "foo bar\nx foo\nFOO")
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 3}, {10, 13}, {14, 17}}, spans)

	spans, err = e.Occurrences(query(""), "foo")
	require.NoError(t, err)
	assert.Empty(t, spans)

	_, err = e.Occurrences(query("("), "foo")
	assert.ErrorIs(t, err, ErrPatternCompile)
}

func TestOccurrencesEmptyMatchesTerminate(t *testing.T) {
	spans, err := New().Occurrences(query("x*"), "ab")
	require.NoError(t, err)
	assert.Len(t, spans, 3)
}
