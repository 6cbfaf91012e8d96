// Package search finds the first match of a query in each source.
package search

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/aemoncannon/far-search-mode/internal/logger"
	"github.com/aemoncannon/far-search-mode/internal/model"
)

// finder returns the byte span of the first match in content.
type finder func(content string) (start, end int, ok bool)

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Search scans sources in order and returns at most one match per source.
// An empty query scans nothing. A query that does not compile fails the
// whole call with a *PatternError. Unreadable sources are skipped.
func (e *Engine) Search(q model.Query, sources []model.Source) ([]model.Match, error) {
	if q.Raw == "" {
		return nil, nil
	}

	find, err := buildFinder(q.Raw, q.Options)
	if err != nil {
		return nil, err
	}

	lookahead := q.Options.Lookahead
	if lookahead <= 0 {
		lookahead = model.DefaultLookahead
	}

	var matches []model.Match
	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		id := src.ID()
		if seen[id] {
			continue
		}
		seen[id] = true

		content, err := src.Content()
		if err != nil {
			logger.Warn("skipping %v", &SourceError{SourceID: id, Err: err})
			continue
		}

		start, end, ok := find(content)
		if !ok {
			continue
		}
		matches = append(matches, describe(id, content, start, end, lookahead))
	}

	logger.Debug("query %q matched %d of %d sources", q.Raw, len(matches), len(sources))
	return matches, nil
}

// Compile reports whether q would compile, without scanning anything.
func (e *Engine) Compile(q model.Query) error {
	if q.Raw == "" {
		return nil
	}
	_, err := buildFinder(q.Raw, q.Options)
	return err
}

// maxOccurrences bounds Occurrences on pathological inputs.
const maxOccurrences = 10000

// Occurrences returns the spans of every non-overlapping match of q in
// content, in order. The source viewer uses it to step between hits.
func (e *Engine) Occurrences(q model.Query, content string) ([][2]int, error) {
	if q.Raw == "" {
		return nil, nil
	}
	find, err := buildFinder(q.Raw, q.Options)
	if err != nil {
		return nil, err
	}

	var spans [][2]int
	for pos := 0; pos <= len(content) && len(spans) < maxOccurrences; {
		start, end, ok := find(content[pos:])
		if !ok {
			break
		}
		spans = append(spans, [2]int{pos + start, pos + end})
		if end > start {
			pos += end
			continue
		}
		if pos+end >= len(content) {
			break
		}
		_, size := utf8.DecodeRuneInString(content[pos+end:])
		pos += end + size
	}
	return spans, nil
}

// describe builds the match record: the snippet runs from the start of the
// match's line to lookahead runes past the match end, clipped to content.
func describe(id, content string, start, end, lookahead int) model.Match {
	lineStart := strings.LastIndexByte(content[:start], '\n') + 1

	snippetEnd := end
	for i := 0; i < lookahead && snippetEnd < len(content); i++ {
		_, size := utf8.DecodeRuneInString(content[snippetEnd:])
		snippetEnd += size
	}

	return model.Match{
		SourceID:   id,
		Start:      start,
		End:        end,
		Line:       strings.Count(content[:start], "\n") + 1,
		Snippet:    content[lineStart:snippetEnd],
		LinkOffset: start - lineStart,
		LinkLength: end - start,
	}
}

func buildFinder(pattern string, opts model.SearchOptions) (finder, error) {
	mode := opts.Mode
	if mode == "" {
		mode = model.ModeRegex
	}

	sensitive := caseSensitive(pattern, opts)

	switch mode {
	case model.ModeFuzzy:
		return fuzzyFinder(pattern, sensitive), nil
	case model.ModeLiteral:
		pattern = regexp.QuoteMeta(pattern)
	case model.ModeRegex:
	default:
		return nil, &PatternError{Pattern: pattern, Mode: mode, Err: errUnknownMode}
	}

	flags := ""
	if !sensitive {
		flags = "(?i)"
	}
	re, err := regexp.Compile(flags + pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Mode: mode, Err: err}
	}
	return func(content string) (int, int, bool) {
		loc := re.FindStringIndex(content)
		if loc == nil {
			return 0, 0, false
		}
		return loc[0], loc[1], true
	}, nil
}

// fuzzyFinder matches line by line and returns the span from the first to
// the last matched character of the first line that matches. A sensitive
// finder only accepts lines whose matched runes equal the pattern's exactly.
func fuzzyFinder(pattern string, sensitive bool) finder {
	want := []rune(pattern)
	return func(content string) (int, int, bool) {
		offset := 0
		for {
			line := content[offset:]
			next := strings.IndexByte(line, '\n')
			if next >= 0 {
				line = line[:next]
			}

			if first, last, ok := fuzzyLine(pattern, want, line, sensitive); ok {
				_, size := utf8.DecodeRuneInString(line[last:])
				return offset + first, offset + last + size, true
			}

			if next < 0 {
				return 0, 0, false
			}
			offset += next + 1
		}
	}
}

// fuzzyLine returns the byte offsets of the first and last matched runes.
func fuzzyLine(pattern string, want []rune, line string, sensitive bool) (first, last int, ok bool) {
	found := fuzzy.Find(pattern, []string{line})
	if len(found) == 0 || len(found[0].MatchedIndexes) == 0 {
		return 0, 0, false
	}
	idx := found[0].MatchedIndexes
	if !sensitive {
		first, last = idx[0], idx[len(idx)-1]
		if last >= len(line) {
			last = len(line) - 1
		}
		return first, last, true
	}
	if exactRunes(line, idx, want) {
		return idx[0], idx[len(idx)-1], true
	}
	// The folded match picked a rune of the wrong case; an exact
	// subsequence may still exist further along the line.
	return subsequence(line, want)
}

func exactRunes(line string, idx []int, want []rune) bool {
	if len(idx) != len(want) {
		return false
	}
	for i, at := range idx {
		if at >= len(line) {
			return false
		}
		if r, _ := utf8.DecodeRuneInString(line[at:]); r != want[i] {
			return false
		}
	}
	return true
}

// subsequence finds want in line as an exact, in-order subsequence.
func subsequence(line string, want []rune) (first, last int, ok bool) {
	if len(want) == 0 {
		return 0, 0, false
	}
	i := 0
	for at, r := range line {
		if r != want[i] {
			continue
		}
		if i == 0 {
			first = at
		}
		i++
		if i == len(want) {
			return first, at, true
		}
	}
	return 0, 0, false
}

func caseSensitive(pattern string, opts model.SearchOptions) bool {
	if opts.CaseSensitive {
		return true
	}
	if !opts.SmartCase {
		return false
	}
	for _, r := range pattern {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
