package model

// MatchMode selects how a query string is turned into a pattern.
type MatchMode string

const (
	ModeRegex   MatchMode = "regex"
	ModeLiteral MatchMode = "literal"
	ModeFuzzy   MatchMode = "fuzzy"
)

// Modes lists the match modes in toggle order.
var Modes = []MatchMode{ModeRegex, ModeLiteral, ModeFuzzy}

func (m MatchMode) Valid() bool {
	switch m {
	case ModeRegex, ModeLiteral, ModeFuzzy:
		return true
	}
	return false
}

// Next returns the mode after m in toggle order.
func (m MatchMode) Next() MatchMode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return ModeRegex
}

// DefaultLookahead is how far past the match end a snippet extends, in runes.
const DefaultLookahead = 20

type SearchOptions struct {
	Mode          MatchMode
	CaseSensitive bool
	SmartCase     bool // case-sensitive when the query has an upper-case letter
	Lookahead     int
}

func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Mode:      ModeRegex,
		SmartCase: true,
		Lookahead: DefaultLookahead,
	}
}

// Query is the live query of a session. Err is set while Raw fails to
// compile; Applied is the last text that produced a result set.
type Query struct {
	Raw     string
	Applied string
	Options SearchOptions
	Err     error
}

func (q Query) Valid() bool {
	return q.Err == nil
}

// Source is one unit of searchable text with a stable identifier.
// Content is read-only and may fail if the source has gone away.
type Source interface {
	ID() string
	Content() (string, error)
}

// Match describes the first match of a query within one source.
// Start and End are byte offsets into the content as read at scan time.
type Match struct {
	SourceID   string
	Start      int
	End        int
	Line       int // 1-based line of Start
	Snippet    string
	LinkOffset int // offset of the match within Snippet
	LinkLength int
}
