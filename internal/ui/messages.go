package ui

import (
	"github.com/aemoncannon/far-search-mode/internal/model"
)

// StartSearchMsg opens a search session, optionally seeding the query.
type StartSearchMsg struct {
	Query string
}

// OpenSourceMsg asks the host to show a source at a byte offset.
type OpenSourceMsg struct {
	SourceID string
	Offset   int
	Length   int
	Query    model.Query
}

// SourceLoadedMsg carries a source read for the viewer. Reload marks a
// re-read after an on-disk change.
type SourceLoadedMsg struct {
	SourceID string
	Reload   bool
	Offset   int
	Length   int
	Query    model.Query
	Content  string
	Err      error
}

type EditorFinishedMsg struct {
	SourceID string
	Err      error
}

// SourcesChangedMsg reports files changed on disk.
type SourcesChangedMsg struct {
	Paths []string
}

type RunLogsLoadedMsg struct {
	Run   model.Run
	Files []string
	Err   error
}

type StatusMsg struct {
	Text string
}
