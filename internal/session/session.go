package session

import (
	"fmt"

	"github.com/aemoncannon/far-search-mode/internal/logger"
	"github.com/aemoncannon/far-search-mode/internal/model"
	"github.com/aemoncannon/far-search-mode/internal/render"
)

// Session is one run of the search UI, from Start to Quit. Its query,
// result set, document and mapping are replaced wholesale on each
// recompute and dropped when it ends.
type Session struct {
	id   string
	ctrl *Controller

	watcher *queryWatcher
	results *model.ResultSet
	doc     render.Document
	mapping render.Mapping

	surface     ResultsSurface
	ownsSurface bool
	layout      LayoutToken
	unsubscribe func()
	closed      bool
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Active() bool {
	return !s.closed
}

func (s *Session) Query() model.Query {
	return s.watcher.query
}

func (s *Session) Results() *model.ResultSet {
	return s.results
}

func (s *Session) Document() render.Document {
	return s.doc
}

func (s *Session) Mapping() render.Mapping {
	return s.mapping
}

func (s *Session) Surface() ResultsSurface {
	return s.surface
}

// Err returns the compile error of the current query text, if any. The
// results on display then belong to the last query that compiled.
func (s *Session) Err() error {
	return s.watcher.query.Err
}

// OnQueryChanged is the query surface observer. The surface is read again
// rather than trusting text so that coalesced notifications see the latest edit.
func (s *Session) OnQueryChanged(_ string, forced bool) {
	if err := s.OnTextChanged(forced); err != nil {
		logger.Debug("session %s: %v", s.id, err)
	}
}

// OnTextChanged recomputes the results when the query text differs from
// the last applied text, or unconditionally when force is set.
func (s *Session) OnTextChanged(force bool) error {
	if s.closed {
		return ErrNoSession
	}
	text, dirty := s.watcher.poll(force)
	if !dirty {
		return nil
	}
	return s.recompute(text)
}

// Refresh rescans with the current text, for when sources change underneath.
func (s *Session) Refresh() error {
	return s.OnTextChanged(true)
}

func (s *Session) setOptions(opts model.SearchOptions) error {
	if s.closed {
		return ErrNoSession
	}
	s.watcher.query.Options = opts
	return s.OnTextChanged(true)
}

func (s *Session) recompute(text string) error {
	q := s.watcher.candidate(text)

	matches, err := s.ctrl.engine.Search(q, s.ctrl.deps.Sources.Sources())
	if err != nil {
		s.watcher.rejected(q, err)
		return err
	}
	s.watcher.applied(q)

	s.results = model.NewResultSet(matches)
	s.doc, s.mapping = render.Render(matches)
	s.surface.Present(s.doc, s.mapping)
	s.moveCursor()

	logger.Debug("session %s: %q -> %d results", s.id, text, s.results.Len())
	return nil
}

func (s *Session) moveCursor() {
	idx := s.results.Index()
	if idx < 0 || idx >= len(s.mapping) {
		return
	}
	s.ctrl.deps.Navigator.SetCursor(s.surface, s.mapping[idx].Link.Start)
}

func (s *Session) SelectNext() error {
	if s.closed {
		return ErrNoSession
	}
	s.results.Next()
	s.moveCursor()
	return nil
}

func (s *Session) SelectPrev() error {
	if s.closed {
		return ErrNoSession
	}
	s.results.Prev()
	s.moveCursor()
	return nil
}

// ActivateSelected opens the selected match's source at the match start
// and ends the session. With nothing selected it does nothing.
func (s *Session) ActivateSelected() error {
	if s.closed {
		return ErrNoSession
	}
	sel := s.results.Selected()
	if sel == nil {
		return nil
	}
	sourceID, offset := sel.SourceID, sel.Start

	err := s.ctrl.deps.Navigator.OpenSourceAt(sourceID, offset)
	s.Quit()
	if err != nil {
		return fmt.Errorf("opening %s: %w", sourceID, err)
	}
	return nil
}

// ActivateAt activates the match whose rendered block contains offset.
// Offsets outside every block are ignored.
func (s *Session) ActivateAt(offset int) error {
	if s.closed {
		return ErrNoSession
	}
	idx, ok := s.mapping.At(offset)
	if !ok || !s.results.Select(idx) {
		return nil
	}
	return s.ActivateSelected()
}

// Quit tears the session down. Calling it again does nothing.
func (s *Session) Quit() {
	if s.closed {
		return
	}
	s.closed = true

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.ownsSurface {
		s.surface.Dispose()
	} else {
		s.surface.Hide()
	}
	s.ctrl.deps.Layout.Restore(s.layout)

	s.results = model.NewResultSet(nil)
	s.doc = render.Document{}
	s.mapping = nil
	if s.ctrl.active == s {
		s.ctrl.active = nil
	}
	logger.Info("session %s ended", s.id)
}
