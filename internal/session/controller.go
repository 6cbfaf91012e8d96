// Package session ties the query surface, search engine, result model and
// renderer together into one interactive search session at a time.
package session

import (
	"github.com/google/uuid"

	"github.com/aemoncannon/far-search-mode/internal/logger"
	"github.com/aemoncannon/far-search-mode/internal/model"
	"github.com/aemoncannon/far-search-mode/internal/render"
	"github.com/aemoncannon/far-search-mode/internal/search"
)

// Deps are the host capabilities a Controller drives.
type Deps struct {
	Sources   SourceProvider
	Query     QuerySurface
	Surfaces  SurfaceAllocator
	Navigator Navigator
	Layout    Layout
}

// Controller owns at most one active Session.
type Controller struct {
	deps    Deps
	engine  *search.Engine
	options model.SearchOptions
	active  *Session
}

func NewController(deps Deps, opts model.SearchOptions) *Controller {
	return &Controller{
		deps:    deps,
		engine:  search.New(),
		options: opts,
	}
}

// Active returns the running session, or nil when idle.
func (c *Controller) Active() *Session {
	return c.active
}

func (c *Controller) Options() model.SearchOptions {
	return c.options
}

// Start opens a session. The layout is captured before the results
// surface is allocated so Quit can put it back exactly.
func (c *Controller) Start() (*Session, error) {
	if c.active != nil {
		return nil, ErrSessionActive
	}

	token := c.deps.Layout.Capture()
	surface, created := c.deps.Surfaces.Results()

	s := &Session{
		id:          uuid.NewString(),
		ctrl:        c,
		watcher:     newQueryWatcher(c.deps.Query, c.options),
		results:     model.NewResultSet(nil),
		surface:     surface,
		ownsSurface: created,
		layout:      token,
	}
	s.doc, s.mapping = render.Render(nil)
	surface.Present(s.doc, s.mapping)
	surface.Show()

	s.unsubscribe = c.deps.Query.Subscribe(s.OnQueryChanged)
	c.active = s

	logger.Info("session %s started (results surface %s, created=%t)", s.id, surface.ID(), created)
	return s, nil
}

// Quit ends the active session. It is a no-op when idle.
func (c *Controller) Quit() {
	if c.active != nil {
		c.active.Quit()
	}
}

func (c *Controller) SelectNext() error {
	if c.active == nil {
		return ErrNoSession
	}
	return c.active.SelectNext()
}

func (c *Controller) SelectPrev() error {
	if c.active == nil {
		return ErrNoSession
	}
	return c.active.SelectPrev()
}

func (c *Controller) ActivateSelected() error {
	if c.active == nil {
		return ErrNoSession
	}
	return c.active.ActivateSelected()
}

func (c *Controller) ActivateAt(offset int) error {
	if c.active == nil {
		return ErrNoSession
	}
	return c.active.ActivateAt(offset)
}

func (c *Controller) Refresh() error {
	if c.active == nil {
		return ErrNoSession
	}
	return c.active.Refresh()
}

// SetOptions changes the search options for this and later sessions and
// recomputes the active one.
func (c *Controller) SetOptions(opts model.SearchOptions) error {
	c.options = opts
	if c.active == nil {
		return nil
	}
	return c.active.setOptions(opts)
}
