package session

import (
	"github.com/aemoncannon/far-search-mode/internal/model"
	"github.com/aemoncannon/far-search-mode/internal/render"
)

// SourceProvider lists the sources eligible for search, in scan order.
// The engine's own surfaces and sources without a stable on-disk identity
// are already excluded.
type SourceProvider interface {
	Sources() []model.Source
}

// QuerySurface is the pane the user types the query into.
type QuerySurface interface {
	ID() string
	Text() string

	// Subscribe registers fn for edit notifications. The returned func
	// removes the registration.
	Subscribe(fn func(text string, forced bool)) (unsubscribe func())
}

// ResultsSurface displays the rendered results document.
type ResultsSurface interface {
	ID() string
	Present(doc render.Document, mapping render.Mapping)
	Show()
	Hide()
	Dispose()
}

// SurfaceAllocator hands out the results surface. created reports whether
// the surface was made for this caller, in which case the caller disposes it.
type SurfaceAllocator interface {
	Results() (surface ResultsSurface, created bool)
}

// Navigator moves cursors and opens sources on behalf of a session.
type Navigator interface {
	SetCursor(surface ResultsSurface, offset int)
	OpenSourceAt(sourceID string, offset int) error
}

// LayoutToken is an opaque snapshot of the host's display layout.
type LayoutToken any

type Layout interface {
	Capture() LayoutToken
	Restore(token LayoutToken)
}
