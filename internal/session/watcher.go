package session

import "github.com/aemoncannon/far-search-mode/internal/model"

// queryWatcher tracks the live query and decides when the text on the
// query surface warrants a rescan.
type queryWatcher struct {
	surface QuerySurface
	query   model.Query
}

func newQueryWatcher(surface QuerySurface, opts model.SearchOptions) *queryWatcher {
	return &queryWatcher{
		surface: surface,
		query:   model.Query{Options: opts},
	}
}

// poll reads the surface and reports whether a recompute is due. A query
// that failed to compile stays dirty until it is applied.
func (w *queryWatcher) poll(force bool) (string, bool) {
	text := w.surface.Text()
	return text, force || text != w.query.Applied || !w.query.Valid()
}

// candidate returns the query to run for text.
func (w *queryWatcher) candidate(text string) model.Query {
	q := w.query
	q.Raw = text
	return q
}

func (w *queryWatcher) applied(q model.Query) {
	q.Applied = q.Raw
	q.Err = nil
	w.query = q
}

// rejected keeps Applied at the last good text.
func (w *queryWatcher) rejected(q model.Query, err error) {
	q.Err = err
	w.query = q
}
