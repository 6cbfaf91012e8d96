package model

// ResultSet holds the ordered matches of one recompute and the current
// selection. The selection points at an element of matches; nil means
// none, which holds exactly when matches is empty.
type ResultSet struct {
	matches  []Match
	selected *Match
}

// NewResultSet returns a result set built from matches.
func NewResultSet(matches []Match) *ResultSet {
	r := &ResultSet{}
	r.Rebuild(matches)
	return r
}

// Rebuild replaces the sequence wholesale and selects the first element.
func (r *ResultSet) Rebuild(matches []Match) {
	r.matches = append([]Match(nil), matches...)
	r.selected = nil
	if len(r.matches) > 0 {
		r.selected = &r.matches[0]
	}
}

func (r *ResultSet) Len() int {
	return len(r.matches)
}

// Matches returns a copy of the sequence in scan order.
func (r *ResultSet) Matches() []Match {
	return append([]Match(nil), r.matches...)
}

// Selected returns the selected match, or nil when the set is empty.
func (r *ResultSet) Selected() *Match {
	return r.selected
}

// Index returns the position of the selection, or -1 for none.
func (r *ResultSet) Index() int {
	for i := range r.matches {
		if &r.matches[i] == r.selected {
			return i
		}
	}
	return -1
}

// Select moves the selection to position i. Out of range is ignored.
func (r *ResultSet) Select(i int) bool {
	if i < 0 || i >= len(r.matches) {
		return false
	}
	r.selected = &r.matches[i]
	return true
}

// Next moves the selection forward, wrapping from the last to the first.
func (r *ResultSet) Next() {
	n := len(r.matches)
	if n == 0 {
		return
	}
	r.selected = &r.matches[(r.Index()+1)%n]
}

// Prev moves the selection back, wrapping from the first to the last.
func (r *ResultSet) Prev() {
	n := len(r.matches)
	if n == 0 {
		return
	}
	r.selected = &r.matches[(r.Index()-1+n)%n]
}
