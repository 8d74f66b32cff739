package filter

import "github.com/brandon/mcp-mailview/pkg/types"

// Named is a registered filter
type Named struct {
	Name  string `json:"name"`
	Query string `json:"query"`
	Expr  Expr   `json:"-"`
}

// Set is the active filters of a view, combined with AND. Each name is
// registered at most once.
type Set struct {
	filters []Named
}

// Replace registers e under name, dropping any filter already registered
// under that name
func (s *Set) Replace(name, query string, e Expr) {
	s.Remove(name)
	s.filters = append(s.filters, Named{Name: name, Query: query, Expr: e})
}

// Remove unregisters name and reports whether it was registered
func (s *Set) Remove(name string) bool {
	kept := s.filters[:0]
	removed := false
	for _, f := range s.filters {
		if f.Name == name {
			removed = true
			continue
		}
		kept = append(kept, f)
	}
	s.filters = kept
	return removed
}

// Has reports whether name is registered
func (s *Set) Has(name string) bool {
	for _, f := range s.filters {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Clear unregisters every filter
func (s *Set) Clear() {
	s.filters = nil
}

// Len returns the number of registered filters
func (s *Set) Len() int {
	return len(s.filters)
}

// Filters returns the registered filters in registration order
func (s *Set) Filters() []Named {
	return append([]Named(nil), s.filters...)
}

// RequiresBody reports whether any registered filter needs bodies
func (s *Set) RequiresBody() bool {
	for _, f := range s.filters {
		if RequiresBody(f.Expr) {
			return true
		}
	}
	return false
}

// Match reports whether hdr passes every registered filter
func (s *Set) Match(hdr types.Header, bodies BodyFunc) bool {
	for _, f := range s.filters {
		if !Match(f.Expr, hdr, bodies) {
			return false
		}
	}
	return true
}

// Apply returns the headers passing every filter, preserving order
func (s *Set) Apply(headers []types.Header, bodies BodyFunc) []types.Header {
	if len(s.filters) == 0 {
		return headers
	}
	shown := make([]types.Header, 0, len(headers))
	for _, hdr := range headers {
		if s.Match(hdr, bodies) {
			shown = append(shown, hdr)
		}
	}
	return shown
}
