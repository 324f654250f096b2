package graph

// Edge is a directed connection between two nodes, optionally guarded by a
// predicate that picks the next node at runtime (spec §3 "Edge").
type Edge struct {
	From      string
	To        string
	Predicate PredicateFunc
}

// Conditional reports whether the edge carries a routing predicate rather
// than a static target.
func (e Edge) Conditional() bool { return e.Predicate != nil }
