// Package lattice provides the abstract domains the data-flow solver
// iterates over. Every domain is a join-semilattice with a bottom
// element and a decidable partial order; the solver relies on finite
// height for termination.
package lattice

// Lattice describes a join-semilattice over elements of type E.
// Join must be commutative, associative, and idempotent, with Bottom
// as its identity. Implementations must never mutate their arguments.
type Lattice[E any] interface {
	Bottom() E
	Join(a, b E) E
	Leq(a, b E) bool
}

// Equal compares two elements via antisymmetry of the partial order.
func Equal[E any](l Lattice[E], a, b E) bool {
	return l.Leq(a, b) && l.Leq(b, a)
}
