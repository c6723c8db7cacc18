package lattice

// Pair is the element type of the product lattice.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Product combines two lattices componentwise.
type Product[A, B any] struct {
	Left  Lattice[A]
	Right Lattice[B]
}

func (p Product[A, B]) Bottom() Pair[A, B] {
	return Pair[A, B]{First: p.Left.Bottom(), Second: p.Right.Bottom()}
}

func (p Product[A, B]) Join(a, b Pair[A, B]) Pair[A, B] {
	return Pair[A, B]{
		First:  p.Left.Join(a.First, b.First),
		Second: p.Right.Join(a.Second, b.Second),
	}
}

func (p Product[A, B]) Leq(a, b Pair[A, B]) bool {
	return p.Left.Leq(a.First, b.First) && p.Right.Leq(a.Second, b.Second)
}
