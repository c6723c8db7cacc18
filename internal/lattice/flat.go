package lattice

// FlatElem is an element of the flat lattice: bottom, exactly one
// concrete value, or top. All concrete values are mutually unordered.
type FlatElem[T comparable] struct {
	IsTop bool
	IsVal bool
	Val   T
}

func FlatBottom[T comparable]() FlatElem[T] { return FlatElem[T]{} }
func FlatTop[T comparable]() FlatElem[T]    { return FlatElem[T]{IsTop: true} }
func FlatValue[T comparable](v T) FlatElem[T] {
	return FlatElem[T]{IsVal: true, Val: v}
}

// Flat is the three-level lattice bottom < value_i < top.
type Flat[T comparable] struct{}

func (Flat[T]) Bottom() FlatElem[T] { return FlatBottom[T]() }

func (Flat[T]) Join(a, b FlatElem[T]) FlatElem[T] {
	switch {
	case a.IsTop || b.IsTop:
		return FlatTop[T]()
	case !a.IsVal:
		return b
	case !b.IsVal:
		return a
	case a.Val == b.Val:
		return a
	default:
		return FlatTop[T]()
	}
}

func (Flat[T]) Leq(a, b FlatElem[T]) bool {
	switch {
	case !a.IsVal && !a.IsTop:
		return true
	case b.IsTop:
		return true
	case a.IsTop:
		return false
	default:
		return b.IsVal && a.Val == b.Val
	}
}
