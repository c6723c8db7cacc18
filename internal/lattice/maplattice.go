package lattice

// Map is the pointwise-lifted lattice: elements are maps from keys to
// elements of an inner lattice, a missing key standing for the inner
// bottom. Bottom is the empty map, join and leq apply pointwise.
type Map[K comparable, V any] struct {
	Inner Lattice[V]
}

func (m Map[K, V]) Bottom() map[K]V { return map[K]V{} }

func (m Map[K, V]) Join(a, b map[K]V) map[K]V {
	out := make(map[K]V, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, bv := range b {
		if av, ok := out[k]; ok {
			out[k] = m.Inner.Join(av, bv)
		} else {
			out[k] = bv
		}
	}
	return out
}

func (m Map[K, V]) Leq(a, b map[K]V) bool {
	bot := m.Inner.Bottom()
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			bv = bot
		}
		if !m.Inner.Leq(av, bv) {
			return false
		}
	}
	return true
}
