package accessor

import (
	"golang.org/x/exp/constraints"
)

// GetEnum reads field i as the enumerated type E. The field is an ordinary unsigned field;
// the mapping of its values to E is the caller's.
func GetEnum[E constraints.Unsigned](g Getter, i int) E {
	return E(g.Uint(i))
}

// SetEnum writes e to field i.
func SetEnum[E constraints.Unsigned](s Setter, i int, e E) {
	s.SetUint(i, uint64(e))
}

// ByName returns the index of the field called name in a, panicking if there is none. It
// is meant for setting up package level indexes.
func ByName(a Fields, name string) int {
	i, ok := a.Lookup(name)
	if !ok {
		panic("bug: layout " + a.Set().Name() + " has no field " + name)
	}
	return i
}
