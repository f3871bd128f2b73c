package hashset

func NewSet[T comparable]() Set[T] {
	return map[T]struct{}{}
}

type Set[T comparable] map[T]struct{}

func SetFromSlice[T comparable](vals []T) Set[T] {
	set := NewSet[T]()
	for _, v := range vals {
		set.Set(v)
	}
	return set
}

func (vs Set[T]) Set(v T) {
	vs[v] = struct{}{}
}

func (vs Set[T]) Has(v T) bool {
	_, ok := vs[v]
	return ok
}

// AddAll merges vals into the set (idempotent union).
func (vs Set[T]) AddAll(vals []T) {
	for _, v := range vals {
		vs.Set(v)
	}
}

// RemoveAll deletes vals from the set in place.
func (vs Set[T]) RemoveAll(vals []T) {
	for _, v := range vals {
		delete(vs, v)
	}
}

func (vs Set[T]) Len() int {
	return len(vs)
}

func (vs Set[T]) AsSlice() []T {
	slice := make([]T, 0, len(vs))
	for s := range vs {
		slice = append(slice, s)
	}
	return slice
}
