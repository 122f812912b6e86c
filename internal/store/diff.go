package store

// Change is a record of next that was added or differs from prev.
type Change[T any] struct {
	Prev  T
	Next  T
	Added bool
}

// Diff lists the records of next that are new or changed compared to prev,
// in the order they appear in next. Records missing from next are ignored.
func Diff[K comparable, T any](key func(T) K, prev, next []T) []Change[T] {
	before := make(map[K]T, len(prev))
	for _, item := range prev {
		before[key(item)] = item
	}

	var changes []Change[T]
	for _, item := range next {
		old, ok := before[key(item)]
		switch {
		case !ok:
			changes = append(changes, Change[T]{Next: item, Added: true})
		case !Equal(old, item):
			changes = append(changes, Change[T]{Prev: old, Next: item})
		}
	}
	return changes
}

// Removed lists the keys of prev that are missing from next.
func Removed[K comparable, T any](key func(T) K, prev, next []T) []K {
	after := make(map[K]struct{}, len(next))
	for _, item := range next {
		after[key(item)] = struct{}{}
	}

	var gone []K
	for _, item := range prev {
		if _, ok := after[key(item)]; !ok {
			gone = append(gone, key(item))
		}
	}
	return gone
}

// With returns items with item replacing the entry sharing its key, or
// appended when no entry has that key.
func With[K comparable, T any](items []T, item T, key func(T) K) []T {
	k := key(item)
	out := make([]T, 0, len(items)+1)
	replaced := false
	for _, it := range items {
		if key(it) == k {
			out = append(out, item)
			replaced = true
			continue
		}
		out = append(out, it)
	}
	if !replaced {
		out = append(out, item)
	}
	return out
}

// Without returns items minus the entry with key k.
func Without[K comparable, T any](items []T, k K, key func(T) K) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if key(it) != k {
			out = append(out, it)
		}
	}
	return out
}
