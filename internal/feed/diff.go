package feed

// Changes lists what differs between two snapshots. Changed holds the new
// version of each item.
type Changes[T any] struct {
	Added   []T
	Removed []T
	Changed []T
}

func (c Changes[T]) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// Diff compares snapshots by key. Added and Changed follow next's order,
// Removed follows prev's order.
func Diff[T any, K comparable](prev, next []T, key func(T) K, equal func(a, b T) bool) Changes[T] {
	before := make(map[K]T, len(prev))
	for _, item := range prev {
		before[key(item)] = item
	}

	var out Changes[T]
	seen := make(map[K]struct{}, len(next))
	for _, item := range next {
		k := key(item)
		seen[k] = struct{}{}
		old, ok := before[k]
		switch {
		case !ok:
			out.Added = append(out.Added, item)
		case !equal(old, item):
			out.Changed = append(out.Changed, item)
		}
	}
	for _, item := range prev {
		if _, ok := seen[key(item)]; !ok {
			out.Removed = append(out.Removed, item)
		}
	}
	return out
}
