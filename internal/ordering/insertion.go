// Package ordering provides the stable in-place sort used to present trains
// in a deterministic order.
package ordering

// Sort orders s in place by insertion sort so that cmp(s[i], s[i+1]) <= 0 for
// every adjacent pair. Elements that cmp treats as equal keep their input
// order, so re-sorting an already sorted slice never reorders ties.
// Cost is O(n²) worst case and O(n) on nearly sorted input.
func Sort[S ~[]E, E any](s S, cmp func(a, b E) int) {
	for i := 1; i < len(s); i++ {
		key := s[i]
		j := i - 1
		for j >= 0 && cmp(s[j], key) > 0 {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = key
	}
}

// IsSorted reports whether s satisfies the ordering Sort establishes.
func IsSorted[S ~[]E, E any](s S, cmp func(a, b E) int) bool {
	for i := 1; i < len(s); i++ {
		if cmp(s[i-1], s[i]) > 0 {
			return false
		}
	}
	return true
}
