package carousel

import "strings"

// GroupColumns splits items into columns of size items each. The last
// column may hold fewer.
func GroupColumns[T any](items []T, size int, id func(T) string) []Column[T] {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultGroupSize
	}
	out := make([]Column[T], 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		group := append([]T(nil), items[start:end]...)
		ids := make([]string, 0, len(group))
		if id != nil {
			for _, it := range group {
				ids = append(ids, id(it))
			}
		}
		out = append(out, Column[T]{ID: strings.Join(ids, "+"), Items: group})
	}
	return out
}

// BuildLoopBuffer pads cols with a copy of the last column in front and a
// copy of the first column at the end.
func BuildLoopBuffer[T any](cols []Column[T]) []Column[T] {
	if len(cols) == 0 {
		return nil
	}
	out := make([]Column[T], 0, len(cols)+2)
	out = append(out, cols[len(cols)-1])
	out = append(out, cols...)
	out = append(out, cols[0])
	return out
}

// DisplayIndex maps a logical buffer index to the 1-based page shown to the
// user. Sentinels map to their real counterparts.
func DisplayIndex(logical, n int) int {
	if n <= 0 {
		return 0
	}
	if logical <= 0 {
		return n
	}
	if logical > n {
		return 1
	}
	return logical
}
