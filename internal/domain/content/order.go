package content

import "sort"

// Order returns posts newest first using the default day policy. The input
// is left untouched and posts with equal instants keep their input order.
func Order(posts []PostMeta) []PostMeta {
	return Normalizer{}.Order(posts)
}

func (n Normalizer) Order(posts []PostMeta) []PostMeta {
	return orderBy(n, posts, func(m PostMeta) PublishedDate { return m.Published })
}

// OrderPosts is Order for posts that still carry their body reference.
func (n Normalizer) OrderPosts(posts []Post) []Post {
	return orderBy(n, posts, func(p Post) PublishedDate { return p.Meta.Published })
}

func orderBy[T any](n Normalizer, items []T, date func(T) PublishedDate) []T {
	keys := make([]Instant, len(items))
	perm := make([]int, len(items))
	for i, it := range items {
		keys[i] = n.Instant(date(it))
		perm[i] = i
	}

	// a 排在 b 之前 iff instant(b) - instant(a) < 0
	sort.SliceStable(perm, func(i, j int) bool {
		return keys[perm[j]].Sub(keys[perm[i]]) < 0
	})

	out := make([]T, len(items))
	for i, p := range perm {
		out[i] = items[p]
	}
	return out
}
