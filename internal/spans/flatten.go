package spans

import (
	"sort"

	"github.com/mrlokans/deepread/internal/entities"
)

// Flatten removes overlaps from a span list that was assembled without going
// through Resolve, such as the union of two replicas. More recently updated
// spans win; a span overlapping any winner is dropped whole. Zero-length
// spans are dropped too. The survivors keep their input order.
func Flatten(list []entities.HighlightSpan) []entities.HighlightSpan {
	order := make([]int, len(list))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return list[order[a]].UpdatedAt.After(list[order[b]].UpdatedAt)
	})

	keep := make([]bool, len(list))
	var accepted []entities.HighlightSpan
	for _, i := range order {
		h := list[i]
		if h.Length() == 0 {
			continue
		}
		clash := false
		for _, k := range accepted {
			if k.ParagraphIndex == h.ParagraphIndex && k.StartOffset < h.EndOffset() && h.StartOffset < k.EndOffset() {
				clash = true
				break
			}
		}
		if clash {
			continue
		}
		keep[i] = true
		accepted = append(accepted, h)
	}

	out := make([]entities.HighlightSpan, 0, len(accepted))
	for i, h := range list {
		if keep[i] {
			out = append(out, h)
		}
	}
	return out
}
