package spans

import (
	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/utils"
)

// Outcome describes what a resolution did to one existing span.
type Outcome string

const (
	OutcomeKept       Outcome = "kept"
	OutcomeTrimmed    Outcome = "trimmed"
	OutcomeSplit      Outcome = "split"
	OutcomeSuperseded Outcome = "superseded"
)

// Change records the fate of an existing span of the resolved paragraph.
// Fragments holds what survived, ordered by offset; it is empty when the
// span was superseded.
type Change struct {
	Original  entities.HighlightSpan
	Outcome   Outcome
	Fragments []entities.HighlightSpan
}

// Resolution is the overlap-free span list produced by Resolve, before the
// new span is appended, plus the provenance of every span it touched.
type Resolution struct {
	ParagraphIndex int
	Start          int
	End            int
	Spans          []entities.HighlightSpan
	Changes        []Change
}

// Resolve clears the range [newStart, newEnd) of paragraphIndex so a new span
// can be appended there. Spans of other paragraphs pass through untouched.
// Intervals are half-open, so spans that only touch the range are kept.
//
// An engulfing span is split in two: the left fragment keeps the original id
// and the right fragment gets a fresh id from ids. Trimmed spans keep their id.
// Fragments inherit color, style and note id; see Relink for note ownership.
func Resolve(existing []entities.HighlightSpan, paragraphIndex, newStart, newEnd int, ids IDGenerator) Resolution {
	res := Resolution{
		ParagraphIndex: paragraphIndex,
		Start:          newStart,
		End:            newEnd,
		Spans:          make([]entities.HighlightSpan, 0, len(existing)+1),
	}

	for _, h := range existing {
		if h.ParagraphIndex != paragraphIndex {
			res.Spans = append(res.Spans, h)
			continue
		}

		hStart, hEnd := h.StartOffset, h.EndOffset()

		var change Change
		switch {
		case hEnd <= newStart || hStart >= newEnd:
			change = Change{Original: h, Outcome: OutcomeKept, Fragments: []entities.HighlightSpan{h}}

		case newStart <= hStart && newEnd >= hEnd:
			change = Change{Original: h, Outcome: OutcomeSuperseded}

		case hStart < newStart && hEnd > newEnd:
			change = Change{Original: h, Outcome: OutcomeSplit}
			if left, ok := fragment(h, h.ID, hStart, newStart); ok {
				change.Fragments = append(change.Fragments, left)
			}
			if right, ok := fragment(h, ids.NewID(), newEnd, hEnd); ok {
				right.Version = 1
				change.Fragments = append(change.Fragments, right)
			}

		case hStart < newStart:
			change = Change{Original: h, Outcome: OutcomeTrimmed}
			if left, ok := fragment(h, h.ID, hStart, newStart); ok {
				change.Fragments = append(change.Fragments, left)
			}

		default:
			change = Change{Original: h, Outcome: OutcomeTrimmed}
			if right, ok := fragment(h, h.ID, newEnd, hEnd); ok {
				change.Fragments = append(change.Fragments, right)
			}
		}

		if len(change.Fragments) == 0 {
			change.Outcome = OutcomeSuperseded
		}
		res.Spans = append(res.Spans, change.Fragments...)
		res.Changes = append(res.Changes, change)
	}

	return res
}

// fragment cuts [from, to) out of h. The bool is false for empty results.
func fragment(h entities.HighlightSpan, id string, from, to int) (entities.HighlightSpan, bool) {
	if to <= from {
		return entities.HighlightSpan{}, false
	}
	f := h
	f.ID = id
	f.StartOffset = from
	f.Text = utils.UTF16Slice(h.Text, from-h.StartOffset, to-h.StartOffset)
	f.Version = h.Version + 1
	return f, true
}

// ForParagraph returns the spans anchored in paragraphIndex, in input order.
func ForParagraph(all []entities.HighlightSpan, paragraphIndex int) []entities.HighlightSpan {
	var out []entities.HighlightSpan
	for _, h := range all {
		if h.ParagraphIndex == paragraphIndex {
			out = append(out, h)
		}
	}
	return out
}

// Overlapping reports whether any two spans of the same paragraph intersect.
func Overlapping(all []entities.HighlightSpan) bool {
	byParagraph := make(map[int][]entities.HighlightSpan)
	for _, h := range all {
		byParagraph[h.ParagraphIndex] = append(byParagraph[h.ParagraphIndex], h)
	}
	for _, list := range byParagraph {
		for i := range list {
			for j := i + 1; j < len(list); j++ {
				a, b := list[i], list[j]
				if a.StartOffset < b.EndOffset() && b.StartOffset < a.EndOffset() {
					return true
				}
			}
		}
	}
	return false
}
