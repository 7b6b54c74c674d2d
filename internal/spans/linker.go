package spans

import (
	"sort"

	"github.com/mrlokans/deepread/internal/entities"
)

// Remap moves an annotation to a different owning span.
type Remap struct {
	AnnotationID   string
	NewHighlightID string
}

// Linkage is the note bookkeeping that follows a resolution.
type Linkage struct {
	Remaps []Remap
	// Orphaned lists annotations whose span was superseded but which could
	// not be re-homed because another note already claimed the new span.
	Orphaned []string
}

// Relink decides where the notes of the spans touched by res end up and
// applies the decision in place: fragment note ids in res.Spans are cleared
// where the note moved away, and newSpan inherits a superseded note.
//
// A split note stays on the fragment containing the original start offset,
// falling back to the lower-offset fragment. Trimmed spans keep their note.
// Among superseded noted spans the lowest-offset one is re-homed onto
// newSpan; the rest are orphaned.
func Relink(res *Resolution, newSpan *entities.HighlightSpan) Linkage {
	var link Linkage

	index := make(map[string]int, len(res.Spans))
	for i, h := range res.Spans {
		index[h.ID] = i
	}

	var superseded []entities.HighlightSpan
	for _, c := range res.Changes {
		if c.Original.NoteID == "" {
			continue
		}
		switch c.Outcome {
		case OutcomeSuperseded:
			superseded = append(superseded, c.Original)
		case OutcomeSplit:
			owner := noteOwner(c)
			for _, f := range c.Fragments {
				if f.ID != owner.ID {
					res.Spans[index[f.ID]].NoteID = ""
				}
			}
			if owner.ID != c.Original.ID {
				link.Remaps = append(link.Remaps, Remap{AnnotationID: c.Original.NoteID, NewHighlightID: owner.ID})
			}
		}
	}

	sort.SliceStable(superseded, func(i, j int) bool {
		return superseded[i].StartOffset < superseded[j].StartOffset
	})
	for _, h := range superseded {
		if newSpan.NoteID == "" {
			newSpan.NoteID = h.NoteID
			link.Remaps = append(link.Remaps, Remap{AnnotationID: h.NoteID, NewHighlightID: newSpan.ID})
			continue
		}
		link.Orphaned = append(link.Orphaned, h.NoteID)
	}

	return link
}

func noteOwner(c Change) entities.HighlightSpan {
	start := c.Original.StartOffset
	for _, f := range c.Fragments {
		if f.StartOffset <= start && start < f.EndOffset() {
			return f
		}
	}
	lowest := c.Fragments[0]
	for _, f := range c.Fragments[1:] {
		if f.StartOffset < lowest.StartOffset {
			lowest = f
		}
	}
	return lowest
}
