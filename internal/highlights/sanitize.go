package highlights

import "github.com/mrlokans/deepread/internal/entities"

// Sanitize restores the span/annotation cascade: an annotation survives only
// if its span exists and points back at it, and a span note id survives only
// if that annotation survives. Inputs are not modified.
func Sanitize(spans []entities.HighlightSpan, annotations []entities.Annotation) ([]entities.HighlightSpan, []entities.Annotation) {
	noteOf := make(map[string]string, len(spans))
	for _, h := range spans {
		noteOf[h.ID] = h.NoteID
	}

	keptAnnotations := make([]entities.Annotation, 0, len(annotations))
	owner := make(map[string]string, len(annotations))
	for _, a := range annotations {
		note, ok := noteOf[a.HighlightID]
		if _, dup := owner[a.ID]; !ok || note != a.ID || dup {
			continue
		}
		owner[a.ID] = a.HighlightID
		keptAnnotations = append(keptAnnotations, a)
	}

	keptSpans := make([]entities.HighlightSpan, len(spans))
	for i, h := range spans {
		if h.NoteID != "" && owner[h.NoteID] != h.ID {
			h.NoteID = ""
		}
		keptSpans[i] = h
	}
	return keptSpans, keptAnnotations
}
