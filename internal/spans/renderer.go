package spans

import (
	"sort"
	"unicode/utf16"

	"github.com/mrlokans/deepread/internal/entities"
)

type RunKind string

const (
	RunPlain       RunKind = "plain"
	RunHighlighted RunKind = "highlighted"
)

// Run is one contiguous piece of a rendered paragraph.
type Run struct {
	Kind       RunKind                 `json:"kind"`
	Text       string                  `json:"text"`
	SpanID     string                  `json:"span_id,omitempty"`
	Color      entities.HighlightColor `json:"color,omitempty"`
	Style      entities.HighlightStyle `json:"style,omitempty"`
	NoteID     string                  `json:"note_id,omitempty"`
	Background bool                    `json:"background,omitempty"`
	Underline  bool                    `json:"underline,omitempty"`
}

// Render splits paragraph into alternating plain and highlighted runs whose
// texts concatenate back to paragraph. spans must belong to the paragraph.
// Spans starting before the current cursor or past the end of the paragraph
// are skipped; ends past the paragraph are clamped.
func Render(paragraph string, spans []entities.HighlightSpan) []Run {
	units := utf16.Encode([]rune(paragraph))
	n := len(units)

	sorted := make([]entities.HighlightSpan, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartOffset < sorted[j].StartOffset
	})

	runs := make([]Run, 0, 2*len(sorted)+1)
	cursor := 0
	for _, h := range sorted {
		start := h.StartOffset
		if start < cursor || start >= n {
			continue
		}
		end := h.EndOffset()
		if end > n {
			end = n
		}
		if end <= start {
			continue
		}

		if start > cursor {
			runs = append(runs, Run{Kind: RunPlain, Text: decode(units[cursor:start])})
		}
		runs = append(runs, Run{
			Kind:       RunHighlighted,
			Text:       decode(units[start:end]),
			SpanID:     h.ID,
			Color:      h.Color,
			Style:      h.Style,
			NoteID:     h.NoteID,
			Background: h.Style == entities.HighlightStyleBackground,
			Underline:  h.Style == entities.HighlightStyleUnderline || h.NoteID != "",
		})
		cursor = end
	}
	if cursor < n {
		runs = append(runs, Run{Kind: RunPlain, Text: decode(units[cursor:])})
	}
	return runs
}

func decode(units []uint16) string {
	return string(utf16.Decode(units))
}
