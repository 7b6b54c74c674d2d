package highlights

import (
	"errors"
	"fmt"

	"github.com/mrlokans/deepread/internal/database/documents"
	"github.com/mrlokans/deepread/internal/utils"
)

// Selection is a text range that may span several paragraphs. Offsets are
// UTF-16 code units; EndOffset is exclusive and relative to EndParagraph.
type Selection struct {
	StartParagraph int `json:"start_paragraph"`
	StartOffset    int `json:"start_offset"`
	EndParagraph   int `json:"end_paragraph"`
	EndOffset      int `json:"end_offset"`
}

// Range returns a single-paragraph selection.
func Range(paragraph, start, end int) Selection {
	return Selection{StartParagraph: paragraph, StartOffset: start, EndParagraph: paragraph, EndOffset: end}
}

// ParagraphSource supplies paragraph text for a document.
type ParagraphSource interface {
	Paragraph(docID string, index int) (string, error)
}

type paragraphRange struct {
	index int
	text  string
	start int
	end   int
}

// split expands sel into per-paragraph ranges. Middle paragraphs are taken
// whole and empty pieces are skipped.
func split(docID string, sel Selection, src ParagraphSource) ([]paragraphRange, error) {
	if sel.StartParagraph < 0 || sel.EndParagraph < sel.StartParagraph || sel.StartOffset < 0 || sel.EndOffset < 0 {
		return nil, ErrInvalidRange
	}
	if sel.StartParagraph == sel.EndParagraph && sel.EndOffset <= sel.StartOffset {
		return nil, ErrInvalidRange
	}

	var ranges []paragraphRange
	for p := sel.StartParagraph; p <= sel.EndParagraph; p++ {
		text, err := src.Paragraph(docID, p)
		if errors.Is(err, documents.ErrNotFound) {
			return nil, ErrInvalidRange
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read paragraph %d: %w", p, err)
		}
		length := utils.UTF16Len(text)

		start, end := 0, length
		if p == sel.StartParagraph {
			start = sel.StartOffset
		}
		if p == sel.EndParagraph {
			end = sel.EndOffset
		}
		if start > length || end > length {
			return nil, ErrInvalidRange
		}
		if end <= start {
			continue
		}
		ranges = append(ranges, paragraphRange{index: p, text: text, start: start, end: end})
	}

	if len(ranges) == 0 {
		return nil, ErrInvalidRange
	}
	return ranges, nil
}
