package entities

import (
	"time"

	"github.com/mrlokans/deepread/internal/utils"
)

type HighlightColor string

const (
	HighlightColorBlue   HighlightColor = "blue"
	HighlightColorYellow HighlightColor = "yellow"
	HighlightColorRed    HighlightColor = "red"
	HighlightColorPurple HighlightColor = "purple"
)

// Valid reports whether c is one of the supported highlight colors.
func (c HighlightColor) Valid() bool {
	switch c {
	case HighlightColorBlue, HighlightColorYellow, HighlightColorRed, HighlightColorPurple:
		return true
	}
	return false
}

type HighlightStyle string

const (
	HighlightStyleBackground HighlightStyle = "background"
	HighlightStyleUnderline  HighlightStyle = "underline"
)

// Valid reports whether s is a supported highlight style.
func (s HighlightStyle) Valid() bool {
	return s == HighlightStyleBackground || s == HighlightStyleUnderline
}

// DefaultAnnotationColor is the sticky-note color for newly created notes.
const DefaultAnnotationColor = "#FEF3C7"

// HighlightSpan is a colored range of one paragraph. The extent is
// [StartOffset, StartOffset+Length()) in UTF-16 code units and is derived
// from the stored Text.
type HighlightSpan struct {
	ID             string         `json:"id"`
	ParagraphIndex int            `json:"paragraph_index"`
	StartOffset    int            `json:"start_offset"`
	Text           string         `json:"text"`
	Color          HighlightColor `json:"color"`
	Style          HighlightStyle `json:"style"`
	NoteID         string         `json:"note_id,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Version        int            `json:"version"`
}

// Length returns the span length in UTF-16 code units.
func (h HighlightSpan) Length() int {
	return utils.UTF16Len(h.Text)
}

// EndOffset returns the exclusive end of the span.
func (h HighlightSpan) EndOffset() int {
	return h.StartOffset + h.Length()
}

func (h HighlightSpan) GetID() string           { return h.ID }
func (h HighlightSpan) GetUpdatedAt() time.Time { return h.UpdatedAt }

// Annotation is a sticky note attached to exactly one highlight span.
// Top and PointX are layout hints for the reader and carry no meaning here.
type Annotation struct {
	ID          string    `json:"id"`
	HighlightID string    `json:"highlight_id"`
	Text        string    `json:"text"`
	Top         float64   `json:"top"`
	PointX      float64   `json:"point_x,omitempty"`
	Color       string    `json:"color"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

func (a Annotation) GetID() string           { return a.ID }
func (a Annotation) GetUpdatedAt() time.Time { return a.UpdatedAt }

// UserNote is the "thought" projection of an annotation. Quote is a
// snapshot of the highlighted text taken when the note was first saved.
type UserNote struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Quote     string    `json:"quote"`
	Thought   string    `json:"thought"`
	Date      string    `json:"date"` // YYYY-MM-DD
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

func (n UserNote) GetID() string           { return n.ID }
func (n UserNote) GetUpdatedAt() time.Time { return n.UpdatedAt }

// NoteDateLayout is the layout of UserNote.Date.
const NoteDateLayout = "2006-01-02"

// ReadingProgress is the last reading position of a document, in percent.
type ReadingProgress struct {
	DocumentID string    `json:"document_id"`
	Percent    float64   `json:"percent"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NotebookDraft is the free-form notebook text the reader keeps per
// document.
type NotebookDraft struct {
	DocumentID string    `json:"document_id"`
	Text       string    `json:"text"`
	UpdatedAt  time.Time `json:"updated_at"`
	Version    int       `json:"version"`
}

// Chapter marks the paragraph a chapter starts at.
type Chapter struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	StartParagraphIndex int       `json:"start_paragraph_index"`
	UpdatedAt           time.Time `json:"updated_at"`
	Version             int       `json:"version"`
}

func (c Chapter) GetID() string           { return c.ID }
func (c Chapter) GetUpdatedAt() time.Time { return c.UpdatedAt }
