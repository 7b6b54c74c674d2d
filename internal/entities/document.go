package entities

import (
	"time"
)

// Document is an imported book. Its paragraphs are immutable once stored.
type Document struct {
	ID             string      `gorm:"primaryKey;size:36" json:"id"`
	Title          string      `gorm:"index;size:512" json:"title"`
	Author         string      `gorm:"index;size:256" json:"author"`
	ParagraphCount int         `json:"paragraph_count"`
	Paragraphs     []Paragraph `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"paragraphs,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type Paragraph struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	DocumentID string `gorm:"index:idx_paragraph_position,unique;size:36" json:"-"`
	Index      int    `gorm:"column:paragraph_index;index:idx_paragraph_position,unique" json:"index"`
	Text       string `gorm:"type:text" json:"text"`
}

func (Document) TableName() string {
	return "documents"
}

func (Paragraph) TableName() string {
	return "paragraphs"
}

// Texts returns the paragraph strings ordered by index.
func (d *Document) Texts() []string {
	out := make([]string, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		out[i] = p.Text
	}
	return out
}
