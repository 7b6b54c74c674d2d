// Package documents stores imported documents and their paragraphs.
//
// # Usage
//
//	repo := documents.NewRepository(db)
//	err := repo.Create(&entities.Document{Title: "Walden", Paragraphs: paras})
//	hits, err := repo.Search(docID, "pond", 20)
package documents

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/deepread/internal/entities"
)

// ErrNotFound is returned when a document or paragraph does not exist.
var ErrNotFound = errors.New("document not found")

// snippetRadius is the number of characters kept on each side of a match.
const snippetRadius = 20

// SearchResult is one paragraph matching a content search.
type SearchResult struct {
	ParagraphIndex int    `json:"paragraph_index"`
	Snippet        string `json:"snippet"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a document with its paragraphs. The id is generated when
// empty and paragraph indexes are assigned from slice order.
func (r *Repository) Create(doc *entities.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	for i := range doc.Paragraphs {
		doc.Paragraphs[i].Index = i
		doc.Paragraphs[i].DocumentID = doc.ID
	}
	doc.ParagraphCount = len(doc.Paragraphs)

	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// Get returns a document with its paragraphs ordered by index.
func (r *Repository) Get(id string) (*entities.Document, error) {
	var doc entities.Document
	err := r.db.Preload("Paragraphs", func(db *gorm.DB) *gorm.DB {
		return db.Order("paragraph_index ASC")
	}).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Header returns a document without its paragraphs.
func (r *Repository) Header(id string) (*entities.Document, error) {
	var doc entities.Document
	err := r.db.First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Exists reports whether a document with id is stored.
func (r *Repository) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Document{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List returns all documents without paragraphs, newest first.
func (r *Repository) List() ([]entities.Document, error) {
	var docs []entities.Document
	err := r.db.Order("created_at DESC").Find(&docs).Error
	return docs, err
}

// Paragraph returns the text of a single paragraph.
func (r *Repository) Paragraph(docID string, index int) (string, error) {
	var p entities.Paragraph
	err := r.db.Where("document_id = ? AND paragraph_index = ?", docID, index).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return p.Text, nil
}

// ParagraphRange returns paragraphs with index in [from, to), ordered.
func (r *Repository) ParagraphRange(docID string, from, to int) ([]entities.Paragraph, error) {
	var paras []entities.Paragraph
	err := r.db.Where("document_id = ? AND paragraph_index >= ? AND paragraph_index < ?", docID, from, to).
		Order("paragraph_index ASC").Find(&paras).Error
	return paras, err
}

// Delete removes a document; paragraphs go with it.
func (r *Repository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&entities.Paragraph{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Document{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Search finds paragraphs of docID containing query, case-insensitively,
// and returns a snippet around the first match of each.
func (r *Repository) Search(docID, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var paras []entities.Paragraph
	err := r.db.Where("document_id = ? AND LOWER(text) LIKE LOWER(?)", docID, "%"+query+"%").
		Order("paragraph_index ASC").Limit(limit).Find(&paras).Error
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(paras))
	for _, p := range paras {
		snippet, ok := Snippet(p.Text, query)
		if !ok {
			continue
		}
		results = append(results, SearchResult{ParagraphIndex: p.Index, Snippet: snippet})
	}
	return results, nil
}

// Snippet cuts text around the first case-insensitive occurrence of query,
// with an ellipsis on each truncated side.
func Snippet(text, query string) (string, bool) {
	runes := []rune(text)
	needle := []rune(query)
	idx := indexFold(runes, needle)
	if idx < 0 {
		return "", false
	}

	start := max(0, idx-snippetRadius)
	end := min(len(runes), idx+len(needle)+snippetRadius)

	var sb strings.Builder
	if start > 0 {
		sb.WriteString("...")
	}
	sb.WriteString(string(runes[start:end]))
	if end < len(runes) {
		sb.WriteString("...")
	}
	return sb.String(), true
}

func indexFold(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if unicode.ToLower(haystack[i+j]) != unicode.ToLower(r) {
				continue outer
			}
		}
		return i
	}
	return -1
}
