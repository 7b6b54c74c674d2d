// Package backup exports the whole library state into a single JSON
// archive and restores it, either replacing local state or merging it
// last-writer-wins by record timestamp.
package backup

import (
	"errors"
	"fmt"
	"time"

	"github.com/mrlokans/deepread/internal/entities"
)

// FormatVersion is the archive layout written by Export.
const FormatVersion = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported backup version")
	ErrInvalidArchive     = errors.New("invalid backup archive")
)

type Archive struct {
	Version    int                 `json:"version"`
	ExportedAt time.Time           `json:"exported_at"`
	Documents  []DocumentArchive   `json:"documents"`
	UserNotes  []entities.UserNote `json:"user_notes"`
}

// DocumentArchive is everything stored about one document.
type DocumentArchive struct {
	Document    entities.Document        `json:"document"`
	Highlights  []entities.HighlightSpan `json:"highlights"`
	Annotations []entities.Annotation    `json:"annotations"`
	Progress    entities.ReadingProgress `json:"progress"`
	Chapters    []entities.Chapter       `json:"chapters"`
	Draft       entities.NotebookDraft   `json:"draft"`
}

func (a *Archive) validate() error {
	if a.Version < 1 || a.Version > FormatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, a.Version)
	}
	for i, d := range a.Documents {
		if d.Document.ID == "" {
			return fmt.Errorf("%w: document %d has no id", ErrInvalidArchive, i)
		}
	}
	return nil
}

type Strategy string

const (
	// StrategyReplace overwrites local state with the archive.
	StrategyReplace Strategy = "replace"
	// StrategyLWW merges by id; the newer updated_at wins, ties keep local.
	StrategyLWW Strategy = "lww"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return StrategyLWW, nil
	case StrategyReplace, StrategyLWW:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("%w: unknown restore strategy %q", ErrInvalidArchive, s)
}

// Summary counts what an import wrote.
type Summary struct {
	Documents        int `json:"documents"`
	CreatedDocuments int `json:"created_documents"`
	Highlights       int `json:"highlights"`
	Annotations      int `json:"annotations"`
	Notes            int `json:"notes"`
}
