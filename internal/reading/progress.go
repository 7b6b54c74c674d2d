// Package reading tracks where the reader is in a document: progress
// percentage, chapter markers and page boundaries.
package reading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/events"
	"github.com/mrlokans/deepread/internal/kv"
)

const progressPrefix = "progress:"

// ProgressStore keeps one ReadingProgress per document under
// progress:<document id>.
type ProgressStore struct {
	store     kv.Store
	now       func() time.Time
	publisher events.Publisher
}

func NewProgressStore(store kv.Store, publisher events.Publisher) *ProgressStore {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &ProgressStore{store: store, now: time.Now, publisher: publisher}
}

// Get returns the saved progress, or zero progress when nothing readable
// is stored.
func (p *ProgressStore) Get(ctx context.Context, docID string) entities.ReadingProgress {
	empty := entities.ReadingProgress{DocumentID: docID}

	data, err := p.store.Get(ctx, progressPrefix+docID)
	if errors.Is(err, kv.ErrNotFound) {
		return empty
	}
	if err != nil {
		log.Warn().Err(err).Str("document_id", docID).Msg("Failed to read progress")
		return empty
	}

	var progress entities.ReadingProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		log.Warn().Err(err).Str("document_id", docID).Msg("Malformed progress record")
		return empty
	}
	progress.DocumentID = docID
	return progress
}

// Save records percent, clamped to [0, 100].
func (p *ProgressStore) Save(ctx context.Context, docID string, percent float64) (entities.ReadingProgress, error) {
	progress := entities.ReadingProgress{
		DocumentID: docID,
		Percent:    clamp(percent, 0, 100),
		UpdatedAt:  p.now(),
	}
	if err := p.Put(ctx, progress); err != nil {
		return progress, err
	}
	p.publisher.Publish(events.Event{Type: events.ProgressChanged, DocumentID: docID})
	return progress, nil
}

// Put stores progress as given, keeping its timestamp.
func (p *ProgressStore) Put(ctx context.Context, progress entities.ReadingProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := p.store.Set(ctx, progressPrefix+progress.DocumentID, data); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// Delete resets the progress of docID.
func (p *ProgressStore) Delete(ctx context.Context, docID string) error {
	return p.Put(ctx, entities.ReadingProgress{DocumentID: docID, UpdatedAt: p.now()})
}

// PercentForPage converts a 1-based page number into a progress percentage.
func PercentForPage(page, totalPages int) float64 {
	if totalPages <= 0 {
		return 0
	}
	return clamp(float64(page)/float64(totalPages)*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
