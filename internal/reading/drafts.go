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

const draftPrefix = "notebook_draft:"

// DraftStore keeps the notebook draft of each document under
// notebook_draft:<document id>.
type DraftStore struct {
	store     kv.Store
	now       func() time.Time
	publisher events.Publisher
}

func NewDraftStore(store kv.Store, publisher events.Publisher) *DraftStore {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &DraftStore{store: store, now: time.Now, publisher: publisher}
}

// Get returns the saved draft, or an empty one when nothing readable is
// stored.
func (d *DraftStore) Get(ctx context.Context, docID string) entities.NotebookDraft {
	empty := entities.NotebookDraft{DocumentID: docID}

	data, err := d.store.Get(ctx, draftPrefix+docID)
	if errors.Is(err, kv.ErrNotFound) {
		return empty
	}
	if err != nil {
		log.Warn().Err(err).Str("document_id", docID).Msg("Failed to read notebook draft")
		return empty
	}

	var draft entities.NotebookDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		log.Warn().Err(err).Str("document_id", docID).Msg("Malformed notebook draft")
		return empty
	}
	draft.DocumentID = docID
	return draft
}

// Save replaces the draft text and bumps its version.
func (d *DraftStore) Save(ctx context.Context, docID, text string) (entities.NotebookDraft, error) {
	draft := d.Get(ctx, docID)
	draft.Text = text
	draft.UpdatedAt = d.now()
	draft.Version++
	if err := d.Put(ctx, draft); err != nil {
		return draft, err
	}
	d.publisher.Publish(events.Event{Type: events.DraftChanged, DocumentID: docID})
	return draft, nil
}

// Put stores draft as given, keeping its timestamp and version.
func (d *DraftStore) Put(ctx context.Context, draft entities.NotebookDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode notebook draft: %w", err)
	}
	if err := d.store.Set(ctx, draftPrefix+draft.DocumentID, data); err != nil {
		return fmt.Errorf("failed to save notebook draft: %w", err)
	}
	return nil
}

// Delete clears the draft of docID.
func (d *DraftStore) Delete(ctx context.Context, docID string) error {
	return d.Put(ctx, entities.NotebookDraft{DocumentID: docID, UpdatedAt: d.now()})
}
