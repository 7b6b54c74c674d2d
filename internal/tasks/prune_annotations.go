package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/deepread/internal/entities"
)

// Reconciler repairs the stored highlight state of one document.
type Reconciler interface {
	Reconcile(ctx context.Context, docID string) (int, error)
}

type DocumentLister interface {
	List() ([]entities.Document, error)
}

// PruneOrphanAnnotationsTask removes annotations whose highlight no longer
// exists. An empty DocumentID covers every document.
type PruneOrphanAnnotationsTask struct {
	DocumentID string `json:"document_id,omitempty"`
}

func (t PruneOrphanAnnotationsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueuePruneOrphanAnnotations,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func PruneOrphanAnnotationsProcessor(reconciler Reconciler, docs DocumentLister) backlite.QueueProcessor[PruneOrphanAnnotationsTask] {
	return func(ctx context.Context, task PruneOrphanAnnotationsTask) error {
		if reconciler == nil {
			return errors.New("reconciler not configured")
		}

		ids := []string{task.DocumentID}
		if task.DocumentID == "" {
			if docs == nil {
				return errors.New("document lister not configured")
			}
			list, err := docs.List()
			if err != nil {
				return fmt.Errorf("list documents: %w", err)
			}
			ids = ids[:0]
			for _, d := range list {
				ids = append(ids, d.ID)
			}
		}

		total := 0
		for _, id := range ids {
			repaired, err := reconciler.Reconcile(ctx, id)
			if err != nil {
				return fmt.Errorf("reconcile %s: %w", id, err)
			}
			total += repaired
		}

		log.Info().Int("documents", len(ids)).Int("repaired", total).Msg("Pruned orphan annotations")
		return nil
	}
}

func NewPruneOrphanAnnotationsQueue(reconciler Reconciler, docs DocumentLister) backlite.Queue {
	return backlite.NewQueue(PruneOrphanAnnotationsProcessor(reconciler, docs))
}
