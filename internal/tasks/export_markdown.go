package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/deepread/internal/exporters"
)

// MarkdownWriter exports every highlighted document as markdown.
type MarkdownWriter interface {
	ExportAll(ctx context.Context, dir string) (exporters.ExportResult, error)
}

type ExportMarkdownTask struct {
	Dir string `json:"dir,omitempty"`
}

func (t ExportMarkdownTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueExportMarkdown,
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func ExportMarkdownProcessor(writer MarkdownWriter, cfg Config) backlite.QueueProcessor[ExportMarkdownTask] {
	return func(ctx context.Context, task ExportMarkdownTask) error {
		if writer == nil {
			return errors.New("markdown exporter not configured")
		}
		dir := task.Dir
		if dir == "" {
			dir = cfg.MarkdownDir
		}
		if _, err := writer.ExportAll(ctx, dir); err != nil {
			return fmt.Errorf("export markdown: %w", err)
		}
		return nil
	}
}

func NewExportMarkdownQueue(writer MarkdownWriter, cfg Config) backlite.Queue {
	return backlite.NewQueue(ExportMarkdownProcessor(writer, cfg))
}
