package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
)

// BackupWriter writes a full library archive into a directory.
type BackupWriter interface {
	WriteFile(ctx context.Context, dir string) (string, error)
}

// PruneFunc removes all but the newest retain archives from dir.
type PruneFunc func(dir string, retain int) (int, error)

// ExportBackupTask writes a backup archive and prunes old ones. Empty
// fields fall back to the client configuration.
type ExportBackupTask struct {
	Dir    string `json:"dir,omitempty"`
	Retain int    `json:"retain,omitempty"`
}

func (t ExportBackupTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueExportBackup,
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func ExportBackupProcessor(writer BackupWriter, prune PruneFunc, cfg Config) backlite.QueueProcessor[ExportBackupTask] {
	return func(ctx context.Context, task ExportBackupTask) error {
		if writer == nil {
			return errors.New("backup writer not configured")
		}
		dir := task.Dir
		if dir == "" {
			dir = cfg.BackupDir
		}
		retain := task.Retain
		if retain <= 0 {
			retain = cfg.BackupRetain
		}

		path, err := writer.WriteFile(ctx, dir)
		if err != nil {
			return fmt.Errorf("export backup: %w", err)
		}

		removed := 0
		if prune != nil && retain > 0 {
			removed, err = prune(dir, retain)
			if err != nil {
				log.Warn().Err(err).Str("dir", dir).Msg("Failed to prune old backups")
			}
		}

		log.Info().Str("path", path).Int("pruned", removed).Msg("Backup exported")
		return nil
	}
}

func NewExportBackupQueue(writer BackupWriter, prune PruneFunc, cfg Config) backlite.Queue {
	return backlite.NewQueue(ExportBackupProcessor(writer, prune, cfg))
}
