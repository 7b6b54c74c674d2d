package tasks

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mikestefanello/backlite"
)

const (
	QueueExportBackup           = "export_backup"
	QueueExportMarkdown         = "export_markdown"
	QueuePruneOrphanAnnotations = "prune_orphan_annotations"
	QueueCleanupAuditEvents     = "cleanup_audit_events"
)

// ErrInvalidTask is returned for unknown queue names and malformed
// parameters.
var ErrInvalidTask = errors.New("invalid task")

// TaskType describes a queue that can be triggered by hand.
type TaskType struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Types lists every registered queue.
func Types() []TaskType {
	return []TaskType{
		{Name: QueueExportBackup, Description: "Write a library backup archive and prune old ones"},
		{Name: QueueExportMarkdown, Description: "Export highlights and notes as markdown files"},
		{Name: QueuePruneOrphanAnnotations, Description: "Remove annotations whose highlight no longer exists"},
		{Name: QueueCleanupAuditEvents, Description: "Delete audit events past retention"},
	}
}

// Dependencies are the services the queues run against. Nil members make
// the matching tasks fail with a configuration error.
type Dependencies struct {
	Backup     BackupWriter
	Prune      PruneFunc
	Markdown   MarkdownWriter
	Reconciler Reconciler
	Documents  DocumentLister
	Audit      AuditEventCleaner
}

// RegisterAll registers every queue with the client.
func RegisterAll(c *Client, deps Dependencies) {
	cfg := c.Config()
	c.Register(
		NewExportBackupQueue(deps.Backup, deps.Prune, cfg),
		NewExportMarkdownQueue(deps.Markdown, cfg),
		NewPruneOrphanAnnotationsQueue(deps.Reconciler, deps.Documents),
		NewCleanupAuditEventsQueue(deps.Audit),
	)
}

// NewTask builds the task for a queue name from optional JSON parameters.
func NewTask(name string, params json.RawMessage) (backlite.Task, error) {
	var task backlite.Task
	switch name {
	case QueueExportBackup:
		t := ExportBackupTask{}
		if err := decodeParams(params, &t); err != nil {
			return nil, err
		}
		task = t
	case QueueExportMarkdown:
		t := ExportMarkdownTask{}
		if err := decodeParams(params, &t); err != nil {
			return nil, err
		}
		task = t
	case QueuePruneOrphanAnnotations:
		t := PruneOrphanAnnotationsTask{}
		if err := decodeParams(params, &t); err != nil {
			return nil, err
		}
		task = t
	case QueueCleanupAuditEvents:
		t := CleanupAuditEventsTask{}
		if err := decodeParams(params, &t); err != nil {
			return nil, err
		}
		task = t
	default:
		return nil, fmt.Errorf("%w: unknown type %s", ErrInvalidTask, name)
	}
	return task, nil
}

func decodeParams(params json.RawMessage, into any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, into); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}
	return nil
}
