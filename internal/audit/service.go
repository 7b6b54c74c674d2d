package audit

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/deepread/internal/database/audit"
	"github.com/mrlokans/deepread/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
}

func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Error().Err(err).Str("action", event.Action).Msg("Failed to log audit event")
		}
	}()
}

// LogBackup records a backup export.
func (s *Service) LogBackup(description string, documentsCount int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventBackup,
		Action:      "backup_export",
		Description: description,
		Status:      entities.AuditStatusSuccess,
		Metadata:    metadata(map[string]any{"documents_count": documentsCount}),
	}
	fail(event, err)
	s.LogAsync(event)
}

// LogRestore records a backup import.
func (s *Service) LogRestore(strategy, description string, documentsCount int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventRestore,
		Action:      "backup_import_" + strategy,
		Description: description,
		Status:      entities.AuditStatusSuccess,
		Metadata:    metadata(map[string]any{"documents_count": documentsCount, "strategy": strategy}),
	}
	fail(event, err)
	s.LogAsync(event)
}

// LogImport records a document being added to the library.
func (s *Service) LogImport(documentID, title string, paragraphs int) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      "document_import",
		Description: "Imported document: " + title,
		EntityType:  "document",
		EntityID:    documentID,
		Status:      entities.AuditStatusSuccess,
		Metadata:    metadata(map[string]any{"paragraphs": paragraphs}),
	})
}

// LogDelete records a deletion event.
func (s *Service) LogDelete(entityType, entityID, entityName string) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventDelete,
		Action:      entityType + "_delete",
		Description: "Deleted " + entityType + ": " + entityName,
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      entities.AuditStatusSuccess,
	})
}

// GetEvents retrieves paginated audit events, optionally of one type.
func (s *Service) GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(eventType, limit, offset)
}

// EventsForDocument returns the events recorded against one document, most
// recent first.
func (s *Service) EventsForDocument(documentID string) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForEntity("document", documentID)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func fail(event *entities.AuditEvent, err error) {
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
}

func metadata(m map[string]any) string {
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
