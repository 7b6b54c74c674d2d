package http

import (
	"net/http"

	"github.com/mrlokans/deepread/internal/events"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Documents  DocumentStore
	Highlights HighlightService
	Progress   ProgressStore
	Chapters   ChapterStore
	Drafts     DraftStore
	Backup     BackupService
	Notes      NotesCollector
	Auditor    Auditor
	AuditLog   AuditLog
	Events     events.Publisher

	// Health checks by name, e.g. "database" and "kv".
	HealthChecks map[string]HealthCheck

	// EventStream serves the websocket change feed. Optional.
	EventStream http.HandlerFunc

	// Task queue (optional)
	Tasks TaskQueue

	// Scheduled backups, reported when enabled.
	BackupSchedule BackupSchedule

	// Rate limiting of mutating routes; disabled when RateLimitRPS is 0.
	RateLimitRPS   float64
	RateLimitBurst int

	ParagraphsPerPage int

	Version string
}
