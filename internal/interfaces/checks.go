package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/deepread/internal/audit"
	"github.com/mrlokans/deepread/internal/backup"
	"github.com/mrlokans/deepread/internal/database/documents"
	dbkv "github.com/mrlokans/deepread/internal/database/kv"
	"github.com/mrlokans/deepread/internal/events"
	"github.com/mrlokans/deepread/internal/exporters"
	"github.com/mrlokans/deepread/internal/highlights"
	"github.com/mrlokans/deepread/internal/http"
	"github.com/mrlokans/deepread/internal/kv"
	pgkv "github.com/mrlokans/deepread/internal/kv/postgres"
	rediskv "github.com/mrlokans/deepread/internal/kv/redis"
	"github.com/mrlokans/deepread/internal/reading"
	"github.com/mrlokans/deepread/internal/scheduler"
	"github.com/mrlokans/deepread/internal/spans"
	"github.com/mrlokans/deepread/internal/tasks"
)

// =============================================================================
// Record Stores
// =============================================================================

var _ kv.Store = (*dbkv.Repository)(nil)
var _ kv.Store = (*rediskv.Store)(nil)
var _ kv.Store = (*pgkv.Store)(nil)
var _ kv.Store = (*kv.Memory)(nil)

var _ kv.Pinger = (*dbkv.Repository)(nil)
var _ kv.Pinger = (*rediskv.Store)(nil)
var _ kv.Pinger = (*pgkv.Store)(nil)

// =============================================================================
// Documents
// =============================================================================

var _ http.DocumentStore = (*documents.Repository)(nil)
var _ highlights.ParagraphSource = (*documents.Repository)(nil)
var _ backup.DocumentRepository = (*documents.Repository)(nil)
var _ exporters.DocumentLister = (*documents.Repository)(nil)
var _ tasks.DocumentLister = (*documents.Repository)(nil)

// =============================================================================
// Highlights and Reading State
// =============================================================================

var _ http.HighlightService = (*highlights.Service)(nil)
var _ tasks.Reconciler = (*highlights.Service)(nil)
var _ http.ProgressStore = (*reading.ProgressStore)(nil)
var _ http.ChapterStore = (*reading.ChapterStore)(nil)
var _ http.DraftStore = (*reading.DraftStore)(nil)

var _ spans.IDGenerator = spans.UUIDGenerator{}
var _ spans.IDGenerator = (*spans.Sequence)(nil)

var _ events.Publisher = (*events.Bus)(nil)
var _ events.Publisher = events.Discard{}

// =============================================================================
// Backup, Export and Audit
// =============================================================================

var _ http.BackupService = (*backup.Service)(nil)
var _ tasks.BackupWriter = (*backup.Service)(nil)
var _ tasks.PruneFunc = backup.Prune

var _ http.NotesCollector = (*exporters.LibraryExporter)(nil)
var _ tasks.MarkdownWriter = (*exporters.LibraryExporter)(nil)
var _ exporters.NotesExporter = (*exporters.MarkdownExporter)(nil)

var _ http.Auditor = (*audit.Service)(nil)
var _ http.AuditLog = (*audit.Service)(nil)
var _ backup.Auditor = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.BackupSchedule = (*scheduler.BackupScheduler)(nil)
