// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help contributors find
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// ## Record Stores
//
//   - kv.Store: Get/Set of opaque values by key (internal/kv/kv.go)
//   - kv.Pinger: Health check for stores backed by a server (internal/kv/kv.go)
//
// Highlights, annotations, notes, progress and chapters are JSON lists kept in a
// kv.Store through kv.List. Documents and their paragraphs always live in the
// sqlite database (internal/database/documents).
//
// ## Service Interfaces Consumed by HTTP
//
//   - DocumentStore, HighlightService, ProgressStore, ChapterStore, DraftStore (internal/http/stores.go)
//   - BackupService, NotesCollector, Auditor, TaskQueue (internal/http/stores.go)
//
// ## Task Dependencies
//
//   - BackupWriter, PruneFunc: scheduled archives (internal/tasks/export_backup.go)
//   - MarkdownWriter: markdown export (internal/tasks/export_markdown.go)
//   - Reconciler, DocumentLister: orphan repair (internal/tasks/prune_annotations.go)
//   - AuditEventCleaner: audit retention (internal/tasks/cleanup_audit.go)
//
// ## Highlight Engine
//
//   - highlights.ParagraphSource: paragraph text for selections (internal/highlights/selection.go)
//   - spans.IDGenerator: ids for split fragments (internal/spans/ids.go)
//   - events.Publisher: change notifications (internal/events/bus.go)
//
// # Adding a New Record Store
//
// To keep reader state somewhere else (e.g., etcd):
//
//  1. Create a package under internal/kv/
//
//     type Store struct { client *clientv3.Client }
//
//     func (s *Store) Get(ctx context.Context, key string) ([]byte, error)
//     func (s *Store) Set(ctx context.Context, key string, value []byte) error
//     func (s *Store) Ping(ctx context.Context) error
//
//     Get must return kv.ErrNotFound for keys that were never set.
//
//  2. Add a StorageBackend constant in internal/config/constants.go
//
//  3. Open it in entrypoint.OpenStore
//
// # Adding a New Background Task
//
//  1. Define the task and its processor in internal/tasks/
//
//     type ReindexTask struct{ DocumentID string }
//
//     func (t ReindexTask) Config() backlite.QueueConfig
//
//  2. Add a queue name, a TaskType entry and a NewTask case in queues.go
//
//  3. Register the queue in RegisterAll
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
