// Package database provides the gorm/sqlite data access layer.
//
// # Architecture
//
//	database/
//	├── database.go   # Connection setup and migrations
//	├── documents/    # Imported documents, paragraphs and content search
//	├── kv/           # kv.Store over the kv_entries table
//	└── audit/        # Audit trail of backup, restore and delete events
//
// Each sub-package provides a Repository with a NewRepository(db *gorm.DB)
// constructor:
//
//	db, err := database.NewDatabase("./deepread.db")
//	docs := documents.NewRepository(db.DB)
//	store := kv.NewRepository(db.DB)
//
// Highlight, annotation and note lists are not relational; they are JSON
// values in kv_entries so that any kv.Store backend can hold them.
package database
