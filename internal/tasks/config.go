package tasks

import "time"

// Config holds configuration for the task queue system.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 2
	Workers int

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration

	// BackupDir is where export_backup writes archives.
	BackupDir string

	// BackupRetain is how many archives export_backup keeps. Default: 7
	BackupRetain int

	// MarkdownDir is where export_markdown writes notes.
	MarkdownDir string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: 1 * time.Hour,
		BackupDir:       "./backups",
		BackupRetain:    7,
		MarkdownDir:     "./exports",
	}
}
