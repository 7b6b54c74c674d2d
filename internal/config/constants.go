package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./deepread.db"

	// DefaultBackupDir is where scheduled and task backups are written
	DefaultBackupDir = "./backups"

	// DefaultMarkdownDir is where markdown exports are written
	DefaultMarkdownDir = "./exports"
)

type StorageBackend string

const (
	StorageSQLite   StorageBackend = "sqlite"
	StorageRedis    StorageBackend = "redis"
	StoragePostgres StorageBackend = "postgres"
)
