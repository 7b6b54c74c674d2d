package entrypoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/deepread/internal/audit"
	"github.com/mrlokans/deepread/internal/backup"
	"github.com/mrlokans/deepread/internal/config"
	"github.com/mrlokans/deepread/internal/database"
	auditrepo "github.com/mrlokans/deepread/internal/database/audit"
	"github.com/mrlokans/deepread/internal/database/documents"
	dbkv "github.com/mrlokans/deepread/internal/database/kv"
	"github.com/mrlokans/deepread/internal/events"
	"github.com/mrlokans/deepread/internal/exporters"
	"github.com/mrlokans/deepread/internal/highlights"
	http_controllers "github.com/mrlokans/deepread/internal/http"
	"github.com/mrlokans/deepread/internal/kv"
	pgkv "github.com/mrlokans/deepread/internal/kv/postgres"
	rediskv "github.com/mrlokans/deepread/internal/kv/redis"
	"github.com/mrlokans/deepread/internal/reading"
)

// App holds the services shared by the server and the CLI commands.
type App struct {
	Config     *config.Config
	DB         *database.Database
	Store      kv.Store
	Documents  *documents.Repository
	Bus        *events.Bus
	Highlights *highlights.Service
	Progress   *reading.ProgressStore
	Chapters   *reading.ChapterStore
	Drafts     *reading.DraftStore
	Audit      *audit.Service
	Backup     *backup.Service
	Library    *exporters.LibraryExporter

	closers []func() error
}

// NewApp opens the database and the configured record store and builds
// every service on top of them.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app := &App{Config: cfg, DB: db, closers: []func() error{db.Close}}

	store, closeStore, err := OpenStore(ctx, cfg, db)
	if err != nil {
		app.Close()
		return nil, err
	}
	if closeStore != nil {
		app.closers = append(app.closers, closeStore)
	}

	app.Store = store
	app.Documents = documents.NewRepository(db.DB)
	app.Bus = events.NewBus()
	app.Audit = audit.NewService(auditrepo.NewRepository(db.DB))
	app.Highlights = highlights.NewService(store, app.Documents, highlights.WithPublisher(app.Bus))
	app.Progress = reading.NewProgressStore(store, app.Bus)
	app.Chapters = reading.NewChapterStore(store, app.Bus)
	app.Drafts = reading.NewDraftStore(store, app.Bus)
	app.Backup = backup.NewService(store, app.Documents, app.Bus, app.Audit)
	app.Library = exporters.NewLibraryExporter(app.Documents, store)

	app.Bus.Subscribe(app.Highlights.HandleEvent)
	return app, nil
}

// OpenStore connects the record store selected by cfg. The returned close
// function is nil when the store shares the main database.
func OpenStore(ctx context.Context, cfg *config.Config, db *database.Database) (kv.Store, func() error, error) {
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		s, err := rediskv.Open(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info().Str("addr", cfg.Storage.RedisAddr).Msg("Using redis record store")
		return s, s.Close, nil
	case config.StoragePostgres:
		s, err := pgkv.Open(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Info().Msg("Using postgres record store")
		return s, s.Close, nil
	case config.StorageSQLite, "":
		return dbkv.NewRepository(db.DB), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// HealthChecks reports the database and the record store.
func (a *App) HealthChecks() map[string]http_controllers.HealthCheck {
	return map[string]http_controllers.HealthCheck{
		"database": func(context.Context) error { return a.DB.Ping() },
		"store":    func(ctx context.Context) error { return kv.Ping(ctx, a.Store) },
	}
}

// WriteBackup writes an archive into the backup directory and prunes old
// ones down to the configured retention.
func (a *App) WriteBackup(ctx context.Context) (string, error) {
	dir := a.Config.Backup.Dir
	path, err := a.Backup.WriteFile(ctx, dir)
	if err != nil {
		return "", err
	}
	if removed, err := backup.Prune(dir, a.Config.Backup.Retain); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Failed to prune old backups")
	} else if removed > 0 {
		log.Info().Int("removed", removed).Msg("Pruned old backups")
	}
	return path, nil
}

// Close releases the record store and the database, in reverse order of
// opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
