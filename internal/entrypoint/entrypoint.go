package entrypoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/deepread/internal/backup"
	"github.com/mrlokans/deepread/internal/config"
	"github.com/mrlokans/deepread/internal/events"
	http_controllers "github.com/mrlokans/deepread/internal/http"
	"github.com/mrlokans/deepread/internal/scheduler"
	"github.com/mrlokans/deepread/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until ctx is cancelled or the listener fails.
func Serve(ctx context.Context, router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", timeout).Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("Server exiting")
	return nil
}

// Run wires every service and serves HTTP until SIGINT or SIGTERM.
func Run(cfg *config.Config, version string) error {
	log.Info().Str("version", version).Str("storage", string(cfg.Storage.Backend)).Msg("Starting deepread")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing storage")
		}
	}()

	hub := events.NewHub()
	app.Bus.Subscribe(hub.Forward)
	hubCtx, cancelHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	var taskClient *tasks.Client
	var cancelTasks context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = newTaskClient(app)
		if err != nil {
			cancelHub()
			return err
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing task client")
			}
		}()

		var taskCtx context.Context
		taskCtx, cancelTasks = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
		enqueueAuditCleanup(taskClient, cfg.Audit.RetentionDays)
	}

	var backupScheduler *scheduler.BackupScheduler
	if cfg.Backup.Enabled {
		if err := scheduler.ValidateSchedule(cfg.Backup.Schedule); err != nil {
			log.Error().Err(err).Str("schedule", cfg.Backup.Schedule).Msg("Invalid backup schedule, scheduled backups disabled")
		} else {
			backupScheduler = scheduler.NewBackupScheduler(cfg.Backup.Schedule, backupJob(app, taskClient))
			if err := backupScheduler.Start(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to start backup scheduler")
				backupScheduler = nil
			} else {
				log.Info().Str("schedule", scheduler.Describe(cfg.Backup.Schedule)).Msg("Scheduled backups enabled")
			}
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Documents:         app.Documents,
		Highlights:        app.Highlights,
		Progress:          app.Progress,
		Chapters:          app.Chapters,
		Drafts:            app.Drafts,
		Backup:            app.Backup,
		Notes:             app.Library,
		Auditor:           app.Audit,
		AuditLog:          app.Audit,
		Events:            app.Bus,
		HealthChecks:      app.HealthChecks(),
		EventStream:       hub.ServeWS,
		ParagraphsPerPage: cfg.Reader.ParagraphsPerPage,
		Version:           version,
	}
	if taskClient != nil {
		routerCfg.Tasks = taskClient
	}
	if backupScheduler != nil {
		routerCfg.BackupSchedule = backupScheduler
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimitRPS = cfg.RateLimit.RPS
		routerCfg.RateLimitBurst = cfg.RateLimit.Burst
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if backupScheduler != nil {
			backupScheduler.Stop()
		}
		if taskClient != nil && cancelTasks != nil {
			taskClient.Stop(ctx)
			cancelTasks()
		}
		cancelHub()
	}

	return Serve(ctx, router, cfg, onShutdown)
}

func newTaskClient(app *App) (*tasks.Client, error) {
	cfg := app.Config
	taskCfg := tasks.DefaultConfig()
	taskCfg.Workers = cfg.Tasks.Workers
	taskCfg.ReleaseAfter = cfg.Tasks.ReleaseAfter
	taskCfg.CleanupInterval = cfg.Tasks.CleanupInterval
	taskCfg.BackupDir = cfg.Backup.Dir
	taskCfg.BackupRetain = cfg.Backup.Retain
	taskCfg.MarkdownDir = cfg.Export.MarkdownDir

	client, err := tasks.NewClient(cfg.Database.Path, taskCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task queue: %w", err)
	}

	tasks.RegisterAll(client, tasks.Dependencies{
		Backup:     app.Backup,
		Prune:      backup.Prune,
		Markdown:   app.Library,
		Reconciler: app.Highlights,
		Documents:  app.Documents,
		Audit:      app.Audit,
	})
	return client, nil
}

func enqueueAuditCleanup(client *tasks.Client, retentionDays int) {
	params, err := json.Marshal(tasks.CleanupAuditEventsTask{RetentionDays: retentionDays})
	if err != nil {
		return
	}
	if _, err := client.Enqueue(tasks.QueueCleanupAuditEvents, params); err != nil {
		log.Warn().Err(err).Msg("Failed to enqueue audit cleanup")
	}
}

// backupJob enqueues an export when the task queue runs, and writes the
// archive inline otherwise.
func backupJob(app *App, queue *tasks.Client) scheduler.Job {
	return func(ctx context.Context) error {
		if queue != nil {
			id, err := queue.Enqueue(tasks.QueueExportBackup, nil)
			if err != nil {
				return err
			}
			log.Info().Str("task_id", id).Msg("Scheduled backup enqueued")
			return nil
		}
		path, err := app.WriteBackup(ctx)
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Scheduled backup written")
		return nil
	}
}
