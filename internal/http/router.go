package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger())
	router.Use(gin.Recovery())

	healthController := NewHealthController(cfg.HealthChecks, cfg.Version)
	router.GET("/health", healthController.Status)

	// Mutating routes share one per-client token bucket.
	mutating := []gin.HandlerFunc{}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		mutating = append(mutating, NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())
	}
	with := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, mutating...), h)
	}

	api := router.Group("/api")

	documentsController := NewDocumentsController(cfg)
	highlightsController := NewHighlightsController(cfg.Highlights)

	api.GET("/documents", documentsController.List)
	api.POST("/documents", with(documentsController.Create)...)

	doc := api.Group("/documents/:id")
	doc.GET("", documentsController.Get)
	doc.DELETE("", with(documentsController.Delete)...)
	doc.GET("/search", documentsController.Search)
	doc.GET("/pages/:page", documentsController.Page)
	doc.GET("/paragraphs/:index/runs", documentsController.ParagraphRuns)
	doc.GET("/markdown", documentsController.Markdown)

	doc.GET("/highlights", highlightsController.Snapshot)
	doc.POST("/highlights", with(highlightsController.Create)...)
	doc.PATCH("/highlights/:hid", with(highlightsController.Recolor)...)
	doc.POST("/highlights/:hid/clear-color", with(highlightsController.ClearColor)...)
	doc.DELETE("/highlights/:hid", with(highlightsController.Delete)...)
	doc.DELETE("/highlights/:hid/note", with(highlightsController.RemoveNote)...)
	doc.GET("/notes", highlightsController.DocumentNotes)
	doc.POST("/notes", with(highlightsController.CreateNote)...)
	doc.PATCH("/annotations/:aid", with(highlightsController.UpdateAnnotation)...)

	api.GET("/notes", highlightsController.ListNotes)

	if cfg.Progress != nil && cfg.Chapters != nil {
		readingController := NewReadingController(cfg.Progress, cfg.Chapters, cfg.Drafts)
		doc.GET("/progress", readingController.GetProgress)
		doc.PUT("/progress", with(readingController.SaveProgress)...)
		doc.GET("/chapters", readingController.GetChapters)
		doc.PUT("/chapters", with(readingController.ReplaceChapters)...)
		if cfg.Drafts != nil {
			doc.GET("/draft", readingController.GetDraft)
			doc.PUT("/draft", with(readingController.SaveDraft)...)
		}
	}

	if cfg.Backup != nil {
		backupController := NewBackupController(cfg.Backup)
		api.GET("/backup", backupController.Export)
		api.POST("/backup", with(backupController.Import)...)
	}

	if cfg.BackupSchedule != nil {
		api.GET("/backup/schedule", func(c *gin.Context) {
			c.JSON(http.StatusOK, cfg.BackupSchedule.Status())
		})
	}

	if cfg.AuditLog != nil {
		auditController := NewAuditController(cfg.AuditLog)
		api.GET("/audit", auditController.ListEvents)
		doc.GET("/history", auditController.DocumentHistory)
	}

	if cfg.Tasks != nil {
		tasksController := NewTasksController(cfg.Tasks)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", with(tasksController.RunTask)...)
	}

	if cfg.EventStream != nil {
		api.GET("/events", gin.WrapF(cfg.EventStream))
	}

	return router
}
