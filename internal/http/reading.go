package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/reading"
)

// ReadingController serves reading progress, chapter marks and the
// notebook draft.
type ReadingController struct {
	progress ProgressStore
	chapters ChapterStore
	drafts   DraftStore
}

func NewReadingController(progress ProgressStore, chapters ChapterStore, drafts DraftStore) *ReadingController {
	return &ReadingController{progress: progress, chapters: chapters, drafts: drafts}
}

// SaveProgressRequest sets progress either directly in percent or from a
// page position.
type SaveProgressRequest struct {
	Percent    *float64 `json:"percent"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
}

type SaveDraftRequest struct {
	Text string `json:"text"`
}

type ReplaceChaptersRequest struct {
	Chapters []entities.Chapter `json:"chapters"`
}

// GetProgress handles GET /api/documents/:id/progress
func (rc *ReadingController) GetProgress(c *gin.Context) {
	c.JSON(http.StatusOK, rc.progress.Get(c.Request.Context(), c.Param("id")))
}

// SaveProgress handles PUT /api/documents/:id/progress
func (rc *ReadingController) SaveProgress(c *gin.Context) {
	var req SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	var percent float64
	switch {
	case req.Percent != nil:
		percent = *req.Percent
	case req.Page > 0 && req.TotalPages > 0:
		percent = reading.PercentForPage(req.Page, req.TotalPages)
	default:
		respondBadRequest(c, "percent or page and total_pages are required")
		return
	}

	progress, err := rc.progress.Save(c.Request.Context(), c.Param("id"), percent)
	if err != nil {
		respondInternalError(c, err, "save progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

// GetChapters handles GET /api/documents/:id/chapters
func (rc *ReadingController) GetChapters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chapters": nonNil(rc.chapters.List(c.Request.Context(), c.Param("id")))})
}

// ReplaceChapters handles PUT /api/documents/:id/chapters
func (rc *ReadingController) ReplaceChapters(c *gin.Context) {
	var req ReplaceChaptersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	for _, ch := range req.Chapters {
		if ch.StartParagraphIndex < 0 {
			respondBadRequest(c, "start_paragraph_index must not be negative")
			return
		}
	}

	chapters, err := rc.chapters.ReplaceAll(c.Request.Context(), c.Param("id"), req.Chapters)
	if err != nil {
		respondInternalError(c, err, "replace chapters")
		return
	}
	c.JSON(http.StatusOK, gin.H{"chapters": nonNil(chapters)})
}

// GetDraft handles GET /api/documents/:id/draft
func (rc *ReadingController) GetDraft(c *gin.Context) {
	c.JSON(http.StatusOK, rc.drafts.Get(c.Request.Context(), c.Param("id")))
}

// SaveDraft handles PUT /api/documents/:id/draft
func (rc *ReadingController) SaveDraft(c *gin.Context) {
	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	draft, err := rc.drafts.Save(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		respondInternalError(c, err, "save draft")
		return
	}
	c.JSON(http.StatusOK, draft)
}
