package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/deepread/internal/database/documents"
	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/events"
	"github.com/mrlokans/deepread/internal/exporters"
	"github.com/mrlokans/deepread/internal/highlights"
	"github.com/mrlokans/deepread/internal/reading"
	"github.com/mrlokans/deepread/internal/utils"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// DocumentsController serves document registration, reading and search.
type DocumentsController struct {
	docs       DocumentStore
	highlights HighlightService
	progress   ProgressStore
	chapters   ChapterStore
	drafts     DraftStore
	notes      NotesCollector
	auditor    Auditor
	publisher  events.Publisher
	perPage    int
}

func NewDocumentsController(cfg RouterConfig) *DocumentsController {
	publisher := cfg.Events
	if publisher == nil {
		publisher = events.Discard{}
	}
	perPage := cfg.ParagraphsPerPage
	if perPage <= 0 {
		perPage = 20
	}
	return &DocumentsController{
		docs:       cfg.Documents,
		highlights: cfg.Highlights,
		progress:   cfg.Progress,
		chapters:   cfg.Chapters,
		drafts:     cfg.Drafts,
		notes:      cfg.Notes,
		auditor:    cfg.Auditor,
		publisher:  publisher,
		perPage:    perPage,
	}
}

type CreateDocumentRequest struct {
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Paragraphs []string `json:"paragraphs"`
}

// DocumentSummary is a document in listings, with its page count.
type DocumentSummary struct {
	entities.Document
	Pages int `json:"pages"`
}

// List handles GET /api/documents
func (dc *DocumentsController) List(c *gin.Context) {
	docs, err := dc.docs.List()
	if err != nil {
		respondInternalError(c, err, "list documents")
		return
	}
	out := make([]DocumentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentSummary{Document: d, Pages: reading.PageCount(d.ParagraphCount, dc.perPage)})
	}
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

// Create handles POST /api/documents
func (dc *DocumentsController) Create(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondBadRequest(c, "title is required")
		return
	}
	if len(req.Paragraphs) == 0 {
		respondBadRequest(c, "at least one paragraph is required")
		return
	}

	doc := &entities.Document{Title: req.Title, Author: strings.TrimSpace(req.Author)}
	for _, text := range req.Paragraphs {
		doc.Paragraphs = append(doc.Paragraphs, entities.Paragraph{Text: text})
	}
	if err := dc.docs.Create(doc); err != nil {
		respondInternalError(c, err, "create document")
		return
	}

	if dc.auditor != nil {
		dc.auditor.LogImport(doc.ID, doc.Title, doc.ParagraphCount)
	}
	dc.publisher.Publish(events.Event{Type: events.DocumentAdded, DocumentID: doc.ID})

	doc.Paragraphs = nil
	respondCreated(c, doc)
}

// Get handles GET /api/documents/:id
func (dc *DocumentsController) Get(c *gin.Context) {
	doc, err := dc.docs.Get(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "get document", nil)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Delete handles DELETE /api/documents/:id
// Highlights, notes, progress and chapters of the document go with it.
func (dc *DocumentsController) Delete(c *gin.Context) {
	id := c.Param("id")
	doc, err := dc.docs.Header(id)
	if err != nil {
		respondServiceError(c, err, "delete document", nil)
		return
	}
	if err := dc.docs.Delete(id); err != nil {
		respondServiceError(c, err, "delete document", nil)
		return
	}

	ctx := c.Request.Context()
	if err := dc.highlights.PurgeDocument(ctx, id); err != nil {
		log.Warn().Err(err).Str("document_id", id).Msg("Failed to purge highlights of deleted document")
	}
	if dc.progress != nil {
		if err := dc.progress.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("document_id", id).Msg("Failed to delete reading progress")
		}
	}
	if dc.chapters != nil {
		if _, err := dc.chapters.ReplaceAll(ctx, id, nil); err != nil {
			log.Warn().Err(err).Str("document_id", id).Msg("Failed to delete chapters")
		}
	}
	if dc.drafts != nil {
		if err := dc.drafts.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("document_id", id).Msg("Failed to delete notebook draft")
		}
	}

	if dc.auditor != nil {
		dc.auditor.LogDelete("document", id, doc.Title)
	}
	dc.publisher.Publish(events.Event{Type: events.DocumentDeleted, DocumentID: id})
	respondSuccess(c, "document deleted")
}

// Search handles GET /api/documents/:id/search?q=
func (dc *DocumentsController) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		respondBadRequest(c, "q is required")
		return
	}
	limit := queryInt(c, "limit", defaultSearchLimit, maxSearchLimit)

	results, err := dc.docs.Search(c.Param("id"), q, limit)
	if err != nil {
		respondInternalError(c, err, "search document")
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "results": results})
}

// PageResponse is one rendered page of a document.
type PageResponse struct {
	DocumentID string                         `json:"document_id"`
	Page       reading.Page                   `json:"page"`
	TotalPages int                            `json:"total_pages"`
	Percent    float64                        `json:"percent"`
	Paragraphs []highlights.RenderedParagraph `json:"paragraphs"`
	Chapter    *entities.Chapter              `json:"chapter,omitempty"`
}

// Page handles GET /api/documents/:id/pages/:page
func (dc *DocumentsController) Page(c *gin.Context) {
	number, ok := parseIntParam(c, "page")
	if !ok {
		return
	}
	id := c.Param("id")
	doc, err := dc.docs.Header(id)
	if err != nil {
		respondServiceError(c, err, "get page", nil)
		return
	}

	page, ok := reading.PageAt(doc.ParagraphCount, dc.perPage, number)
	if !ok {
		respondNotFound(c, "page")
		return
	}
	paragraphs, err := dc.docs.ParagraphRange(id, page.From, page.To)
	if err != nil {
		respondInternalError(c, err, "get page")
		return
	}

	ctx := c.Request.Context()
	total := reading.PageCount(doc.ParagraphCount, dc.perPage)
	resp := PageResponse{
		DocumentID: id,
		Page:       page,
		TotalPages: total,
		Percent:    reading.PercentForPage(page.Number, total),
		Paragraphs: dc.highlights.RenderParagraphs(ctx, id, paragraphs),
	}
	if dc.chapters != nil {
		if ch, found := reading.ChapterAt(dc.chapters.List(ctx, id), page.From); found {
			resp.Chapter = &ch
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ParagraphRuns handles GET /api/documents/:id/paragraphs/:index/runs
func (dc *DocumentsController) ParagraphRuns(c *gin.Context) {
	index, ok := parseIntParam(c, "index")
	if !ok {
		return
	}
	runs, err := dc.highlights.RenderParagraph(c.Request.Context(), c.Param("id"), index)
	if errors.Is(err, documents.ErrNotFound) {
		respondNotFound(c, "paragraph")
		return
	}
	if err != nil {
		respondInternalError(c, err, "render paragraph")
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": index, "runs": runs})
}

// Markdown handles GET /api/documents/:id/markdown
func (dc *DocumentsController) Markdown(c *gin.Context) {
	if dc.notes == nil {
		respondError(c, http.StatusServiceUnavailable, "markdown export not configured")
		return
	}
	item, err := dc.notes.Collect(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "markdown export", nil)
		return
	}

	filename := utils.MarkdownFilename(item.Document.Title)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(exporters.GenerateMarkdown(item)))
}
