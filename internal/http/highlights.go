package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/highlights"
)

// HighlightsController exposes the reader's highlight and note actions.
// Every mutation answers with the full snapshot of the document.
type HighlightsController struct {
	service HighlightService
}

func NewHighlightsController(service HighlightService) *HighlightsController {
	return &HighlightsController{service: service}
}

type CreateHighlightRequest struct {
	highlights.Selection
	Color entities.HighlightColor `json:"color"`
}

type CreateNoteRequest struct {
	highlights.Selection
	highlights.NoteLayout
}

type RecolorRequest struct {
	Color entities.HighlightColor `json:"color"`
}

type UpdateAnnotationRequest struct {
	Text *string `json:"text"`
}

// Snapshot handles GET /api/documents/:id/highlights
func (hc *HighlightsController) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, hc.service.Snapshot(c.Request.Context(), c.Param("id")))
}

// Create handles POST /api/documents/:id/highlights
func (hc *HighlightsController) Create(c *gin.Context) {
	var req CreateHighlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	snap, err := hc.service.HighlightSelection(c.Request.Context(), c.Param("id"), req.Selection, req.Color)
	if err != nil {
		respondServiceError(c, err, "create highlight", snap)
		return
	}
	respondCreated(c, snap)
}

// CreateNote handles POST /api/documents/:id/notes
func (hc *HighlightsController) CreateNote(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	snap, annotation, err := hc.service.CreateNoteOverRange(c.Request.Context(), c.Param("id"), req.Selection, req.NoteLayout)
	if err != nil {
		respondServiceError(c, err, "create note", snap)
		return
	}
	respondCreated(c, gin.H{"snapshot": snap, "annotation": annotation})
}

// Recolor handles PATCH /api/documents/:id/highlights/:hid
func (hc *HighlightsController) Recolor(c *gin.Context) {
	var req RecolorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	snap, err := hc.service.RecolorHighlight(c.Request.Context(), c.Param("id"), c.Param("hid"), req.Color)
	hc.respond(c, snap, err, "recolor highlight")
}

// ClearColor handles POST /api/documents/:id/highlights/:hid/clear-color
func (hc *HighlightsController) ClearColor(c *gin.Context) {
	snap, err := hc.service.ClearHighlightColor(c.Request.Context(), c.Param("id"), c.Param("hid"))
	hc.respond(c, snap, err, "clear highlight color")
}

// Delete handles DELETE /api/documents/:id/highlights/:hid
func (hc *HighlightsController) Delete(c *gin.Context) {
	snap, err := hc.service.DeleteHighlight(c.Request.Context(), c.Param("id"), c.Param("hid"))
	hc.respond(c, snap, err, "delete highlight")
}

// RemoveNote handles DELETE /api/documents/:id/highlights/:hid/note
func (hc *HighlightsController) RemoveNote(c *gin.Context) {
	snap, err := hc.service.RemoveNoteFromHighlight(c.Request.Context(), c.Param("id"), c.Param("hid"))
	hc.respond(c, snap, err, "remove note")
}

// UpdateAnnotation handles PATCH /api/documents/:id/annotations/:aid
func (hc *HighlightsController) UpdateAnnotation(c *gin.Context) {
	var req UpdateAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		respondBadRequest(c, "text is required")
		return
	}
	snap, err := hc.service.UpdateAnnotationText(c.Request.Context(), c.Param("id"), c.Param("aid"), *req.Text)
	hc.respond(c, snap, err, "update annotation")
}

// DocumentNotes handles GET /api/documents/:id/notes
func (hc *HighlightsController) DocumentNotes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notes": nonNil(hc.service.ListNotesForDocument(c.Request.Context(), c.Param("id")))})
}

// ListNotes handles GET /api/notes
func (hc *HighlightsController) ListNotes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notes": nonNil(hc.service.ListNotesForUser(c.Request.Context()))})
}

func (hc *HighlightsController) respond(c *gin.Context, snap highlights.Snapshot, err error, context string) {
	if err != nil {
		respondServiceError(c, err, context, snap)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
