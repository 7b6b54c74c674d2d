package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/deepread/internal/entities"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditController serves the audit trail.
type AuditController struct {
	log AuditLog
}

func NewAuditController(log AuditLog) *AuditController {
	return &AuditController{log: log}
}

// ListEvents handles GET /api/audit?type=&limit=&offset=
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit := queryInt(c, "limit", defaultAuditLimit, maxAuditLimit)
	offset := queryInt(c, "offset", 0, 1<<31-1)

	events, total, err := ac.log.GetEvents(entities.AuditEventType(c.Query("type")), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events": nonNil(events),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// DocumentHistory handles GET /api/documents/:id/history
func (ac *AuditController) DocumentHistory(c *gin.Context) {
	events, err := ac.log.EventsForDocument(c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "document history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": nonNil(events)})
}
