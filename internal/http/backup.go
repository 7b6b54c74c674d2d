package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/deepread/internal/backup"
)

// maxArchiveBytes caps uploaded archives.
const maxArchiveBytes = 64 << 20

type BackupController struct {
	service BackupService
}

func NewBackupController(service BackupService) *BackupController {
	return &BackupController{service: service}
}

// Export handles GET /api/backup
func (bc *BackupController) Export(c *gin.Context) {
	archive, err := bc.service.Export(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "export backup")
		return
	}
	filename := fmt.Sprintf("deepread-backup-%s.json", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, archive)
}

// Import handles POST /api/backup?strategy=lww|replace
func (bc *BackupController) Import(c *gin.Context) {
	strategy, err := backup.ParseStrategy(c.Query("strategy"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	archive, err := backup.Decode(http.MaxBytesReader(c.Writer, c.Request.Body, maxArchiveBytes))
	if err != nil {
		respondServiceError(c, err, "decode backup", nil)
		return
	}

	summary, err := bc.service.Import(c.Request.Context(), archive, strategy)
	if err != nil {
		respondServiceError(c, err, "import backup", nil)
		return
	}
	c.JSON(http.StatusOK, summary)
}
