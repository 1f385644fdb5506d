package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pitchcanvas/internal/service/excel"
)

// ExportSnapshot 导出画布快照为 Excel 文件
// GET /api/export
func (h *Handler) ExportSnapshot(c *gin.Context) {
	items := h.canvas.ListItems()

	f, err := h.exporter.Export(items, h.canvas.Meta())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to write workbook: %v", err)})
		return
	}

	filename := excel.ExportFileName(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
