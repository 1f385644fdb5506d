package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type updateCanvasRequest struct {
	GlobalTitle       *string `json:"globalTitle"`
	GlobalDescription *string `json:"globalDescription"`
}

// GetCanvas 获取画布全局状态
// GET /api/canvas
func (h *Handler) GetCanvas(c *gin.Context) {
	c.JSON(http.StatusOK, h.canvas.Meta())
}

// UpdateCanvas 更新画布全局标题/描述
// PATCH /api/canvas
func (h *Handler) UpdateCanvas(c *gin.Context) {
	var req updateCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.GlobalTitle != nil {
		h.canvas.SetGlobalTitle(*req.GlobalTitle)
	}
	if req.GlobalDescription != nil {
		h.canvas.SetGlobalDescription(*req.GlobalDescription)
	}

	c.JSON(http.StatusOK, h.canvas.Meta())
}
