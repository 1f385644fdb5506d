package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pitchcanvas/internal/model"
	canvasstore "pitchcanvas/internal/service/store"
)

type createItemRequest struct {
	Type string `json:"type" binding:"required"`
	Name string `json:"name"`
}

type updateItemRequest struct {
	Type     *string        `json:"type"`
	Name     *string        `json:"name"`
	Subtitle *string        `json:"subtitle"`
	Data     map[string]any `json:"data"`
}

type listItemsResponse struct {
	Items []*model.Item `json:"items"`
	Total int           `json:"total"`
}

// ListItems 查询画布条目列表（按创建顺序）
// GET /api/items
func (h *Handler) ListItems(c *gin.Context) {
	items := h.canvas.ListItems()
	c.JSON(http.StatusOK, listItemsResponse{
		Items: items,
		Total: len(items),
	})
}

// GetItem 获取条目详情
// GET /api/items/:id
func (h *Handler) GetItem(c *gin.Context) {
	item, err := h.canvas.GetItem(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem 创建条目
// POST /api/items
func (h *Handler) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.canvas.CreateItem(model.ItemType(req.Type), req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem 更新条目；类型不可变更
// PATCH /api/items/:id
func (h *Handler) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")

	// 类型字段创建后不可修改
	if req.Type != nil {
		existing, err := h.canvas.GetItem(id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if *req.Type != string(existing.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "item type is immutable"})
			return
		}
	}

	item, err := h.canvas.UpdateItem(id, canvasstore.ItemPatch{
		Name:     req.Name,
		Subtitle: req.Subtitle,
		Data:     req.Data,
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem 删除条目
// DELETE /api/items/:id
func (h *Handler) DeleteItem(c *gin.Context) {
	if err := h.canvas.DeleteItem(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
