package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized  bool           `json:"initialized"`  // 画布是否有条目
	TotalItems   int            `json:"totalItems"`   // 条目总数
	ItemsByType  map[string]int `json:"itemsByType"`  // 按类型统计
	HasTarget    bool           `json:"hasTarget"`    // 是否已建立同步目标
	SheetURL     string         `json:"sheetUrl"`     // 同步目标链接（有目标时）
	LastSyncTime string         `json:"lastSyncTime"` // 最近一次同步完成时间
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	total := h.canvas.Count()

	byType := make(map[string]int)
	for t, n := range h.canvas.CountByType() {
		byType[string(t)] = n
	}

	url, err := h.syncer.TargetURL()
	hasTarget := err == nil

	lastSync := ""
	if t, err := h.db.LastSyncTime(h.workspaceID); err == nil && !t.IsZero() {
		lastSync = t.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:  total > 0,
		TotalItems:   total,
		ItemsByType:  byType,
		HasTarget:    hasTarget,
		SheetURL:     url,
		LastSyncTime: lastSync,
	})
}
