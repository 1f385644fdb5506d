package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pitchcanvas/internal/service/sheets"
	"pitchcanvas/internal/store"
)

type syncSheetsResponse struct {
	Report *sheets.SyncReport `json:"report"`
	URL    string             `json:"url"`
}

type createSheetRequest struct {
	Title string `json:"title"`
}

// SyncSheets 全量同步画布到表格；目标不存在时懒创建
// POST /api/sheets/sync
func (h *Handler) SyncSheets(c *gin.Context) {
	ctx := c.Request.Context()

	if _, err := h.syncer.EnsureTarget(ctx, ""); err != nil {
		writeSyncError(c, err)
		return
	}

	report, err := h.runFullSync(ctx)
	if err != nil {
		writeSyncError(c, err)
		return
	}

	url, _ := h.syncer.TargetURL()
	c.JSON(http.StatusOK, syncSheetsResponse{
		Report: report,
		URL:    url,
	})
}

// CreateSheet 新建表格并覆盖关联，然后同步当前画布
// POST /api/sheets
func (h *Handler) CreateSheet(c *gin.Context) {
	var req createSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	target, err := h.syncer.RecreateTarget(ctx, req.Title)
	if err != nil {
		writeSyncError(c, err)
		return
	}

	// 新表是空的，丢弃旧缓存
	h.resetCache()

	report, err := h.runFullSync(ctx)
	if err != nil {
		writeSyncError(c, err)
		return
	}

	url, _ := h.syncer.TargetURL()
	c.JSON(http.StatusCreated, gin.H{
		"spreadsheetId": target.SpreadsheetID,
		"title":         target.Title,
		"url":           url,
		"report":        report,
	})
}

// GetSheetURL 获取当前表格链接
// GET /api/sheets/url
func (h *Handler) GetSheetURL(c *gin.Context) {
	url, err := h.syncer.TargetURL()
	if err != nil {
		if errors.Is(err, sheets.ErrNoTarget) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// GetSyncHistory 获取最近的同步日志
// GET /api/sheets/history
func (h *Handler) GetSyncHistory(c *gin.Context) {
	entries, err := h.db.ListSyncLogs(h.workspaceID, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []store.SyncLogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// ConnectGoogleSheets 发起 Composio OAuth 流程
// GET /api/composio/connect/googlesheets
func (h *Handler) ConnectGoogleSheets(c *gin.Context) {
	ctx := c.Request.Context()

	// 已连接则短路
	count, err := h.connect.ConnectedAccountCount(ctx)
	if err == nil && count > 0 {
		c.JSON(http.StatusOK, gin.H{"alreadyConnected": true})
		return
	}

	redirect, err := h.connect.InitiateConnection(ctx, h.redirectURL)
	if err != nil {
		var authErr *sheets.AuthError
		if errors.As(err, &authErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirectUrl": redirect})
}

// GoogleSheetsStatus 查询 Google Sheets 连接状态
// GET /api/composio/status/googlesheets
func (h *Handler) GoogleSheetsStatus(c *gin.Context) {
	count, err := h.connect.ConnectedAccountCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"connected": count > 0,
		"count":     count,
	})
}
