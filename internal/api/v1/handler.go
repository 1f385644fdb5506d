package v1

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"pitchcanvas/internal/service/excel"
	"pitchcanvas/internal/service/sheets"
	canvasstore "pitchcanvas/internal/service/store"
	"pitchcanvas/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	canvas      *canvasstore.MemoryStore
	syncer      *sheets.Syncer
	db          *store.Store
	exporter    *excel.Exporter
	connect     sheets.ConnectClient
	workspaceID string
	redirectURL string

	// 行缓存：上次同步后的远端状态，随每次同步滚动更新
	// 同步调用由 mu 串行化（单写者）
	mu    sync.Mutex
	cache sheets.RowCache
}

// NewHandler 创建 V1 API 处理器
func NewHandler(canvas *canvasstore.MemoryStore, syncer *sheets.Syncer, db *store.Store,
	exporter *excel.Exporter, connect sheets.ConnectClient, workspaceID, redirectURL string) *Handler {
	h := &Handler{
		canvas:      canvas,
		syncer:      syncer,
		db:          db,
		exporter:    exporter,
		connect:     connect,
		workspaceID: workspaceID,
		redirectURL: redirectURL,
	}

	// 画布变更触发自动同步：增改走单条同步，删除走全量
	// （删除只能通过全量快照推断，单条调用不做删除）
	canvas.Subscribe(h.onCanvasChange)

	return h
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 画布全局状态
	router.GET("/canvas", h.GetCanvas)
	router.PATCH("/canvas", h.UpdateCanvas)

	// 画布条目
	router.GET("/items", h.ListItems)
	router.POST("/items", h.CreateItem)
	router.GET("/items/:id", h.GetItem)
	router.PATCH("/items/:id", h.UpdateItem)
	router.DELETE("/items/:id", h.DeleteItem)

	// 表格同步
	router.POST("/sheets/sync", h.SyncSheets)
	router.POST("/sheets", h.CreateSheet)
	router.GET("/sheets/url", h.GetSheetURL)
	router.GET("/sheets/history", h.GetSyncHistory)

	// 快照导出
	router.GET("/export", h.ExportSnapshot)

	// Composio 连接
	router.GET("/composio/connect/googlesheets", h.ConnectGoogleSheets)
	router.GET("/composio/status/googlesheets", h.GoogleSheetsStatus)
}

// onCanvasChange 画布变更事件回调
// 尚未建立同步目标时静默跳过（目标在首次手动同步时懒创建）
func (h *Handler) onCanvasChange(ev canvasstore.ChangeEvent) {
	ctx := context.Background()

	if ev.Kind == canvasstore.ChangeDeleted {
		if _, err := h.runFullSync(ctx); err != nil && !errors.Is(err, sheets.ErrNoTarget) {
			log.Printf("auto-sync after delete failed: %v", err)
		}
		return
	}

	item, err := h.canvas.GetItem(ev.ItemID)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, next, err := h.syncer.SyncOne(ctx, item, h.cache)
	if err != nil {
		if !errors.Is(err, sheets.ErrNoTarget) {
			log.Printf("auto-sync of item %s failed: %v", ev.ItemID, err)
		}
		return
	}
	h.cache = next
}

// runFullSync 执行全量同步并记录同步日志
func (h *Handler) runFullSync(ctx context.Context) (*sheets.SyncReport, error) {
	items := h.canvas.ListItems()

	h.mu.Lock()
	defer h.mu.Unlock()

	logID, logErr := h.db.CreateSyncLog(h.workspaceID)
	if logErr != nil {
		log.Printf("failed to create sync log: %v", logErr)
	}

	report, next, err := h.syncer.SyncAll(ctx, items, h.cache)
	if err != nil {
		if logErr == nil {
			_ = h.db.FinishSyncLog(logID, 0, 0, 0, 0, 0, "failed", err.Error())
		}
		return nil, err
	}

	h.cache = next
	if logErr == nil {
		_ = h.db.FinishSyncLog(logID,
			report.Created, report.Updated, report.Deleted, report.Skipped,
			len(report.Failures), report.Status, "")
	}
	return report, nil
}

// resetCache 同步目标变化后丢弃行缓存
func (h *Handler) resetCache() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cache = nil
}

// writeSyncError 按错误类型映射 HTTP 状态码
func writeSyncError(c *gin.Context, err error) {
	var authErr *sheets.AuthError
	switch {
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": err.Error(),
			"hint":  "connect your Google account via /api/composio/connect/googlesheets",
		})
	case errors.Is(err, sheets.ErrNoTarget):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		var rateErr *sheets.RateLimitError
		if errors.As(err, &rateErr) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
