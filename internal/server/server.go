package server

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	v1 "pitchcanvas/internal/api/v1"
	"pitchcanvas/internal/config"
	"pitchcanvas/internal/service/excel"
	"pitchcanvas/internal/service/sheets"
	canvasstore "pitchcanvas/internal/service/store"
	"pitchcanvas/internal/store"
)

// Server HTTP 服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	canvas *canvasstore.MemoryStore
	v1     *v1.Handler
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) *Server {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store（同步目标关联 + 同步日志）
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "pitchcanvas.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 画布内存存储
	canvas := canvasstore.NewMemoryStore()

	// Composio 客户端与同步器
	composio := sheets.NewComposioClient(sheets.ComposioConfig{
		BaseURL:      cfg.Composio.BaseURL,
		APIKey:       cfg.Composio.APIKey,
		UserID:       cfg.Composio.UserID,
		AuthConfigID: cfg.Composio.AuthConfigID,
		SheetTab:     cfg.Sheet.Tab,
	})
	syncer := sheets.NewSyncer(composio, sqliteStore, sheets.Options{
		WorkspaceID:  cfg.Sheet.WorkspaceID,
		DefaultTitle: cfg.Sheet.Title,
	})

	// 创建 V1 API 处理器
	v1Handler := v1.NewHandler(canvas, syncer, sqliteStore,
		excel.NewExporter(), composio,
		cfg.Sheet.WorkspaceID, cfg.Composio.PostConnectRedirect)

	s := &Server{
		router: gin.Default(),
		store:  sqliteStore,
		canvas: canvas,
		v1:     v1Handler,
	}

	s.setupRoutes(devMode)

	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	// CORS：前端为独立的 Next.js 应用
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// V1 API 路由
	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	if devMode {
		// 开发模式：非 API 请求代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:3000"+c.Request.URL.Path)
		})
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 释放资源
func (s *Server) Close() error {
	return s.store.Close()
}

// GetCanvas 获取画布存储（用于测试）
func (s *Server) GetCanvas() *canvasstore.MemoryStore {
	return s.canvas
}
