// Package sheets 负责画布条目与外部表格（Google Sheet）之间的同步。
//
// 同步器只依赖四个表格动词（建表/按键写行/按键删行/读全部行），
// 具体远端服务通过 TabularClient 注入，测试时可替换为内存实现。
package sheets

import (
	"context"

	"pitchcanvas/internal/model"
)

// TabularClient 外部表格服务的抽象
//
// 所有按行操作以行键（条目 ID）定位，不依赖行号，
// 以容忍远端表格被人工编辑导致的行移动。
type TabularClient interface {
	// CreateSpreadsheet 创建新表格并写入表头，返回表格 ID
	CreateSpreadsheet(ctx context.Context, title string) (string, error)

	// UpsertRow 按行键写入或更新一行（按 ID 键的幂等 upsert）
	UpsertRow(ctx context.Context, spreadsheetID string, row model.SheetRow) error

	// DeleteRow 按行键删除一行；行不存在时返回 nil（幂等）
	DeleteRow(ctx context.Context, spreadsheetID, rowKey string) error

	// ListRows 读取当前全部数据行（跳过表头与空行）
	ListRows(ctx context.Context, spreadsheetID string) ([]model.SheetRow, error)
}

// ConnectClient 账户连接状态与 OAuth 发起
type ConnectClient interface {
	// ConnectedAccountCount 已连接账户数量
	ConnectedAccountCount(ctx context.Context) (int, error)

	// InitiateConnection 发起 OAuth 连接，返回跳转地址
	InitiateConnection(ctx context.Context, redirectURL string) (string, error)
}

// TargetStore 同步目标关联的持久化（workspace → spreadsheet）
// 由外部存储实现，这里只需要 get/set 语义
type TargetStore interface {
	// GetSyncTarget 查询关联记录；不存在时返回 (nil, nil)
	GetSyncTarget(workspaceID string) (*model.SyncTarget, error)

	// SaveSyncTarget 保存关联记录
	SaveSyncTarget(target model.SyncTarget) error
}
