package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"pitchcanvas/internal/model"
)

// 同步状态
const (
	SyncStatusFull    = "full"    // 全部成功
	SyncStatusPartial = "partial" // 部分成功
)

// RowFailure 单行失败明细
type RowFailure struct {
	ItemID string `json:"itemId"`
	Reason string `json:"reason"`
}

// SyncReport 全量同步结果
type SyncReport struct {
	Created  int          `json:"created"`
	Updated  int          `json:"updated"`
	Deleted  int          `json:"deleted"`
	Skipped  int          `json:"skipped"`
	Status   string       `json:"status"`
	Failures []RowFailure `json:"failures,omitempty"`
}

// SyncResult 单条同步结果
type SyncResult struct {
	ItemID string `json:"itemId"`
	Action string `json:"action"` // created / updated / skipped
}

// RowCache 上次已知的远端行状态（条目 ID → 行）
// 作为 SyncAll/SyncOne 的显式输入输出传递，不做进程级隐藏状态；
// 传 nil 表示不信任本地缓存，强制重读远端
type RowCache map[string]model.SheetRow

// Options 同步器配置
type Options struct {
	WorkspaceID  string
	DefaultTitle string
	MaxAttempts  int           // 单次行操作的最大尝试次数（含首次）
	BackoffBase  time.Duration // 首次重试前的等待时间，之后翻倍
	Logger       *log.Logger
}

// Syncer 表格同步器
// 调用方保证单写者：同一 workspace 的同步调用顺序执行
type Syncer struct {
	client  TabularClient
	targets TargetStore

	workspaceID  string
	defaultTitle string
	maxAttempts  int
	backoffBase  time.Duration
	logger       *log.Logger

	// 测试注入点
	sleep func(time.Duration)
	now   func() time.Time
}

// NewSyncer 创建同步器
func NewSyncer(client TabularClient, targets TargetStore, opts Options) *Syncer {
	if opts.WorkspaceID == "" {
		opts.WorkspaceID = "default"
	}
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = "Pitch Canvas Data"
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 200 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "[sheets] ", log.LstdFlags)
	}

	return &Syncer{
		client:       client,
		targets:      targets,
		workspaceID:  opts.WorkspaceID,
		defaultTitle: opts.DefaultTitle,
		maxAttempts:  opts.MaxAttempts,
		backoffBase:  opts.BackoffBase,
		logger:       opts.Logger,
		sleep:        time.Sleep,
		now:          time.Now,
	}
}

// EnsureTarget 返回已有同步目标；没有则创建新表格并记录关联
// 幂等：关联已存在时直接返回，不会重复建表
func (s *Syncer) EnsureTarget(ctx context.Context, preferredTitle string) (*model.SyncTarget, error) {
	existing, err := s.targets.GetSyncTarget(s.workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync target: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	return s.createTarget(ctx, preferredTitle)
}

// RecreateTarget 强制新建表格并覆盖关联（“另起一张表”）
// 旧表不删除，只是不再被同步
func (s *Syncer) RecreateTarget(ctx context.Context, preferredTitle string) (*model.SyncTarget, error) {
	return s.createTarget(ctx, preferredTitle)
}

func (s *Syncer) createTarget(ctx context.Context, preferredTitle string) (*model.SyncTarget, error) {
	title := preferredTitle
	if title == "" {
		title = s.defaultTitle
	}

	var spreadsheetID string
	err := s.withRetry(ctx, "create spreadsheet", func() error {
		var createErr error
		spreadsheetID, createErr = s.client.CreateSpreadsheet(ctx, title)
		return createErr
	})
	if err != nil {
		// 建表失败是致命错误，不留下半成品关联
		return nil, err
	}

	target := model.SyncTarget{
		WorkspaceID:   s.workspaceID,
		SpreadsheetID: spreadsheetID,
		Title:         title,
	}
	if err := s.targets.SaveSyncTarget(target); err != nil {
		return nil, fmt.Errorf("failed to save sync target: %w", err)
	}

	s.logger.Printf("created sync target %s (%s)", spreadsheetID, title)
	return &target, nil
}

// TargetURL 返回当前同步目标的访问链接
func (s *Syncer) TargetURL() (string, error) {
	target, err := s.targets.GetSyncTarget(s.workspaceID)
	if err != nil {
		return "", fmt.Errorf("failed to load sync target: %w", err)
	}
	if target == nil {
		return "", ErrNoTarget
	}
	return "https://docs.google.com/spreadsheets/d/" + target.SpreadsheetID, nil
}

// SyncAll 全量同步：对每个条目计算投影行并与远端状态对比，
// 只写有差异的行，删除集合中已不存在的远端行
//
// cache 为上次调用返回的远端状态；传 nil 时重读远端。
// 单行失败不中断整个批次，失败明细记入报告。
func (s *Syncer) SyncAll(ctx context.Context, items []*model.Item, cache RowCache) (*SyncReport, RowCache, error) {
	target, err := s.targets.GetSyncTarget(s.workspaceID)
	if err != nil {
		return nil, cache, fmt.Errorf("failed to load sync target: %w", err)
	}
	if target == nil {
		return nil, cache, ErrNoTarget
	}

	conflicts := map[string]string{}
	if cache == nil {
		cache, conflicts, err = s.readRemote(ctx, target.SpreadsheetID)
		if err != nil {
			return nil, nil, err
		}
	}

	report := &SyncReport{}
	next := make(RowCache, len(items))
	present := make(map[string]bool, len(items))
	now := s.now()

	for _, item := range items {
		present[item.ID] = true

		row, err := ProjectItem(item, now)
		if err != nil {
			// 非法条目只剔除本行，不中断批次
			report.Failures = append(report.Failures, RowFailure{ItemID: item.ID, Reason: err.Error()})
			if old, ok := cache[item.ID]; ok {
				next[item.ID] = old
			}
			continue
		}

		if reason, ok := conflicts[item.ID]; ok {
			conflict := &RowConflictError{RowKey: item.ID, Reason: reason}
			report.Failures = append(report.Failures, RowFailure{ItemID: item.ID, Reason: conflict.Error()})
			if old, ok := cache[item.ID]; ok {
				next[item.ID] = old
			}
			continue
		}

		old, known := cache[item.ID]
		if known && old.Equal(row) {
			report.Skipped++
			next[item.ID] = old
			continue
		}

		err = s.withRetry(ctx, "upsert row "+item.ID, func() error {
			return s.client.UpsertRow(ctx, target.SpreadsheetID, row)
		})
		if err != nil {
			report.Failures = append(report.Failures, RowFailure{ItemID: item.ID, Reason: err.Error()})
			if known {
				next[item.ID] = old
			}
			continue
		}

		if known {
			report.Updated++
		} else {
			report.Created++
		}
		next[item.ID] = row
	}

	// 删除推断：只有全量快照里确认缺失的条目才删除对应行
	for id, old := range cache {
		if present[id] {
			continue
		}
		if reason, ok := conflicts[id]; ok {
			conflict := &RowConflictError{RowKey: id, Reason: reason}
			report.Failures = append(report.Failures, RowFailure{ItemID: id, Reason: conflict.Error()})
			next[id] = old
			continue
		}
		err := s.withRetry(ctx, "delete row "+id, func() error {
			return s.client.DeleteRow(ctx, target.SpreadsheetID, id)
		})
		if err != nil {
			report.Failures = append(report.Failures, RowFailure{ItemID: id, Reason: err.Error()})
			next[id] = old
			continue
		}
		report.Deleted++
	}

	if len(report.Failures) > 0 {
		report.Status = SyncStatusPartial
	} else {
		report.Status = SyncStatusFull
	}

	s.logger.Printf("sync complete: created=%d updated=%d deleted=%d skipped=%d failed=%d",
		report.Created, report.Updated, report.Deleted, report.Skipped, len(report.Failures))

	return report, next, nil
}

// SyncOne 单条同步：只对给定条目做投影与差异写入
// 不做删除推断——单条调用无法确认集合中其他条目是否仍存在
func (s *Syncer) SyncOne(ctx context.Context, item *model.Item, cache RowCache) (*SyncResult, RowCache, error) {
	target, err := s.targets.GetSyncTarget(s.workspaceID)
	if err != nil {
		return nil, cache, fmt.Errorf("failed to load sync target: %w", err)
	}
	if target == nil {
		return nil, cache, ErrNoTarget
	}

	conflicts := map[string]string{}
	if cache == nil {
		cache, conflicts, err = s.readRemote(ctx, target.SpreadsheetID)
		if err != nil {
			return nil, nil, err
		}
	}

	row, err := ProjectItem(item, s.now())
	if err != nil {
		return nil, cache, err
	}

	if reason, ok := conflicts[item.ID]; ok {
		return nil, cache, &RowConflictError{RowKey: item.ID, Reason: reason}
	}

	old, known := cache[item.ID]
	if known && old.Equal(row) {
		return &SyncResult{ItemID: item.ID, Action: "skipped"}, cache, nil
	}

	err = s.withRetry(ctx, "upsert row "+item.ID, func() error {
		return s.client.UpsertRow(ctx, target.SpreadsheetID, row)
	})
	if err != nil {
		return nil, cache, err
	}

	next := make(RowCache, len(cache)+1)
	for id, cached := range cache {
		next[id] = cached
	}
	next[item.ID] = row

	action := "created"
	if known {
		action = "updated"
	}
	return &SyncResult{ItemID: item.ID, Action: action}, next, nil
}

// readRemote 重读远端行，按 ID 列重建行身份
// 识别被手工改坏的行：ID 为空、ID 重复、兜底列不是合法 JSON
func (s *Syncer) readRemote(ctx context.Context, spreadsheetID string) (RowCache, map[string]string, error) {
	var rows []model.SheetRow
	err := s.withRetry(ctx, "list rows", func() error {
		var listErr error
		rows, listErr = s.client.ListRows(ctx, spreadsheetID)
		return listErr
	})
	if err != nil {
		return nil, nil, err
	}

	cache := make(RowCache, len(rows))
	conflicts := map[string]string{}
	for _, row := range rows {
		if row.ID == "" {
			s.logger.Printf("WARNING: remote row without id column, ignoring")
			continue
		}
		if _, dup := cache[row.ID]; dup {
			conflicts[row.ID] = "duplicate remote rows for this id"
			continue
		}
		if row.RawData != "" && !json.Valid([]byte(row.RawData)) {
			conflicts[row.ID] = "raw data column is not valid JSON"
		}
		cache[row.ID] = row
	}
	return cache, conflicts, nil
}

// withRetry 有限次数退避重试；认证失败与永久拒绝不重试
func (s *Syncer) withRetry(ctx context.Context, op string, fn func() error) error {
	delay := s.backoffBase
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !Retryable(err) || attempt == s.maxAttempts {
			break
		}

		wait := delay
		var rl *RateLimitError
		if errors.As(err, &rl) && rl.RetryAfter > 0 {
			wait = rl.RetryAfter
		}
		s.logger.Printf("WARNING: %s failed (attempt %d/%d), retrying in %s: %v",
			op, attempt, s.maxAttempts, wait, err)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.sleep(wait)
		delay *= 2
	}

	return fmt.Errorf("%s: %w", op, err)
}
