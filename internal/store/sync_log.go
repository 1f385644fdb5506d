package store

import (
	"fmt"
	"time"
)

// SyncLogEntry 一次全量同步的日志记录
type SyncLogEntry struct {
	ID           int64      `json:"id"`
	WorkspaceID  string     `json:"workspaceId"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CreatedRows  int        `json:"createdRows"`
	UpdatedRows  int        `json:"updatedRows"`
	DeletedRows  int        `json:"deletedRows"`
	SkippedRows  int        `json:"skippedRows"`
	FailedRows   int        `json:"failedRows"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}

// CreateSyncLog 创建同步日志，返回 sync_log_id
func (s *Store) CreateSyncLog(workspaceID string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO sync_logs (workspace_id, status)
		VALUES (?, 'processing')
	`, workspaceID)
	if err != nil {
		return 0, fmt.Errorf("failed to create sync log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get sync log id: %w", err)
	}
	return id, nil
}

// FinishSyncLog 完成同步日志更新
func (s *Store) FinishSyncLog(id int64, created, updated, deleted, skipped, failed int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE sync_logs SET
			created_rows = ?,
			updated_rows = ?,
			deleted_rows = ?,
			skipped_rows = ?,
			failed_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, created, updated, deleted, skipped, failed, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update sync log: %w", err)
	}
	return nil
}

// ListSyncLogs 按时间倒序返回最近的同步日志
func (s *Store) ListSyncLogs(workspaceID string, limit int) ([]SyncLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, workspace_id, started_at, completed_at,
			created_rows, updated_rows, deleted_rows, skipped_rows, failed_rows,
			status, error_message
		FROM sync_logs
		WHERE workspace_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync logs: %w", err)
	}
	defer rows.Close()

	var entries []SyncLogEntry
	for rows.Next() {
		var entry SyncLogEntry
		if err := rows.Scan(
			&entry.ID, &entry.WorkspaceID, &entry.StartedAt, &entry.CompletedAt,
			&entry.CreatedRows, &entry.UpdatedRows, &entry.DeletedRows,
			&entry.SkippedRows, &entry.FailedRows,
			&entry.Status, &entry.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// LastSyncTime 最近一次完成同步的时间；没有记录时返回零值
func (s *Store) LastSyncTime(workspaceID string) (time.Time, error) {
	entries, err := s.ListSyncLogs(workspaceID, 1)
	if err != nil {
		return time.Time{}, err
	}
	if len(entries) == 0 || entries[0].CompletedAt == nil {
		return time.Time{}, nil
	}
	return *entries[0].CompletedAt, nil
}
