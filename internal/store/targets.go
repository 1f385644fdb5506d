package store

import (
	"database/sql"
	"errors"
	"fmt"

	"pitchcanvas/internal/model"
)

// GetSyncTarget 查询 workspace 的同步目标关联；不存在时返回 (nil, nil)
func (s *Store) GetSyncTarget(workspaceID string) (*model.SyncTarget, error) {
	var target model.SyncTarget
	err := s.db.QueryRow(`
		SELECT workspace_id, spreadsheet_id, title
		FROM sync_targets
		WHERE workspace_id = ?
	`, workspaceID).Scan(&target.WorkspaceID, &target.SpreadsheetID, &target.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync target: %w", err)
	}
	return &target, nil
}

// SaveSyncTarget 保存同步目标关联（存在则覆盖）
func (s *Store) SaveSyncTarget(target model.SyncTarget) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_targets (workspace_id, spreadsheet_id, title, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(workspace_id) DO UPDATE SET
			spreadsheet_id = excluded.spreadsheet_id,
			title = excluded.title,
			updated_at = CURRENT_TIMESTAMP
	`, target.WorkspaceID, target.SpreadsheetID, target.Title)
	if err != nil {
		return fmt.Errorf("failed to save sync target: %w", err)
	}
	return nil
}
