package store

import (
	"path/filepath"
	"testing"

	"pitchcanvas/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSyncTargetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	// 无记录时返回 (nil, nil)
	got, err := s.GetSyncTarget("ws1")
	if err != nil {
		t.Fatalf("GetSyncTarget failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil target, got %+v", got)
	}

	target := model.SyncTarget{WorkspaceID: "ws1", SpreadsheetID: "sheet-1", Title: "Pitch"}
	if err := s.SaveSyncTarget(target); err != nil {
		t.Fatalf("SaveSyncTarget failed: %v", err)
	}

	got, err = s.GetSyncTarget("ws1")
	if err != nil {
		t.Fatalf("GetSyncTarget failed: %v", err)
	}
	if got == nil || *got != target {
		t.Errorf("target = %+v, want %+v", got, target)
	}
}

func TestSaveSyncTargetOverwrites(t *testing.T) {
	s := newTestStore(t)

	s.SaveSyncTarget(model.SyncTarget{WorkspaceID: "ws1", SpreadsheetID: "sheet-1", Title: "Old"})
	if err := s.SaveSyncTarget(model.SyncTarget{WorkspaceID: "ws1", SpreadsheetID: "sheet-2", Title: "New"}); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, _ := s.GetSyncTarget("ws1")
	if got.SpreadsheetID != "sheet-2" || got.Title != "New" {
		t.Errorf("target not replaced: %+v", got)
	}
}

func TestSyncTargetsIsolatedByWorkspace(t *testing.T) {
	s := newTestStore(t)

	s.SaveSyncTarget(model.SyncTarget{WorkspaceID: "ws1", SpreadsheetID: "sheet-1"})
	s.SaveSyncTarget(model.SyncTarget{WorkspaceID: "ws2", SpreadsheetID: "sheet-2"})

	got, _ := s.GetSyncTarget("ws2")
	if got == nil || got.SpreadsheetID != "sheet-2" {
		t.Errorf("ws2 target = %+v", got)
	}
}

func TestSyncLogLifecycle(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateSyncLog("ws1")
	if err != nil {
		t.Fatalf("CreateSyncLog failed: %v", err)
	}

	entries, err := s.ListSyncLogs("ws1", 10)
	if err != nil {
		t.Fatalf("ListSyncLogs failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != "processing" || entries[0].CompletedAt != nil {
		t.Fatalf("fresh log = %+v", entries)
	}

	if err := s.FinishSyncLog(id, 3, 1, 0, 2, 1, "partial", "row it_x failed"); err != nil {
		t.Fatalf("FinishSyncLog failed: %v", err)
	}

	entries, _ = s.ListSyncLogs("ws1", 10)
	entry := entries[0]
	if entry.CreatedRows != 3 || entry.UpdatedRows != 1 || entry.SkippedRows != 2 || entry.FailedRows != 1 {
		t.Errorf("counts = %+v", entry)
	}
	if entry.Status != "partial" || entry.ErrorMessage != "row it_x failed" {
		t.Errorf("status = %q, error = %q", entry.Status, entry.ErrorMessage)
	}
	if entry.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}

func TestListSyncLogsOrderAndLimit(t *testing.T) {
	s := newTestStore(t)

	var ids []int64
	for i := 0; i < 5; i++ {
		id, _ := s.CreateSyncLog("ws1")
		ids = append(ids, id)
	}

	entries, err := s.ListSyncLogs("ws1", 3)
	if err != nil {
		t.Fatalf("ListSyncLogs failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	// 最新的在前
	if entries[0].ID != ids[4] {
		t.Errorf("first entry id = %d, want %d", entries[0].ID, ids[4])
	}
}

func TestLastSyncTime(t *testing.T) {
	s := newTestStore(t)

	got, err := s.LastSyncTime("ws1")
	if err != nil {
		t.Fatalf("LastSyncTime failed: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("no logs should give zero time, got %v", got)
	}

	id, _ := s.CreateSyncLog("ws1")
	// 未完成的同步不算
	got, _ = s.LastSyncTime("ws1")
	if !got.IsZero() {
		t.Errorf("unfinished sync counted: %v", got)
	}

	s.FinishSyncLog(id, 1, 0, 0, 0, 0, "full", "")
	got, _ = s.LastSyncTime("ws1")
	if got.IsZero() {
		t.Error("finished sync time missing")
	}
}
