package model

import "testing"

func TestValidate(t *testing.T) {
	cases := []struct {
		name        string
		item        Item
		wantFatal   bool
		wantWarning bool
	}{
		{"valid", Item{ID: "it_1", Type: ItemTypeNote, Name: "n"}, false, false},
		{"empty id", Item{Type: ItemTypeNote, Name: "n"}, true, false},
		{"unknown type", Item{ID: "it_1", Type: "widget", Name: "n"}, true, false},
		{"empty name", Item{ID: "it_1", Type: ItemTypeProject}, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.item.HasFatalError(); got != tc.wantFatal {
				t.Errorf("HasFatalError = %v, want %v", got, tc.wantFatal)
			}
			hasWarning := false
			for _, e := range tc.item.Validate() {
				if e.Severity == "warning" {
					hasWarning = true
				}
			}
			if hasWarning != tc.wantWarning {
				t.Errorf("warning = %v, want %v", hasWarning, tc.wantWarning)
			}
		})
	}
}

func TestRawData(t *testing.T) {
	item := Item{ID: "it_1", Type: ItemTypeNote}
	if got := item.RawData(); got != "{}" {
		t.Errorf("nil payload raw data = %q, want {}", got)
	}

	item.Data = map[string]any{"field1": "x"}
	if got := item.RawData(); got != `{"field1":"x"}` {
		t.Errorf("raw data = %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	item := &Item{
		ID:   "it_1",
		Type: ItemTypeProject,
		Name: "original",
		Data: map[string]any{"field4": []any{map[string]any{"text": "a", "done": false}}},
	}

	cp := item.Clone()
	cp.Name = "changed"
	entry := cp.Data["field4"].([]any)[0].(map[string]any)
	entry["done"] = true

	if item.Name != "original" {
		t.Error("clone shares name")
	}
	orig := item.Data["field4"].([]any)[0].(map[string]any)
	if orig["done"] != false {
		t.Error("clone shares nested payload")
	}
}

func TestDefaultData(t *testing.T) {
	for _, typ := range []ItemType{ItemTypeProject, ItemTypeEntity, ItemTypeNote, ItemTypeChart} {
		data := DefaultData(typ)
		if _, ok := data["field1"]; !ok {
			t.Errorf("%s default data missing field1", typ)
		}
	}
	if _, ok := DefaultData(ItemTypeEntity)["field3_options"]; !ok {
		t.Error("entity default data missing field3_options")
	}
}

func TestSheetRowRoundTrip(t *testing.T) {
	row := SheetRow{
		ID: "it_1", Type: "note", Name: "n", Subtitle: "s",
		Field1: "a", UpdatedAt: "2026-03-01T00:00:00Z", RawData: "{}",
	}
	back := SheetRowFromValues(row.Values())
	if back != row {
		t.Errorf("round trip mismatch: %+v vs %+v", back, row)
	}
}

func TestSheetRowFromValuesShort(t *testing.T) {
	row := SheetRowFromValues([]string{"it_1", "note"})
	if row.ID != "it_1" || row.Type != "note" || row.RawData != "" {
		t.Errorf("short row = %+v", row)
	}
}

func TestSheetRowEqualIgnoresTimestamp(t *testing.T) {
	a := SheetRow{ID: "it_1", Name: "n", UpdatedAt: "2026-01-01T00:00:00Z"}
	b := a
	b.UpdatedAt = "2026-02-02T00:00:00Z"
	if !a.Equal(b) {
		t.Error("timestamp-only difference reported as change")
	}

	b.Name = "other"
	if a.Equal(b) {
		t.Error("content difference not detected")
	}
}
