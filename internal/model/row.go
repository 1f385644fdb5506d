package model

// SheetColumns 外部表格的表头（顺序即列顺序）
var SheetColumns = []string{
	"ID", "Type", "Name", "Subtitle",
	"Field1", "Field2", "Field3", "Field4",
	"Last Updated", "Raw Data",
}

// SheetRow 条目在外部表格中的一行投影
// 行按 ID 列定位，不依赖行号；Field1..Field4 按条目类型
// 填充固定含义的展示值，Raw Data 保存完整 payload JSON
type SheetRow struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Subtitle  string `json:"subtitle"`
	Field1    string `json:"field1"`
	Field2    string `json:"field2"`
	Field3    string `json:"field3"`
	Field4    string `json:"field4"`
	UpdatedAt string `json:"lastUpdated"`
	RawData   string `json:"rawData"`
}

// Values 按表头顺序输出单元格值
func (r SheetRow) Values() []string {
	return []string{
		r.ID, r.Type, r.Name, r.Subtitle,
		r.Field1, r.Field2, r.Field3, r.Field4,
		r.UpdatedAt, r.RawData,
	}
}

// Equal 比较两行是否一致（忽略 Last Updated 列，避免时间戳造成假差异）
func (r SheetRow) Equal(other SheetRow) bool {
	return r.ID == other.ID &&
		r.Type == other.Type &&
		r.Name == other.Name &&
		r.Subtitle == other.Subtitle &&
		r.Field1 == other.Field1 &&
		r.Field2 == other.Field2 &&
		r.Field3 == other.Field3 &&
		r.Field4 == other.Field4 &&
		r.RawData == other.RawData
}

// SheetRowFromValues 从单元格值还原一行（读远端时使用）
// 列数不足时按空串补齐
func SheetRowFromValues(values []string) SheetRow {
	get := func(i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}
	return SheetRow{
		ID:        get(0),
		Type:      get(1),
		Name:      get(2),
		Subtitle:  get(3),
		Field1:    get(4),
		Field2:    get(5),
		Field3:    get(6),
		Field4:    get(7),
		UpdatedAt: get(8),
		RawData:   get(9),
	}
}

// SyncTarget 同步目标：workspace 与外部表格的关联记录
type SyncTarget struct {
	WorkspaceID   string `json:"workspaceId"`
	SpreadsheetID string `json:"spreadsheetId"`
	Title         string `json:"title"`
}
