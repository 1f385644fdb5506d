package model

import "encoding/json"

// ItemType 画布条目类型
type ItemType string

const (
	ItemTypeProject ItemType = "project" // 项目卡片
	ItemTypeEntity  ItemType = "entity"  // 实体卡片
	ItemTypeNote    ItemType = "note"    // 笔记卡片
	ItemTypeChart   ItemType = "chart"   // 图表卡片
)

// ValidItemType 判断类型是否合法
func ValidItemType(t ItemType) bool {
	switch t {
	case ItemTypeProject, ItemTypeEntity, ItemTypeNote, ItemTypeChart:
		return true
	}
	return false
}

// Item 画布条目
// ID 全局唯一且创建后不变；Type 创建后不可修改
type Item struct {
	ID       string         `json:"id"`
	Type     ItemType       `json:"type"`
	Name     string         `json:"name"`
	Subtitle string         `json:"subtitle"`
	Data     map[string]any `json:"data"`
}

// ChecklistItem project.data.field4 的清单项
type ChecklistItem struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Done     bool   `json:"done"`
	Proposed bool   `json:"proposed"`
}

// Metric chart.data.field1 的指标项，Value 为 0..100 的数值或空串
type Metric struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value any    `json:"value"`
}

// ValidationError 校验错误
type ValidationError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // error or warning
}

// Validate 校验条目数据
func (i *Item) Validate() []ValidationError {
	var errs []ValidationError

	if i.ID == "" {
		errs = append(errs, ValidationError{
			Field:    "id",
			Message:  "item id is required",
			Severity: "error",
		})
	}

	if !ValidItemType(i.Type) {
		errs = append(errs, ValidationError{
			Field:    "type",
			Message:  "unknown item type: " + string(i.Type),
			Severity: "error",
		})
	}

	if i.Name == "" {
		errs = append(errs, ValidationError{
			Field:    "name",
			Message:  "item name is empty",
			Severity: "warning",
		})
	}

	return errs
}

// HasFatalError 是否存在 error 级别的校验问题
func (i *Item) HasFatalError() bool {
	for _, e := range i.Validate() {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

// RawData 将 payload 完整序列化为 JSON（兜底列，保证投影无信息丢失）
func (i *Item) RawData() string {
	if i.Data == nil {
		return "{}"
	}
	b, err := json.Marshal(i.Data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Clone 深拷贝条目（payload 经 JSON 往返复制）
func (i *Item) Clone() *Item {
	cp := *i
	if i.Data != nil {
		b, err := json.Marshal(i.Data)
		if err == nil {
			var data map[string]any
			if json.Unmarshal(b, &data) == nil {
				cp.Data = data
			}
		}
	}
	return &cp
}

// DefaultData 返回各类型的初始 payload
// 与前端画布的字段约定保持一致：
//   - project: field1 文本 / field2 单选 / field3 日期 / field4 清单
//   - entity:  field1 文本 / field2 单选 / field3 已选标签 / field3_options 可选标签
//   - note:    field1 正文
//   - chart:   field1 指标数组
func DefaultData(t ItemType) map[string]any {
	switch t {
	case ItemTypeProject:
		return map[string]any{
			"field1": "",
			"field2": "",
			"field3": "",
			"field4": []any{},
		}
	case ItemTypeEntity:
		return map[string]any{
			"field1":         "",
			"field2":         "",
			"field3":         []any{},
			"field3_options": []any{},
		}
	case ItemTypeNote:
		return map[string]any{
			"field1": "",
		}
	case ItemTypeChart:
		return map[string]any{
			"field1": []any{},
		}
	}
	return map[string]any{}
}
