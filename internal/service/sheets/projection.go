package sheets

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pitchcanvas/internal/model"
)

// fieldSlots Field1..Field4 四个固定槽位
// 每种条目类型有固定的槽位含义，未使用的槽位保持空串，不挪作他用
type fieldSlots [4]string

// projector 单一类型的投影函数
type projector func(data map[string]any) fieldSlots

// projectors 类型分发表
// 槽位约定：
//   - project: field1 文本 / field2 单选 / field3 日期 / field4 清单（逐行 ✓/○）
//   - entity:  field1 文本 / field2 单选 / field3 标签（逗号连接）/ field4 空
//   - note:    field1 正文，其余为空
//   - chart:   field1 指标（逐行 label: value），其余为空
var projectors = map[model.ItemType]projector{
	model.ItemTypeProject: projectProject,
	model.ItemTypeEntity:  projectEntity,
	model.ItemTypeNote:    projectNote,
	model.ItemTypeChart:   projectChart,
}

// ProjectItem 将条目投影为表格行
// Field1..Field4 按类型填充展示值，Raw Data 列保存完整 payload JSON，
// 保证固定宽度投影不丢失信息
func ProjectItem(item *model.Item, now time.Time) (model.SheetRow, error) {
	for _, e := range item.Validate() {
		if e.Severity == "error" {
			return model.SheetRow{}, fmt.Errorf("invalid item: %s", e.Message)
		}
	}

	project := projectors[item.Type]
	slots := project(item.Data)

	return model.SheetRow{
		ID:        item.ID,
		Type:      string(item.Type),
		Name:      item.Name,
		Subtitle:  item.Subtitle,
		Field1:    slots[0],
		Field2:    slots[1],
		Field3:    slots[2],
		Field4:    slots[3],
		UpdatedAt: now.UTC().Format(time.RFC3339),
		RawData:   item.RawData(),
	}, nil
}

func projectProject(data map[string]any) fieldSlots {
	return fieldSlots{
		scalarValue(data["field1"]),
		scalarValue(data["field2"]),
		scalarValue(data["field3"]),
		checklistLines(data["field4"]),
	}
}

func projectEntity(data map[string]any) fieldSlots {
	// field3_options 是可选标签池，属于 UI 选项而非状态，不投影
	return fieldSlots{
		scalarValue(data["field1"]),
		scalarValue(data["field2"]),
		joinedList(data["field3"]),
		"",
	}
}

func projectNote(data map[string]any) fieldSlots {
	return fieldSlots{scalarValue(data["field1"]), "", "", ""}
}

func projectChart(data map[string]any) fieldSlots {
	return fieldSlots{metricLines(data["field1"]), "", "", ""}
}

// scalarValue 标量展示值；列表退化为逗号连接，对象退化为 JSON
func scalarValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case []any:
		return joinedList(val)
	case map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// joinedList 简单列表（标签）按 ", " 连接
func joinedList(v any) string {
	list, ok := v.([]any)
	if !ok {
		return scalarValue(v)
	}
	parts := make([]string, 0, len(list))
	for _, entry := range list {
		parts = append(parts, scalarValue(entry))
	}
	return strings.Join(parts, ", ")
}

// checklistLines 清单项逐行展示：已完成 ✓，未完成 ○
func checklistLines(v any) string {
	list, ok := v.([]any)
	if !ok {
		return scalarValue(v)
	}
	lines := make([]string, 0, len(list))
	for _, entry := range list {
		item, ok := entry.(map[string]any)
		if !ok {
			lines = append(lines, scalarValue(entry))
			continue
		}
		mark := "○"
		if done, _ := item["done"].(bool); done {
			mark = "✓"
		}
		text := scalarValue(item["text"])
		lines = append(lines, mark+" "+text)
	}
	return strings.Join(lines, "\n")
}

// metricLines 图表指标逐行展示："label: value"，未填值显示 "-"
func metricLines(v any) string {
	list, ok := v.([]any)
	if !ok {
		return scalarValue(v)
	}
	lines := make([]string, 0, len(list))
	for _, entry := range list {
		item, ok := entry.(map[string]any)
		if !ok {
			lines = append(lines, scalarValue(entry))
			continue
		}
		label := scalarValue(item["label"])
		value := scalarValue(item["value"])
		if value == "" {
			value = "-"
		}
		lines = append(lines, label+": "+value)
	}
	return strings.Join(lines, "\n")
}
