package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"pitchcanvas/internal/model"
	"pitchcanvas/internal/service/sheets"
)

// Exporter 画布快照 Excel 导出器
// 列布局与 Google Sheet 投影一致，作为离线副本
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export 导出画布条目到 Excel
func (e *Exporter) Export(items []*model.Item, meta model.CanvasMeta) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "Canvas Items"
	f.SetSheetName("Sheet1", sheetName)

	// 表头
	for i, h := range model.SheetColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	// 表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	f.SetRowStyle(sheetName, 1, 1, headerStyle)

	// 写入数据：复用表格同步的投影逻辑
	now := time.Now()
	rowNum := 2
	for _, item := range items {
		row, err := sheets.ProjectItem(item, now)
		if err != nil {
			// 非法条目跳过，与同步批次的剔除语义一致
			continue
		}
		for j, value := range row.Values() {
			cell, _ := excelize.CoordinatesToCellName(j+1, rowNum)
			f.SetCellValue(sheetName, cell, value)
		}
		rowNum++
	}

	// 画布概要表
	overviewSheet := "Overview"
	f.NewSheet(overviewSheet)

	overviewData := [][]interface{}{
		{"Global Title", meta.GlobalTitle},
		{"Global Description", meta.GlobalDescription},
		{"Items", len(items)},
		{"Exported At", now.UTC().Format(time.RFC3339)},
	}
	for i, rowData := range overviewData {
		for j, val := range rowData {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue(overviewSheet, cell, val)
		}
	}

	return f, nil
}

// ExportFileName 导出文件名（带时间戳）
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("canvas_%s.xlsx", now.Format("20060102_150405"))
}
