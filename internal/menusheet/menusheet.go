// Package menusheet exports menu items to an XLSX workbook and imports them
// back, so operators can edit large menus in a spreadsheet.
package menusheet

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
)

// SheetName 菜单工作表名称
const SheetName = "Menu"

// Header 导入/导出表头，导入时按名称匹配（忽略大小写），列顺序可变
var Header = []string{"Category", "Name", "Description", "Price", "Image URL"}

var columnWidths = []float64{20, 30, 60, 12, 50}

// Export 生成菜单 Excel 文件。分类按配置顺序输出，未归类条目排在最后。
func Export(cfg *domain.Configuration) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	row := 2
	for _, it := range orderedItems(cfg) {
		img := ""
		if it.Image != nil {
			img = it.Image.Source
		}
		values := []any{it.Category, it.Name, it.Description, string(it.Price), img}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
		row++
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func orderedItems(cfg *domain.Configuration) []domain.MenuItem {
	if cfg == nil {
		return nil
	}
	rank := make(map[string]int, len(cfg.Categories))
	for i, c := range cfg.Categories {
		rank[strings.ToLower(c)] = i
	}
	var known, other []domain.MenuItem
	buckets := make([][]domain.MenuItem, len(cfg.Categories))
	for _, it := range cfg.MenuItems {
		if i, ok := rank[strings.ToLower(strings.TrimSpace(it.Category))]; ok {
			buckets[i] = append(buckets[i], it)
			continue
		}
		other = append(other, it)
	}
	for _, b := range buckets {
		known = append(known, b...)
	}
	return append(known, other...)
}

// RowError 导入时某一行的问题（Row 为 Excel 行号，从 1 开始）
type RowError struct {
	Row    int
	Detail string
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %s", e.Row, e.Detail) }

// ImportResult 导入结果
type ImportResult struct {
	Items      []domain.MenuItem
	Categories domain.Categories
	Skipped    []RowError
}

// Import 读取第一个工作表。空行跳过；有内容但缺少名称的行记录在 Skipped 中。
func Import(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "Name")
	}
	get := func(row []string, name string) string {
		i, ok := cols[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	res := &ImportResult{}
	var categories []string
	for n, row := range rows[1:] {
		lineNo := n + 2
		item := domain.MenuItem{
			Category:    get(row, "Category"),
			Name:        get(row, "Name"),
			Description: get(row, "Description"),
			Price:       domain.Price(get(row, "Price")),
		}
		if src := get(row, "Image URL"); src != "" {
			item.Image = &domain.Image{Source: src}
		}
		if item.Name == "" {
			if item.Category != "" || item.Description != "" || item.Price != "" || item.Image != nil {
				res.Skipped = append(res.Skipped, RowError{Row: lineNo, Detail: "name is required"})
			}
			continue
		}
		res.Items = append(res.Items, item)
		categories = append(categories, item.Category)
	}
	res.Categories = domain.NewCategories(categories...)
	return res, nil
}
