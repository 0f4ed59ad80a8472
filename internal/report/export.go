package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"decorprice/internal"
)

const sheetName = "Prices"

var headers = []string{
	"rank", "id", "name", "category", "region", "theme", "available",
	"price_small", "price_medium", "price_large", "min_price", "mid_price", "focus",
}

// column numbers used by the chart
const (
	colName = 3
	colMid  = 12
)

// ExportRankedToXLSX writes one row per ranked item plus a column chart of
// mid prices by name. The focus item is marked in the last column.
func ExportRankedToXLSX(ranked internal.RankedCatalog, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	focusID, hasFocus := ranked.Focus.IDValue()
	for i, item := range ranked.Items {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheetName, cell, value)
		}

		id, _ := item.IDValue()
		set(1, i+1)
		set(2, derefInt(item.ID))
		set(3, item.Name)
		set(4, item.Category)
		set(5, item.Region)
		set(6, item.Theme)
		set(7, item.Available)
		set(8, derefFloat(item.PriceSmall))
		set(9, derefFloat(item.PriceMedium))
		set(10, derefFloat(item.PriceLarge))
		set(11, derefFloat(item.MinPrice))
		set(12, item.Mid())
		if hasFocus && item.ID != nil && id == focusID {
			set(13, "*")
		}
	}

	if len(ranked.Items) > 0 {
		if err := addMidPriceChart(f, ranked, len(ranked.Items)+1); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func addMidPriceChart(f *excelize.File, ranked internal.RankedCatalog, lastRow int) error {
	nameCol, _ := excelize.ColumnNumberToName(colName)
	midCol, _ := excelize.ColumnNumberToName(colMid)
	anchorCol, _ := excelize.ColumnNumberToName(len(headers) + 2)

	title := "Mid price"
	if ranked.Category != "" {
		title = fmt.Sprintf("Mid price: %s", ranked.Category)
	}

	return f.AddChart(sheetName, anchorCol+"2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$%s$1", sheetName, midCol),
			Categories: fmt.Sprintf("%s!$%s$2:$%s$%d", sheetName, nameCol, nameCol, lastRow),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheetName, midCol, midCol, lastRow),
		}},
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{
			Width:  720,
			Height: 400,
		},
	})
}

var reUnsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// CategoryFileName builds a file-system safe workbook name for a category.
func CategoryFileName(category string) string {
	name := strings.Trim(reUnsafeFileChars.ReplaceAllString(strings.TrimSpace(category), "-"), "-")
	if name == "" {
		name = "uncategorized"
	}
	return "prices-" + name + ".xlsx"
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
