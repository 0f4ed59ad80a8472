package ingest

import (
	"bytes"
	"encoding/json"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-faster/errors"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"decorprice/internal"
	"decorprice/internal/util"
)

var rePDFCellSep = regexp.MustCompile(`\s*[|;\t]\s*|\s{2,}`)

// ParseKind maps a --type flag value onto an import source.
func ParseKind(kind string) (internal.ImportSource, error) {
	switch src := internal.ImportSource(strings.ToLower(strings.TrimSpace(kind))); src {
	case internal.SourceXLSX, internal.SourceHTML, internal.SourcePDF, internal.SourceJSON:
		return src, nil
	}
	return "", errors.Errorf("unsupported input type: %s", kind)
}

// ExtractRecordsFromInput reads a price sheet from disk and returns its rows
// as raw records keyed by canonical field names where the headers allow.
func ExtractRecordsFromInput(kind internal.ImportSource, path string) ([]internal.RawRecord, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []internal.RawRecord
	switch kind {
	case internal.SourceXLSX:
		records, err = ParseXLSX(blob)
	case internal.SourceHTML:
		records, err = ParseHTML(string(blob))
	case internal.SourcePDF:
		records, err = ParsePDF(blob)
	case internal.SourceJSON:
		records, err = ParseJSON(blob)
	default:
		return nil, errors.Errorf("unsupported input type: %s", kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s %s", kind, path)
	}
	return dedupeRecords(records), nil
}

func ParseXLSX(content []byte) ([]internal.RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []internal.RawRecord{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		out = append(out, recordsFromTable(rows)...)
	}
	return out, nil
}

// ParseHTML reads every <table> whose first rows carry a recognizable header.
func ParseHTML(html string) ([]internal.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	out := []internal.RawRecord{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var grid [][]string
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, cell.Text())
			})
			grid = append(grid, cells)
		})
		if len(grid) < 2 {
			return
		}
		out = append(out, recordsFromTable(grid)...)
	})
	return out, nil
}

func ParsePDF(content []byte) ([]internal.RawRecord, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		lines = append(lines, splitLines(text)...)
	}
	return recordsFromLines(lines), nil
}

// recordsFromLines treats each text line as a table row, with cells split on
// pipes, semicolons, tabs or runs of two or more spaces.
func recordsFromLines(lines []string) []internal.RawRecord {
	grid := make([][]string, 0, len(lines))
	for _, line := range lines {
		grid = append(grid, splitPDFLine(line))
	}
	return recordsFromTable(grid)
}

func splitPDFLine(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), "|")
	parts := rePDFCellSep.Split(line, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// ParseJSON accepts an array of objects. Numbers stay json.Number so ids do
// not pass through float64.
func ParseJSON(content []byte) ([]internal.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	var payload []map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "expected a JSON array of objects")
	}
	out := make([]internal.RawRecord, 0, len(payload))
	for _, m := range payload {
		if len(m) == 0 {
			continue
		}
		out = append(out, internal.RawRecord(m))
	}
	return out, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, util.NormalizeSpaces(c))
	}
	return out
}

func dedupeRecords(records []internal.RawRecord) []internal.RawRecord {
	seen := map[string]struct{}{}
	out := make([]internal.RawRecord, 0, len(records))
	for _, rec := range records {
		blob, err := json.Marshal(rec)
		if err != nil {
			out = append(out, rec)
			continue
		}
		key := string(blob)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
