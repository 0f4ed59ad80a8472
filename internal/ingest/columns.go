package ingest

import (
	"strings"

	"decorprice/internal"
	"decorprice/internal/util"
)

// headerAliases maps folded sheet headers onto the canonical raw keys the
// pricing normalizer knows. Hebrew headers come from the operators' own
// price sheets.
var headerAliases = map[string][]string{
	"DecorId":     {"decorid", "id", "itemid", "מזהה", "מספרקישוט"},
	"DecorName":   {"decorname", "name", "title", "item", "שם", "שםקישוט"},
	"Category":    {"category", "type", "קטגוריה"},
	"PriceSmall":  {"pricesmall", "small", "smallprice", "pricesm", "מחירקטן", "קטן"},
	"PriceMedium": {"pricemedium", "medium", "mediumprice", "pricemd", "מחירבינוני", "בינוני"},
	"PriceLarge":  {"pricelarge", "large", "largeprice", "pricelg", "מחירגדול", "גדול"},
	"MinPrice":    {"minprice", "min", "pricemin", "מחירמינימום"},
	"MidPrice":    {"midprice", "mid", "price", "pricemid", "מחיר"},
	"Available":   {"available", "isavailable", "instock", "זמין", "זמינות"},
	"Region":      {"region", "area", "אזור"},
	"PhotoUrl":    {"photourl", "photo", "image", "imageurl", "תמונה"},
	"Theme":       {"theme", "style", "נושא"},
}

var headerIndex = func() map[string]string {
	idx := map[string]string{}
	for canonical, aliases := range headerAliases {
		for _, a := range aliases {
			idx[a] = canonical
		}
	}
	return idx
}()

func canonicalKey(header string) (string, bool) {
	key, ok := headerIndex[util.NormalizeKey(header)]
	return key, ok
}

// columnKeys returns the raw key for every header cell: the canonical key
// when recognized, the trimmed header otherwise. ok is false unless at least
// two cells were recognized, which is what marks a header row.
func columnKeys(cells []string) ([]string, bool) {
	keys := make([]string, len(cells))
	recognized := 0
	used := map[string]struct{}{}
	for i, c := range cells {
		if key, ok := canonicalKey(c); ok {
			if _, dup := used[key]; !dup {
				keys[i] = key
				used[key] = struct{}{}
				recognized++
				continue
			}
		}
		keys[i] = strings.TrimSpace(c)
	}
	return keys, recognized >= 2
}

const headerSearchRows = 5

// recordsFromTable turns a grid of cells into raw records. The first row
// among the leading few that looks like a header defines the columns; rows
// before it are ignored. Blank cells are left out of the record.
func recordsFromTable(rows [][]string) []internal.RawRecord {
	var keys []string
	start := -1
	for i, row := range rows {
		if i >= headerSearchRows {
			break
		}
		if k, ok := columnKeys(normalizeCells(row)); ok {
			keys, start = k, i
			break
		}
	}
	if start < 0 {
		return nil
	}

	out := make([]internal.RawRecord, 0, len(rows)-start-1)
	for _, row := range rows[start+1:] {
		cells := normalizeCells(row)
		rec := internal.RawRecord{}
		for i, cell := range cells {
			if cell == "" || i >= len(keys) || keys[i] == "" {
				continue
			}
			rec[keys[i]] = cell
		}
		if len(rec) == 0 {
			continue
		}
		out = append(out, rec)
	}
	return out
}
