package pricing

import (
	"sort"

	"decorprice/internal"
)

// Rank returns a new slice ordered by (MidPrice, Name) ascending, optionally
// without unavailable items. The input slice is left untouched.
func Rank(items []internal.CatalogItem, onlyAvailable bool) []internal.CatalogItem {
	out := make([]internal.CatalogItem, 0, len(items))
	for _, item := range items {
		if onlyAvailable && !item.Available {
			continue
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Mid(), out[j].Mid()
		if a != b {
			return a < b
		}
		return out[i].Name < out[j].Name
	})
	return out
}
