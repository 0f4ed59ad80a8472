package catalog

import (
	"context"
	"strings"

	"decorprice/internal"
	"decorprice/internal/pricing"
)

// Index is an in-memory catalog built from imported records. It serves
// one-off rankings without a snapshot or API.
type Index struct {
	ByID       map[int]internal.RawRecord
	ByCategory map[string][]int

	normalizer *pricing.Normalizer
}

func BuildIndex(records []internal.RawRecord, normalizer *pricing.Normalizer) *Index {
	if normalizer == nil {
		normalizer = pricing.NewNormalizer(pricing.DefaultAliases())
	}
	idx := &Index{
		ByID:       map[int]internal.RawRecord{},
		ByCategory: map[string][]int{},
		normalizer: normalizer,
	}

	for _, raw := range records {
		id, ok := normalizer.ID(raw)
		if !ok {
			continue
		}
		category, _ := normalizer.Category(raw)
		key := categoryKey(category)
		if prev, seen := idx.ByID[id]; seen {
			prevCategory, _ := normalizer.Category(prev)
			if prevKey := categoryKey(prevCategory); prevKey != key {
				idx.removeFromCategory(prevKey, id)
				idx.ByCategory[key] = append(idx.ByCategory[key], id)
			}
		} else {
			idx.ByCategory[key] = append(idx.ByCategory[key], id)
		}
		idx.ByID[id] = raw
	}

	return idx
}

func (idx *Index) FetchRawByID(_ context.Context, id int) (internal.RawRecord, error) {
	return idx.ByID[id], nil
}

func (idx *Index) FetchRawByCategory(_ context.Context, category string, onlyAvailable bool) ([]internal.RawRecord, error) {
	var ids []int
	if category == "" {
		for _, group := range idx.ByCategory {
			ids = append(ids, group...)
		}
	} else {
		ids = idx.ByCategory[categoryKey(category)]
	}

	out := make([]internal.RawRecord, 0, len(ids))
	for _, id := range ids {
		raw := idx.ByID[id]
		if onlyAvailable && !idx.normalizer.Normalize(raw).Available {
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}

func (idx *Index) removeFromCategory(key string, id int) {
	ids := idx.ByCategory[key]
	for i, v := range ids {
		if v == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(idx.ByCategory, key)
		return
	}
	idx.ByCategory[key] = ids
}

func categoryKey(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
