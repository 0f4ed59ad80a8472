package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"decorprice/internal"
	"decorprice/internal/util"
)

// Aliases lists, per canonical field, the raw keys accepted for it in
// priority order. Exact matches win over case-insensitive ones.
type Aliases struct {
	ID          []string
	Name        []string
	Category    []string
	PriceSmall  []string
	PriceMedium []string
	PriceLarge  []string
	MinPrice    []string
	MidPrice    []string
	Available   []string
	Region      []string
	PhotoURL    []string
	Theme       []string
}

func DefaultAliases() Aliases {
	return Aliases{
		ID:          []string{"DecorId", "decorId", "decor_id", "id"},
		Name:        []string{"DecorName", "decorName", "decor_name", "Name", "name", "title"},
		Category:    []string{"Category", "category"},
		PriceSmall:  []string{"PriceSmall", "priceSmall", "price_small"},
		PriceMedium: []string{"PriceMedium", "priceMedium", "price_medium"},
		PriceLarge:  []string{"PriceLarge", "priceLarge", "price_large"},
		MinPrice:    []string{"MinPrice", "minPrice", "min_price"},
		MidPrice:    []string{"MidPrice", "midPrice", "mid_price"},
		Available:   []string{"Available", "available", "IsAvailable", "is_available"},
		Region:      []string{"Region", "region"},
		PhotoURL:    []string{"PhotoUrl", "photoUrl", "photo_url", "PhotoURL"},
		Theme:       []string{"Theme", "theme"},
	}
}

func (a Aliases) all() [][]string {
	return [][]string{
		a.ID, a.Name, a.Category,
		a.PriceSmall, a.PriceMedium, a.PriceLarge, a.MinPrice, a.MidPrice,
		a.Available, a.Region, a.PhotoURL, a.Theme,
	}
}

// Normalizer turns heterogeneous raw records into CatalogItems. It holds no
// mutable state and is safe for concurrent use.
type Normalizer struct {
	aliases Aliases
	known   map[string]struct{}
}

func NewNormalizer(aliases Aliases) *Normalizer {
	known := map[string]struct{}{}
	for _, group := range aliases.all() {
		for _, alias := range group {
			known[strings.ToLower(alias)] = struct{}{}
		}
	}
	return &Normalizer{aliases: aliases, known: known}
}

func (n *Normalizer) Aliases() Aliases {
	return n.aliases
}

// Normalize never fails: fields that cannot be coerced are left empty and
// MidPrice is always resolved.
func (n *Normalizer) Normalize(raw internal.RawRecord) internal.CatalogItem {
	keys := sortedKeys(raw)
	item := internal.CatalogItem{Available: true}

	if id, ok := n.id(raw, keys); ok {
		item.ID = util.IntPtr(id)
	}
	if v, ok := lookup(raw, keys, n.aliases.Name); ok {
		item.Name = toString(v)
	}
	if v, ok := lookup(raw, keys, n.aliases.Category); ok {
		item.Category = toString(v)
	}

	item.PriceSmall = n.price(raw, keys, n.aliases.PriceSmall)
	item.PriceMedium = n.price(raw, keys, n.aliases.PriceMedium)
	item.PriceLarge = n.price(raw, keys, n.aliases.PriceLarge)
	item.MinPrice = n.price(raw, keys, n.aliases.MinPrice)
	item.MidPrice = n.price(raw, keys, n.aliases.MidPrice)

	if v, ok := lookup(raw, keys, n.aliases.Available); ok {
		if b, ok := toBool(v); ok {
			item.Available = b
		}
	}
	if v, ok := lookup(raw, keys, n.aliases.Region); ok {
		item.Region = toString(v)
	}
	if v, ok := lookup(raw, keys, n.aliases.PhotoURL); ok {
		item.PhotoURL = toString(v)
	}
	if v, ok := lookup(raw, keys, n.aliases.Theme); ok {
		item.Theme = toString(v)
	}

	for _, k := range keys {
		if _, consumed := n.known[strings.ToLower(k)]; consumed {
			continue
		}
		if item.Extra == nil {
			item.Extra = map[string]any{}
		}
		item.Extra[k] = raw[k]
	}

	ResolveMidPrice(&item)
	return item
}

// NormalizeAll normalizes every record and drops the ones without an id,
// since they cannot be grouped or charted. dropped counts the removed records.
func (n *Normalizer) NormalizeAll(raws []internal.RawRecord) (items []internal.CatalogItem, dropped int) {
	items = make([]internal.CatalogItem, 0, len(raws))
	for _, raw := range raws {
		item := n.Normalize(raw)
		if item.ID == nil {
			dropped++
			continue
		}
		items = append(items, item)
	}
	return items, dropped
}

// ID extracts only the identifier of a raw record.
func (n *Normalizer) ID(raw internal.RawRecord) (int, bool) {
	return n.id(raw, sortedKeys(raw))
}

// Category extracts only the category of a raw record.
func (n *Normalizer) Category(raw internal.RawRecord) (string, bool) {
	v, ok := lookup(raw, sortedKeys(raw), n.aliases.Category)
	if !ok {
		return "", false
	}
	return toString(v), true
}

func (n *Normalizer) id(raw internal.RawRecord, keys []string) (int, bool) {
	v, ok := lookup(raw, keys, n.aliases.ID)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

func (n *Normalizer) price(raw internal.RawRecord, keys []string, aliases []string) *float64 {
	v, ok := lookup(raw, keys, aliases)
	if !ok {
		return nil
	}
	return toFloatPtr(v)
}

func sortedKeys(raw internal.RawRecord) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lookup treats null values as absent.
func lookup(raw internal.RawRecord, keys []string, aliases []string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := raw[alias]; ok && v != nil {
			return v, true
		}
	}
	for _, alias := range aliases {
		for _, k := range keys {
			if strings.EqualFold(k, alias) && raw[k] != nil {
				return raw[k], true
			}
		}
	}
	return nil, false
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint:
		return int(t), true
	case uint32:
		return int(t), true
	case uint64:
		return int(t), true
	case float32:
		return floatToInt(float64(t))
	case float64:
		return floatToInt(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		if f, err := t.Float64(); err == nil {
			return floatToInt(f)
		}
	case string:
		s := strings.TrimSpace(t)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f)
		}
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func toFloatPtr(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return util.FloatPtr(float64(t))
	case int32:
		return util.FloatPtr(float64(t))
	case int64:
		return util.FloatPtr(float64(t))
	case uint:
		return util.FloatPtr(float64(t))
	case uint64:
		return util.FloatPtr(float64(t))
	case decimal.Decimal:
		f, _ := t.Float64()
		return finite(f)
	case json.Number:
		// a JSON number is never locale formatted
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return nil
		}
		f, _ := d.Float64()
		return finite(f)
	case string:
		return util.ParsePrice(t)
	}
	return nil
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return util.FloatPtr(f)
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case int:
		return t != 0, true
	case int64:
		return t != 0, true
	case float64:
		return t != 0, true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f != 0, true
		}
	case string:
		return util.ParseBool(t)
	}
	return false, false
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	case int, int32, int64, uint, uint32, uint64, float32, float64, bool:
		return fmt.Sprint(t)
	}
	return ""
}
