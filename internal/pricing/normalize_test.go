package pricing

import (
	"encoding/json"
	"strings"
	"testing"

	"decorprice/internal"
)

func TestNormalizeCanonicalRecord(t *testing.T) {
	n := NewNormalizer(DefaultAliases())
	item := n.Normalize(internal.RawRecord{
		"DecorId":     7,
		"DecorName":   "Rose Arch",
		"Category":    "Flowers",
		"PriceSmall":  100.0,
		"PriceMedium": nil,
		"PriceLarge":  "300",
		"Region":      "Center",
		"PhotoUrl":    "https://cdn.example/rose.jpg",
		"Theme":       "Wedding",
		"VendorName":  "Bloom",
	})

	if id, ok := item.IDValue(); !ok || id != 7 {
		t.Fatalf("id=%v", item.ID)
	}
	if item.Name != "Rose Arch" || item.Category != "Flowers" {
		t.Fatalf("name=%q category=%q", item.Name, item.Category)
	}
	if item.PriceMedium != nil {
		t.Fatalf("medium=%v", *item.PriceMedium)
	}
	if item.PriceLarge == nil || *item.PriceLarge != 300 {
		t.Fatalf("large=%v", item.PriceLarge)
	}
	if item.Mid() != 200 {
		t.Fatalf("mid=%v", item.Mid())
	}
	if !item.Available {
		t.Fatal("available should default to true")
	}
	if item.Region != "Center" || item.PhotoURL == "" || item.Theme != "Wedding" {
		t.Fatalf("metadata lost: %+v", item)
	}
	if item.Extra["VendorName"] != "Bloom" {
		t.Fatalf("extra=%v", item.Extra)
	}
	if _, ok := item.Extra["PriceMedium"]; ok {
		t.Fatal("known keys must not leak into extra")
	}
}

func TestNormalizeKeyAliases(t *testing.T) {
	n := NewNormalizer(DefaultAliases())
	cases := []struct {
		name string
		raw  internal.RawRecord
		id   int
	}{
		{name: "DecorId", raw: internal.RawRecord{"DecorId": 1, "decorId": 2, "id": 3}, id: 1},
		{name: "decorId", raw: internal.RawRecord{"decorId": 2, "id": 3}, id: 2},
		{name: "id", raw: internal.RawRecord{"id": 3}, id: 3},
		{name: "case insensitive", raw: internal.RawRecord{"DECORID": "4"}, id: 4},
		{name: "null falls through", raw: internal.RawRecord{"DecorId": nil, "id": 5}, id: 5},
		{name: "json number", raw: internal.RawRecord{"id": json.Number("6")}, id: 6},
		{name: "integral float", raw: internal.RawRecord{"id": 8.0}, id: 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := n.ID(tc.raw)
			if !ok || id != tc.id {
				t.Fatalf("got (%d,%v) want %d", id, ok, tc.id)
			}
		})
	}
}

func TestNormalizeMissingID(t *testing.T) {
	n := NewNormalizer(DefaultAliases())
	for _, raw := range []internal.RawRecord{
		{"DecorName": "No id"},
		{"id": "abc"},
		{"id": 1.5},
	} {
		if item := n.Normalize(raw); item.ID != nil {
			t.Fatalf("raw %v: id=%d", raw, *item.ID)
		}
	}
}

func TestNormalizeBadNumbersDegradeToNil(t *testing.T) {
	n := NewNormalizer(DefaultAliases())
	item := n.Normalize(internal.RawRecord{
		"id":          1,
		"PriceSmall":  "not a number",
		"PriceMedium": map[string]any{"x": 1},
		"PriceLarge":  true,
		"MinPrice":    []any{1},
	})
	if item.PriceSmall != nil || item.PriceMedium != nil || item.PriceLarge != nil || item.MinPrice != nil {
		t.Fatalf("expected nil prices: %+v", item)
	}
	if item.MidPrice == nil || *item.MidPrice != 0 {
		t.Fatalf("mid=%v", item.MidPrice)
	}
}

func TestNormalizeAvailability(t *testing.T) {
	n := NewNormalizer(DefaultAliases())
	cases := []struct {
		value any
		want  bool
	}{
		{value: false, want: false},
		{value: true, want: true},
		{value: 0, want: false},
		{value: 1.0, want: true},
		{value: json.Number("0"), want: false},
		{value: "no", want: false},
		{value: "YES", want: true},
		{value: "unknown", want: true},
		{value: nil, want: true},
	}
	for _, tc := range cases {
		item := n.Normalize(internal.RawRecord{"id": 1, "Available": tc.value})
		if item.Available != tc.want {
			t.Fatalf("value %#v: got %v want %v", tc.value, item.Available, tc.want)
		}
	}
}

func TestNormalizeCustomAliases(t *testing.T) {
	aliases := DefaultAliases()
	aliases.ID = []string{"HallId"}
	aliases.Name = []string{"HallName"}
	n := NewNormalizer(aliases)

	item := n.Normalize(internal.RawRecord{"HallId": 3, "HallName": "Garden", "DecorId": 9})
	if id, ok := item.IDValue(); !ok || id != 3 {
		t.Fatalf("id=%v", item.ID)
	}
	if item.Name != "Garden" {
		t.Fatalf("name=%q", item.Name)
	}
	if item.Extra["DecorId"] != 9 {
		t.Fatalf("unaliased key should pass through: %v", item.Extra)
	}
}

func TestNormalizeLocalizedPriceStrings(t *testing.T) {
	n := NewNormalizer(DefaultAliases())
	item := n.Normalize(internal.RawRecord{"id": 1, "price_small": "1 200,50", "price_large": "₪1,800"})
	if item.PriceSmall == nil || *item.PriceSmall != 1200.5 {
		t.Fatalf("small=%v", item.PriceSmall)
	}
	if item.PriceLarge == nil || *item.PriceLarge != 1800 {
		t.Fatalf("large=%v", item.PriceLarge)
	}
}

func TestNormalizeDoesNotPanicOnOddInput(t *testing.T) {
	n := NewNormalizer(DefaultAliases())
	raws := []internal.RawRecord{
		nil,
		{},
		{"DecorName": 42, "Category": []any{"x"}},
		{"MidPrice": strings.Repeat("9", 400)},
	}
	for _, raw := range raws {
		item := n.Normalize(raw)
		if item.MidPrice == nil {
			t.Fatalf("raw %v: mid price not resolved", raw)
		}
	}
}

func TestNormalizeAllDropsRecordsWithoutID(t *testing.T) {
	n := NewNormalizer(DefaultAliases())
	items, dropped := n.NormalizeAll([]internal.RawRecord{
		{"id": 1, "DecorName": "A"},
		{"DecorName": "orphan"},
		{"id": 2, "DecorName": "B"},
	})
	if len(items) != 2 || dropped != 1 {
		t.Fatalf("len=%d dropped=%d", len(items), dropped)
	}
}

func TestNormalizeJSONNumberPricesAreNotLocaleParsed(t *testing.T) {
	n := NewNormalizer(DefaultAliases())

	medium := n.Normalize(internal.RawRecord{
		"DecorId":     json.Number("1"),
		"PriceMedium": json.Number("2.125"),
		"MinPrice":    json.Number("100.000"),
	})
	if medium.Mid() != 2.125 {
		t.Fatalf("mid=%v", medium.Mid())
	}
	if medium.MinPrice == nil || *medium.MinPrice != 100 {
		t.Fatalf("min=%v", medium.MinPrice)
	}

	sizes := n.Normalize(internal.RawRecord{
		"DecorId":    json.Number("2"),
		"PriceSmall": json.Number("1.500"),
		"PriceLarge": json.Number("2.125"),
	})
	if *sizes.PriceSmall != 1.5 || *sizes.PriceLarge != 2.125 {
		t.Fatalf("small=%v large=%v", *sizes.PriceSmall, *sizes.PriceLarge)
	}
	if sizes.Mid() != 1.8125 {
		t.Fatalf("mid=%v", sizes.Mid())
	}

	if bad := n.Normalize(internal.RawRecord{"PriceMedium": json.Number("1e400")}); bad.PriceMedium != nil {
		t.Fatalf("overflow should be absent, got %v", *bad.PriceMedium)
	}
}
