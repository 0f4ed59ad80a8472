package pricing

import (
	"testing"

	"decorprice/internal"
)

func names(items []internal.CatalogItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestRankOrdersByPriceThenName(t *testing.T) {
	items := []internal.CatalogItem{
		{Name: "B", MidPrice: fp(10), Available: true},
		{Name: "A", MidPrice: fp(10), Available: true},
		{Name: "C", MidPrice: fp(5), Available: true},
	}

	got := names(Rank(items, true))
	want := []string{"C", "A", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	if items[0].Name != "B" || items[1].Name != "A" {
		t.Fatalf("input was reordered: %v", names(items))
	}
}

func TestRankAvailabilityFilter(t *testing.T) {
	items := []internal.CatalogItem{
		{Name: "open", MidPrice: fp(1), Available: true},
		{Name: "closed", MidPrice: fp(2), Available: false},
	}

	if got := Rank(items, true); len(got) != 1 || got[0].Name != "open" {
		t.Fatalf("onlyAvailable=true: %v", names(got))
	}
	if got := Rank(items, false); len(got) != 2 {
		t.Fatalf("onlyAvailable=false: %v", names(got))
	}
}

func TestRankEmpty(t *testing.T) {
	if got := Rank(nil, true); got == nil || len(got) != 0 {
		t.Fatalf("got %#v", got)
	}
	allClosed := []internal.CatalogItem{{Name: "x", Available: false}}
	if got := Rank(allClosed, true); len(got) != 0 {
		t.Fatalf("got %v", names(got))
	}
}

func TestRankUnresolvedMidSortsAsZero(t *testing.T) {
	items := []internal.CatalogItem{
		{Name: "priced", MidPrice: fp(3), Available: true},
		{Name: "unpriced", Available: true},
	}
	got := names(Rank(items, false))
	if got[0] != "unpriced" {
		t.Fatalf("got %v", got)
	}
}
