package catalog

import (
	"context"
	"testing"

	"decorprice/internal"
)

func TestIndexServesRecords(t *testing.T) {
	idx := BuildIndex([]internal.RawRecord{
		{"DecorId": 1, "DecorName": "Rose", "Category": "Flowers"},
		{"DecorId": 2, "DecorName": "Lily", "Category": "flowers ", "Available": "no"},
		{"DecorId": 3, "DecorName": "Lantern", "Category": "Lights"},
		{"DecorName": "orphan", "Category": "Flowers"},
		{"DecorId": 1, "DecorName": "Rose v2", "Category": "Flowers"},
	}, nil)

	raw, _ := idx.FetchRawByID(context.Background(), 1)
	if raw["DecorName"] != "Rose v2" {
		t.Fatalf("raw=%v", raw)
	}
	if raw, _ := idx.FetchRawByID(context.Background(), 42); raw != nil {
		t.Fatalf("raw=%v", raw)
	}

	all, _ := idx.FetchRawByCategory(context.Background(), "Flowers", false)
	if len(all) != 2 {
		t.Fatalf("len=%d", len(all))
	}
	open, _ := idx.FetchRawByCategory(context.Background(), "Flowers", true)
	if len(open) != 1 {
		t.Fatalf("len=%d", len(open))
	}
	everything, _ := idx.FetchRawByCategory(context.Background(), "", false)
	if len(everything) != 3 {
		t.Fatalf("len=%d", len(everything))
	}
}

func TestIndexMovesRecordWhenCategoryChanges(t *testing.T) {
	idx := BuildIndex([]internal.RawRecord{
		{"DecorId": 1, "DecorName": "Rose", "Category": "Flowers"},
		{"DecorId": 2, "DecorName": "Lily", "Category": "Flowers"},
		{"DecorId": 1, "DecorName": "Rose lamp", "Category": "Lights"},
	}, nil)

	flowers, _ := idx.FetchRawByCategory(context.Background(), "Flowers", false)
	if len(flowers) != 1 || flowers[0]["DecorName"] != "Lily" {
		t.Fatalf("flowers=%v", flowers)
	}
	lights, _ := idx.FetchRawByCategory(context.Background(), "Lights", false)
	if len(lights) != 1 || lights[0]["DecorName"] != "Rose lamp" {
		t.Fatalf("lights=%v", lights)
	}
	everything, _ := idx.FetchRawByCategory(context.Background(), "", false)
	if len(everything) != 2 {
		t.Fatalf("len=%d", len(everything))
	}
}
