package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"decorprice/internal"
)

type fakeFetcher struct {
	byID       map[int]internal.RawRecord
	byCategory map[string][]internal.RawRecord
	idErr      error
	catErr     error

	lastCategory      string
	lastOnlyAvailable bool
}

func (f *fakeFetcher) FetchRawByID(ctx context.Context, id int) (internal.RawRecord, error) {
	if f.idErr != nil {
		return nil, f.idErr
	}
	return f.byID[id], nil
}

func (f *fakeFetcher) FetchRawByCategory(ctx context.Context, category string, onlyAvailable bool) ([]internal.RawRecord, error) {
	f.lastCategory = category
	f.lastOnlyAvailable = onlyAvailable
	if f.catErr != nil {
		return nil, f.catErr
	}
	return f.byCategory[category], nil
}

func newTestService(f Fetcher) *Service {
	return NewService(f, nil, zerolog.Nop())
}

func TestResolveFocusNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeFetcher{})
	_, err := svc.ResolveFocus(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v want ErrNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.ID != 999 {
		t.Fatalf("got %#v", err)
	}
}

func TestResolveFocusEmptyRecordIsNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeFetcher{byID: map[int]internal.RawRecord{1: {}}})
	if _, err := svc.ResolveFocus(context.Background(), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestResolveFocusNormalizes(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeFetcher{byID: map[int]internal.RawRecord{
		5: {"DecorName": "Peony wall", "Category": "Flowers", "PriceSmall": "80", "PriceLarge": 120},
	}})
	focus, err := svc.ResolveFocus(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := focus.IDValue(); !ok || id != 5 {
		t.Fatalf("id should fall back to the requested one: %v", focus.ID)
	}
	if focus.Mid() != 100 {
		t.Fatalf("mid=%v", focus.Mid())
	}
}

func TestResolveFocusPropagatesFetchError(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("connection refused")
	svc := newTestService(&fakeFetcher{idErr: fetchErr})
	if _, err := svc.ResolveFocus(context.Background(), 1); !errors.Is(err, fetchErr) {
		t.Fatalf("got %v", err)
	}
}

func TestGetRankedCatalogEndToEnd(t *testing.T) {
	t.Parallel()

	focus := internal.RawRecord{"DecorId": 5, "DecorName": "Rose arch", "Category": "Flowers", "PriceMedium": 200}
	f := &fakeFetcher{
		byID: map[int]internal.RawRecord{5: focus},
		byCategory: map[string][]internal.RawRecord{
			"Flowers": {
				focus,
				{"DecorId": 6, "DecorName": "Lily tower", "Category": "Flowers", "PriceSmall": 100, "PriceLarge": 300},
				{"DecorId": 7, "DecorName": "Tulip row", "Category": "Flowers", "PriceSmall": 50},
				{"DecorName": "orphan", "Category": "Flowers", "PriceSmall": 1},
			},
		},
	}
	svc := newTestService(f)

	ranked, err := svc.GetRankedCatalog(context.Background(), 5, true)
	if err != nil {
		t.Fatal(err)
	}
	if f.lastCategory != "Flowers" || !f.lastOnlyAvailable {
		t.Fatalf("peer fetch got category=%q onlyAvailable=%v", f.lastCategory, f.lastOnlyAvailable)
	}
	if ranked.Category != "Flowers" || ranked.Focus.Mid() != 200 {
		t.Fatalf("focus=%+v", ranked.Focus)
	}

	wantIDs := []int{7, 6, 5}
	wantMids := []float64{50, 200, 200}
	if len(ranked.Items) != len(wantIDs) {
		t.Fatalf("len=%d", len(ranked.Items))
	}
	for i, item := range ranked.Items {
		id, _ := item.IDValue()
		if id != wantIDs[i] || item.Mid() != wantMids[i] {
			t.Fatalf("position %d: id=%d mid=%v", i, id, item.Mid())
		}
	}
}

func TestGetRankedCatalogFiltersUnavailable(t *testing.T) {
	t.Parallel()

	focus := internal.RawRecord{"id": 1, "name": "A", "category": "Lights", "PriceMedium": 10}
	f := &fakeFetcher{
		byID: map[int]internal.RawRecord{1: focus},
		byCategory: map[string][]internal.RawRecord{
			"Lights": {focus, {"id": 2, "name": "B", "category": "Lights", "PriceMedium": 5, "Available": false}},
		},
	}
	svc := newTestService(f)

	ranked, err := svc.GetRankedCatalog(context.Background(), 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked.Items) != 1 {
		t.Fatalf("len=%d", len(ranked.Items))
	}

	ranked, err = svc.GetRankedCatalog(context.Background(), 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked.Items) != 2 || ranked.Items[0].Name != "B" {
		t.Fatalf("items=%v", names(ranked.Items))
	}
}

func TestGetRankedCatalogMalformedPeers(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{
		byID:   map[int]internal.RawRecord{1: {"id": 1, "Category": "Flowers"}},
		catErr: &MalformedCategoryFetchError{Category: "Flowers", Got: "object"},
	}
	svc := newTestService(f)

	_, err := svc.GetRankedCatalog(context.Background(), 1, true)
	if !errors.Is(err, ErrMalformedCategoryFetch) {
		t.Fatalf("got %v", err)
	}
	var mal *MalformedCategoryFetchError
	if !errors.As(err, &mal) || mal.Category != "Flowers" {
		t.Fatalf("got %#v", err)
	}
}

func TestGetRankedCatalogMissingFocus(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeFetcher{})
	if _, err := svc.GetRankedCatalog(context.Background(), 42, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v", err)
	}
}
