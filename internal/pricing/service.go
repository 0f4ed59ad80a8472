package pricing

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"

	"decorprice/internal"
	"decorprice/internal/util"
)

// Fetcher abstracts where raw catalog records come from: the REST API, the
// local snapshot or an imported file.
type Fetcher interface {
	// FetchRawByID returns nil, nil when no record has the id.
	FetchRawByID(ctx context.Context, id int) (internal.RawRecord, error)
	FetchRawByCategory(ctx context.Context, category string, onlyAvailable bool) ([]internal.RawRecord, error)
}

type Service struct {
	fetcher    Fetcher
	normalizer *Normalizer
	log        zerolog.Logger
}

func NewService(fetcher Fetcher, normalizer *Normalizer, log zerolog.Logger) *Service {
	if normalizer == nil {
		normalizer = NewNormalizer(DefaultAliases())
	}
	return &Service{
		fetcher:    fetcher,
		normalizer: normalizer,
		log:        log.With().Str("component", "pricing").Logger(),
	}
}

// ResolveFocus loads the focus item and holds it to the same contract as its
// peers: normalized, with a resolved mid price.
func (s *Service) ResolveFocus(ctx context.Context, id int) (internal.CatalogItem, error) {
	raw, err := s.fetcher.FetchRawByID(ctx, id)
	if err != nil {
		return internal.CatalogItem{}, errors.Wrapf(err, "fetch focus item %d", id)
	}
	if len(raw) == 0 {
		return internal.CatalogItem{}, &NotFoundError{ID: id}
	}

	item := s.normalizer.Normalize(raw)
	if item.ID == nil {
		item.ID = util.IntPtr(id)
	}
	return item, nil
}

// GetRankedCatalog returns the focus item together with its ranked peers
// from the same category. The focus item itself appears among the peers
// when the source lists it.
func (s *Service) GetRankedCatalog(ctx context.Context, focusID int, onlyAvailable bool) (internal.RankedCatalog, error) {
	focus, err := s.ResolveFocus(ctx, focusID)
	if err != nil {
		return internal.RankedCatalog{}, err
	}

	raws, err := s.fetcher.FetchRawByCategory(ctx, focus.Category, onlyAvailable)
	if err != nil {
		return internal.RankedCatalog{}, errors.Wrapf(err, "fetch peers of category %q", focus.Category)
	}

	peers, dropped := s.normalizer.NormalizeAll(raws)
	if dropped > 0 {
		s.log.Debug().
			Str("category", focus.Category).
			Int("dropped", dropped).
			Msg("peer records without id skipped")
	}

	ranked := Rank(peers, onlyAvailable)
	s.log.Debug().
		Int("focus", focusID).
		Str("category", focus.Category).
		Int("fetched", len(raws)).
		Int("ranked", len(ranked)).
		Msg("ranked catalog built")

	return internal.RankedCatalog{Focus: focus, Category: focus.Category, Items: ranked}, nil
}
