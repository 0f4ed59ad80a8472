package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"decorprice/internal"
	"decorprice/internal/pricing"
	"decorprice/internal/storage"
)

// SnapshotWriter is the write side of the local catalog.
type SnapshotWriter interface {
	UpsertDecors(ctx context.Context, rows []internal.DecorRow) error
	InsertSyncRun(ctx context.Context, run internal.SyncResult) error
	SetMetadata(key, value string) error
}

var _ SnapshotWriter = (*storage.DB)(nil)

// SyncService copies catalog records into the local snapshot, either from
// the REST API or from an imported price sheet.
type SyncService struct {
	db         SnapshotWriter
	client     *Client
	normalizer *pricing.Normalizer
	log        zerolog.Logger
}

func NewSyncService(db SnapshotWriter, client *Client, normalizer *pricing.Normalizer, log zerolog.Logger) *SyncService {
	if normalizer == nil {
		normalizer = pricing.NewNormalizer(pricing.DefaultAliases())
	}
	return &SyncService{
		db:         db,
		client:     client,
		normalizer: normalizer,
		log:        log.With().Str("component", "catalog.sync").Logger(),
	}
}

// Sync pulls the whole catalog from the API into the snapshot.
func (s *SyncService) Sync(ctx context.Context) (internal.SyncResult, error) {
	if s.client == nil {
		return internal.SyncResult{}, errors.New("sync: no api client configured")
	}
	raws, err := s.client.FetchAll(ctx)
	if err != nil {
		return internal.SyncResult{}, errors.Wrap(err, "fetch catalog")
	}
	return s.store(ctx, internal.SourceAPI, raws, "catalog.last_sync")
}

// Import stores records parsed from a file.
func (s *SyncService) Import(ctx context.Context, source internal.ImportSource, records []internal.RawRecord) (internal.SyncResult, error) {
	return s.store(ctx, source, records, "catalog.last_import."+string(source))
}

func (s *SyncService) store(ctx context.Context, source internal.ImportSource, raws []internal.RawRecord, metaKey string) (internal.SyncResult, error) {
	result := internal.SyncResult{
		TraceID: uuid.NewString(),
		Source:  source,
		Fetched: len(raws),
	}

	rows, skipped := BuildRows(s.normalizer, source, raws)
	result.Skipped = skipped

	if len(rows) > 0 {
		if err := s.db.UpsertDecors(ctx, rows); err != nil {
			return result, errors.Wrap(err, "store decors")
		}
	}
	result.Stored = len(rows)

	if err := s.db.InsertSyncRun(ctx, result); err != nil {
		return result, errors.Wrap(err, "record sync run")
	}
	if err := s.db.SetMetadata(metaKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		s.log.Warn().Err(err).Str("key", metaKey).Msg("metadata write failed")
	}

	s.log.Info().
		Str("traceId", result.TraceID).
		Str("source", string(source)).
		Int("fetched", result.Fetched).
		Int("stored", result.Stored).
		Int("skipped", result.Skipped).
		Msg("snapshot updated")
	return result, nil
}

// BuildRows turns raw records into snapshot rows. Records without an id are
// skipped and counted; a later record with the same id replaces an earlier one.
func BuildRows(normalizer *pricing.Normalizer, source internal.ImportSource, raws []internal.RawRecord) ([]internal.DecorRow, int) {
	rows := make([]internal.DecorRow, 0, len(raws))
	pos := map[int]int{}
	skipped := 0

	for _, raw := range raws {
		item := normalizer.Normalize(raw)
		id, ok := item.IDValue()
		if !ok {
			skipped++
			continue
		}
		blob, err := json.Marshal(raw)
		if err != nil {
			skipped++
			continue
		}

		r := internal.DecorRow{
			ID:        id,
			Category:  item.Category,
			Name:      item.Name,
			Available: item.Available,
			MidPrice:  item.Mid(),
			RawJSON:   string(blob),
			Source:    source,
		}
		if i, seen := pos[id]; seen {
			rows[i] = r
			continue
		}
		pos[id] = len(rows)
		rows = append(rows, r)
	}

	return rows, skipped
}
