package scheduler

import (
	"context"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"decorprice/internal"
	"decorprice/internal/config"
	"decorprice/internal/pricing"
	"decorprice/internal/report"
)

type Syncer interface {
	Sync(ctx context.Context) (internal.SyncResult, error)
}

// Snapshot is the read side of the local catalog used for auto-export.
type Snapshot interface {
	ListCategories(ctx context.Context) ([]internal.CategorySummary, error)
	FetchRawByCategory(ctx context.Context, category string, onlyAvailable bool) ([]internal.RawRecord, error)
}

// Service keeps the snapshot fresh on a cron schedule.
type Service struct {
	syncer     Syncer
	snapshot   Snapshot
	normalizer *pricing.Normalizer
	cfg        config.Config
	log        zerolog.Logger
}

func NewService(syncer Syncer, snapshot Snapshot, cfg config.Config, log zerolog.Logger) *Service {
	return &Service{
		syncer:     syncer,
		snapshot:   snapshot,
		normalizer: pricing.NewNormalizer(pricing.DefaultAliases()),
		cfg:        cfg,
		log:        log.With().Str("component", "scheduler").Logger(),
	}
}

// Run blocks until ctx is done. A failed cycle is logged and the next one
// runs on schedule; overlapping runs are skipped.
func (s *Service) Run(ctx context.Context) error {
	cl := cronLogger{log: s.log}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(s.cfg.SyncSchedule, func() { s.cycle(ctx) }); err != nil {
		return errors.Wrapf(err, "invalid SYNC_SCHEDULE %q", s.cfg.SyncSchedule)
	}

	if s.cfg.SyncOnStart {
		s.cycle(ctx)
	}

	c.Start()
	s.log.Info().Str("schedule", s.cfg.SyncSchedule).Msg("scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
	return nil
}

func (s *Service) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.RunCycle(ctx); err != nil {
		s.log.Error().Err(err).Msg("sync cycle failed")
	}
}

// RunCycle syncs once and, when enabled, exports every snapshot category.
func (s *Service) RunCycle(ctx context.Context) error {
	result, err := s.syncer.Sync(ctx)
	if err != nil {
		return err
	}

	exported := 0
	if s.cfg.SyncAutoExport {
		exported, err = s.exportSnapshot(ctx)
		if err != nil {
			return errors.Wrap(err, "auto export")
		}
	}

	s.log.Info().
		Str("traceId", result.TraceID).
		Int("fetched", result.Fetched).
		Int("stored", result.Stored).
		Int("exported", exported).
		Msg("sync cycle done")
	return nil
}

func (s *Service) exportSnapshot(ctx context.Context) (int, error) {
	categories, err := s.snapshot.ListCategories(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, cat := range categories {
		raws, err := s.snapshot.FetchRawByCategory(ctx, cat.Category, s.cfg.OnlyAvailable)
		if err != nil {
			return written, err
		}
		items, _ := s.normalizer.NormalizeAll(raws)
		ranked := internal.RankedCatalog{
			Category: cat.Category,
			Items:    pricing.Rank(items, s.cfg.OnlyAvailable),
		}
		out := filepath.Join(s.cfg.OutputDir, "snapshot", report.CategoryFileName(cat.Category))
		if err := report.ExportRankedToXLSX(ranked, out); err != nil {
			return written, errors.Wrapf(err, "export category %q", cat.Category)
		}
		written++
	}
	return written, nil
}

// cronLogger routes cron's own messages into zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
