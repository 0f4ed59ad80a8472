package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"decorprice/internal/catalog"
	"decorprice/internal/config"
	"decorprice/internal/logging"
	"decorprice/internal/pricing"
	"decorprice/internal/scheduler"
	"decorprice/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	must(cfg.Require("DECOR_API_BASE_URL", cfg.DecorAPIBaseURL))
	log := logging.New(cfg)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	normalizer := pricing.NewNormalizer(pricing.DefaultAliases())
	syncer := catalog.NewSyncService(db, catalog.NewClient(cfg, normalizer, log), normalizer, log)
	svc := scheduler.NewService(syncer, db, cfg, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
