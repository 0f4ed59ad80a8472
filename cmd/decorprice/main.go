package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"decorprice/internal"
	"decorprice/internal/catalog"
	"decorprice/internal/config"
	"decorprice/internal/httpapi"
	"decorprice/internal/ingest"
	"decorprice/internal/logging"
	"decorprice/internal/pricing"
	"decorprice/internal/report"
	"decorprice/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log := logging.New(cfg)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	normalizer := pricing.NewNormalizer(pricing.DefaultAliases())
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	switch cmd {
	case "catalog:sync":
		must(cfg.Require("DECOR_API_BASE_URL", cfg.DecorAPIBaseURL))
		db := openDB(cfg)
		defer db.Close()
		svc := catalog.NewSyncService(db, catalog.NewClient(cfg, normalizer, log), normalizer, log)
		result, err := svc.Sync(ctx)
		must(err)
		fmt.Printf("sync complete trace=%s fetched=%d stored=%d skipped=%d\n", result.TraceID, result.Fetched, result.Stored, result.Skipped)
	case "catalog:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "", "xlsx|html|pdf|json, detected from the extension when empty")
		_ = fs.Parse(os.Args[2:])
		if *input == "" {
			must(fmt.Errorf("--input is required"))
		}
		kind, err := ingest.ResolveKind(*inType, *input)
		must(err)
		records, err := ingest.ExtractRecordsFromInput(kind, *input)
		must(err)
		db := openDB(cfg)
		defer db.Close()
		svc := catalog.NewSyncService(db, nil, normalizer, log)
		result, err := svc.Import(ctx, kind, records)
		must(err)
		fmt.Printf("import complete trace=%s read=%d stored=%d skipped=%d\n", result.TraceID, result.Fetched, result.Stored, result.Skipped)
	case "catalog:categories":
		db := openDB(cfg)
		defer db.Close()
		cats, err := db.ListCategories(ctx)
		must(err)
		last, err := db.LastSyncRun(ctx)
		must(err)
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tITEMS")
		for _, c := range cats {
			fmt.Fprintf(tw, "%s\t%d\n", c.Category, c.Items)
		}
		_ = tw.Flush()
		if last != nil {
			fmt.Printf("last sync: %s source=%s stored=%d\n", last.CreatedAt, last.Source, last.Stored)
		}
	case "price:rank":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		focus := fs.Int("focus", 0, "focus decor id")
		source := fs.String("source", "api", "api|db")
		onlyAvailable := fs.Bool("only-available", cfg.OnlyAvailable, "hide unavailable peers")
		_ = fs.Parse(os.Args[2:])
		if *focus <= 0 {
			must(fmt.Errorf("--focus is required"))
		}
		fetcher, closeFn := makeFetcher(cfg, *source, normalizer, log)
		defer closeFn()
		ranked, err := pricing.NewService(fetcher, normalizer, log).GetRankedCatalog(ctx, *focus, *onlyAvailable)
		must(err)
		printRanked(ranked)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		focus := fs.Int("focus", 0, "focus decor id")
		out := fs.String("out", "", "output xlsx path")
		source := fs.String("source", "api", "api|db")
		onlyAvailable := fs.Bool("only-available", cfg.OnlyAvailable, "hide unavailable peers")
		_ = fs.Parse(os.Args[2:])
		if *focus <= 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--focus and --out are required"))
		}
		fetcher, closeFn := makeFetcher(cfg, *source, normalizer, log)
		defer closeFn()
		ranked, err := pricing.NewService(fetcher, normalizer, log).GetRankedCatalog(ctx, *focus, *onlyAvailable)
		must(err)
		must(report.ExportRankedToXLSX(ranked, *out))
		fmt.Printf("exported %d rows to %s\n", len(ranked.Items), *out)
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "", "xlsx|html|pdf|json, detected from the extension when empty")
		focus := fs.Int("focus", 0, "focus decor id")
		output := fs.String("output", "", "output xlsx path")
		onlyAvailable := fs.Bool("only-available", cfg.OnlyAvailable, "hide unavailable peers")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *focus <= 0 || *output == "" {
			must(fmt.Errorf("--input --focus --output are required"))
		}
		kind, err := ingest.ResolveKind(*inType, *input)
		must(err)
		records, err := ingest.ExtractRecordsFromInput(kind, *input)
		must(err)
		idx := catalog.BuildIndex(records, normalizer)
		ranked, err := pricing.NewService(idx, normalizer, log).GetRankedCatalog(ctx, *focus, *onlyAvailable)
		must(err)
		must(report.ExportRankedToXLSX(ranked, *output))
		fmt.Printf("run done records=%d ranked=%d output=%s\n", len(records), len(ranked.Items), *output)
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		source := fs.String("source", "api", "api|db")
		addr := fs.String("addr", cfg.HTTPAddr, "listen address")
		_ = fs.Parse(os.Args[2:])
		fetcher, closeFn := makeFetcher(cfg, *source, normalizer, log)
		defer closeFn()
		var categories httpapi.CategoryLister
		if db, ok := fetcher.(*storage.DB); ok {
			categories = db
		}
		h := httpapi.NewHandler(pricing.NewService(fetcher, normalizer, log), categories, cfg.OnlyAvailable, log)
		must(httpapi.Serve(ctx, *addr, h.Routes(), log))
	default:
		usage()
		os.Exit(1)
	}
}

func openDB(cfg config.Config) *storage.DB {
	db, err := storage.Open(cfg.DBPath)
	must(err)
	return db
}

func makeFetcher(cfg config.Config, source string, normalizer *pricing.Normalizer, log zerolog.Logger) (pricing.Fetcher, func()) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "api":
		must(cfg.Require("DECOR_API_BASE_URL", cfg.DecorAPIBaseURL))
		return catalog.NewClient(cfg, normalizer, log), func() {}
	case "db":
		db := openDB(cfg)
		return db, func() { _ = db.Close() }
	}
	must(fmt.Errorf("unsupported source: %s", source))
	return nil, nil
}

func printRanked(ranked internal.RankedCatalog) {
	focusID, _ := ranked.Focus.IDValue()
	fmt.Printf("focus: %d %s (%s) mid=%.2f\n", focusID, ranked.Focus.Name, ranked.Category, ranked.Focus.Mid())

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tMID\t")
	for i, item := range ranked.Items {
		id, _ := item.IDValue()
		marker := ""
		if id == focusID {
			marker = "<- focus"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%.2f\t%s\n", i+1, id, item.Name, item.Mid(), marker)
	}
	_ = tw.Flush()
}

func usage() {
	fmt.Println("usage: decorprice <command>")
	fmt.Println("commands:")
	fmt.Println("  catalog:sync")
	fmt.Println("  catalog:import --input=... --type=xlsx|html|pdf|json")
	fmt.Println("  catalog:categories")
	fmt.Println("  price:rank --focus=ID [--source=api|db] [--only-available=true]")
	fmt.Println("  export:xlsx --focus=ID --out=./out/prices.xlsx [--source=api|db]")
	fmt.Println("  run --input=... --type=xlsx|html|pdf|json --focus=ID --output=...xlsx")
	fmt.Println("  serve [--source=api|db] [--addr=:8080]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
