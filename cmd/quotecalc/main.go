// Command quotecalc prices a quote file from the command line, preferring the
// remote pricing service and falling back to the local engine.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/Simplici0/alu.works/internal/catalog"
	"github.com/Simplici0/alu.works/internal/config"
	"github.com/Simplici0/alu.works/internal/db"
	"github.com/Simplici0/alu.works/internal/export"
	"github.com/Simplici0/alu.works/internal/pricing"
	"github.com/Simplici0/alu.works/internal/pricingsvc"
	"github.com/Simplici0/alu.works/internal/quote"
)

func main() {
	var (
		file     = flag.String("file", "quote.json", "quote JSON file")
		watch    = flag.Bool("watch", false, "reprice whenever the file changes")
		interval = flag.Duration("interval", time.Second, "polling interval with -watch")
		parity   = flag.Bool("parity", false, "log remote results that differ from the local engine")
		perItem  = flag.Bool("items", false, "also print the cost breakdown of every item")
	)
	flag.Parse()

	cfg := config.Load()
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tables, err := loadTables(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}
	engine := pricing.NewEngine(catalog.New(tables, catalog.WithLogger(logger)))
	calc := newCalculator(cfg, engine, logger, *parity)

	q, err := readQuote(*file)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read quote")
	}
	if !*watch {
		priced, src := calc.Quote(ctx, q.Items, q.AdditionalCosts)
		printQuote(os.Stdout, q, priced, src, cfg.TaxPercent)
		if *perItem {
			breakdowns, src := calc.Items(ctx, q.Items)
			printItems(os.Stdout, q.Items, breakdowns, src)
		}
		return
	}

	if err := watchFile(ctx, *file, *interval, cfg, calc, logger); err != nil {
		logger.Fatal().Err(err).Msg("watch stopped")
	}
}

// loadTables picks the same catalog the server prices with, so a local
// fallback matches the remote result: the JSON file when CATALOG_PATH is set,
// otherwise the seeded database. The built-in defaults are used only when the
// database is missing or unreadable.
func loadTables(ctx context.Context, cfg config.Config, logger zerolog.Logger) (catalog.Tables, error) {
	if cfg.CatalogPath != "" {
		return catalog.LoadFile(cfg.CatalogPath)
	}

	if _, err := os.Stat(cfg.DBPath); err != nil {
		logger.Warn().Err(err).Str("db_path", cfg.DBPath).Msg("catalog database not found, using built-in defaults")
		return catalog.Defaults(), nil
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Warn().Err(err).Str("db_path", cfg.DBPath).Msg("catalog database unavailable, using built-in defaults")
		return catalog.Defaults(), nil
	}
	defer database.Close()

	tables, err := catalog.LoadFromDB(ctx, database)
	if err != nil {
		logger.Warn().Err(err).Str("db_path", cfg.DBPath).Msg("catalog database unreadable, using built-in defaults")
		return catalog.Defaults(), nil
	}
	return tables, nil
}

func newCalculator(cfg config.Config, engine *pricing.Engine, logger zerolog.Logger, parity bool) *pricingsvc.Fallback {
	opts := []pricingsvc.FallbackOption{pricingsvc.WithFallbackLogger(logger)}
	if parity {
		opts = append(opts, pricingsvc.WithParityCheck())
	}

	var remote pricingsvc.Calculator
	if cfg.PricingServiceURL != "" {
		remote = pricingsvc.NewClient(cfg.PricingServiceURL, cfg.PricingTimeout)
	}
	return pricingsvc.NewFallback(remote, pricingsvc.NewLocal(engine), opts...)
}

// watchFile polls path and sends every change through a debouncer, so a burst
// of saves produces one recalculation and only the latest one is printed.
func watchFile(ctx context.Context, path string, interval time.Duration, cfg config.Config, calc *pricingsvc.Fallback, logger zerolog.Logger) error {
	debouncer := newQuoteDebouncer(os.Stdout, cfg, calc)
	defer debouncer.Stop()

	var lastMod time.Time
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.ModTime().After(lastMod) {
			lastMod = info.ModTime()
			q, err := readQuote(path)
			if err != nil {
				logger.Warn().Err(err).Msg("skipping unreadable quote file")
			} else {
				debouncer.Submit(pricingsvc.Snapshot{Quote: q})
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// newQuoteDebouncer prints each fresh result with the quote it was computed
// from.
func newQuoteDebouncer(w io.Writer, cfg config.Config, calc *pricingsvc.Fallback) *pricingsvc.Debouncer {
	return pricingsvc.NewDebouncer(cfg.PricingDebounce,
		func(ctx context.Context, s pricingsvc.Snapshot) (pricing.PricedQuote, pricingsvc.Source) {
			return calc.Quote(ctx, s.Items, s.AdditionalCosts)
		},
		func(r pricingsvc.Result) {
			printQuote(w, r.Snapshot.Quote, r.Quote, r.Source, cfg.TaxPercent)
		},
	)
}

func readQuote(path string) (quote.Quote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("read quote file: %w", err)
	}

	var q quote.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return quote.Quote{}, fmt.Errorf("decode quote file: %w", err)
	}
	if err := quote.ValidateCosts(q.AdditionalCosts); err != nil {
		return quote.Quote{}, err
	}
	q.Items = quote.NewStore(q.Items).Items()
	return q, nil
}

func printQuote(w io.Writer, q quote.Quote, priced pricing.PricedQuote, src pricingsvc.Source, taxPercent float64) {
	fmt.Fprintf(w, "[%s]\n", src)
	fmt.Fprint(w, export.Text(export.NewSummary(q, priced, taxPercent)))
	fmt.Fprintln(w)
}

func printItems(w io.Writer, items []pricing.LineItem, breakdowns []pricing.Breakdown, src pricingsvc.Source) {
	fmt.Fprintf(w, "Item costs [%s]:\n", src)
	for i, b := range breakdowns {
		fmt.Fprintf(w, "%d. system %s, glass %s, labor %s, base %s (%s sq ft)\n",
			items[i].ItemNumber,
			export.Money(b.SystemCost), export.Money(b.GlassCost), export.Money(b.LaborCost), export.Money(b.BaseTotal),
			humanize.FormatFloat("#,###.##", b.Area))
	}
}
