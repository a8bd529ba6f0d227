// Command epsupdate enriches data/events.json in place with a forward
// earnings estimate per unique symbol. It uses the same retrying fetcher
// as the pipeline, so repeated symbols cost one lookup.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"llm-event-predictor/internal/events"
	"llm-event-predictor/internal/fetch"
	"llm-event-predictor/internal/logger"
	"llm-event-predictor/internal/market"
	"llm-event-predictor/internal/store"
	"llm-event-predictor/internal/trace"
	"llm-event-predictor/internal/types"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	defer trace.Shutdown(context.Background())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		cfg = store.DefaultConfig()
	}

	list, err := events.Load(cfg.EventsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load events: %v\n", err)
		os.Exit(1)
	}

	source := market.NewEPSSource(cfg.ExchangeSuffix)
	fetcher := fetch.New("forward-eps", source.ForwardEPS, cfg.Fetch.EPS)

	seen := map[string]bool{}
	updated := 0
	for i := range list {
		symbol := list[i].Symbol
		if symbol == "" {
			continue
		}
		if !seen[symbol] {
			seen[symbol] = true
			fmt.Printf("Fetching EPS for %s...\n", symbol)
		}
		// The fetcher caches per symbol, so repeated rows are free.
		if eps, found := fetcher.Fetch(ctx, symbol); found {
			list[i].EstimatedEPS = types.Float(eps)
			updated++
		}
	}

	if err := events.Save(cfg.EventsPath, list); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save events: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated EPS on %d of %d rows (%d unique symbols)\n", updated, len(list), len(seen))
}
