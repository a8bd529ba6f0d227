package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"llm-event-predictor/internal/events"
	"llm-event-predictor/internal/logger"
	"llm-event-predictor/internal/market"
	"llm-event-predictor/internal/pipeline"
	"llm-event-predictor/internal/ratelimit"
	"llm-event-predictor/internal/trace"
	"llm-event-predictor/internal/types"
)

func main() {
	refresh := flag.Bool("refresh", false, "fetch a fresh event calendar before predicting")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "Initialization failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer trace.Shutdown(context.Background())

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	fmt.Println("🚀 Starting event predictor")
	fmt.Printf("📌 Model: %s\n", cfg.LLM.Model)
	fmt.Printf("📌 Events path: %s\n", cfg.EventsPath)
	fmt.Printf("📌 Output path: %s\n", cfg.OutputPath)

	// Refresh the calendar when asked, or when there is nothing to read.
	if _, statErr := os.Stat(cfg.EventsPath); *refresh || statErr != nil {
		fmt.Println("📡 Fetching event calendar from NSE...")
		n, ferr := events.NewCalendarFetcher().FetchAndSave(ctx, cfg.EventsPath)
		if ferr != nil {
			logger.ErrorWithErr(ctx, "Calendar refresh failed", ferr)
			if statErr != nil {
				// Nothing cached either: fatal.
				fmt.Fprintf(os.Stderr, "No events available: %v\n", ferr)
				os.Exit(1)
			}
		} else {
			fmt.Printf("📄 Saved %d events to %s\n", n, cfg.EventsPath)
		}
	}

	evs, err := events.Load(cfg.EventsPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load events", err)
		fmt.Fprintf(os.Stderr, "Failed to load events: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("📄 Loaded %d events\n", len(evs))

	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.Window())
	predictor, err := initializePredictor(ctx, cfg, limiter)
	if err != nil {
		logger.ErrorWithErr(ctx, "Predictor initialization failed", err)
		fmt.Fprintf(os.Stderr, "Predictor initialization failed: %v\n", err)
		os.Exit(1)
	}

	p := pipeline.New(cfg,
		market.NewPriceSource(cfg.ExchangeSuffix),
		market.NewEPSSource(cfg.ExchangeSuffix),
		predictor,
	)

	fmt.Printf("🔎 Processing %d events...\n\n", len(evs))
	records := p.Run(ctx, evs)

	if err := events.SavePredictions(cfg.OutputPath, records); err != nil {
		logger.ErrorWithErr(ctx, "Failed to write output", err)
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}

	printSummary(records, cfg.OutputPath)
}

func printSummary(records []types.PredictionRecord, outputPath string) {
	counts := map[string]int{}
	for _, r := range records {
		counts[r.Prediction.Recommendation]++
	}
	fmt.Println("═══════════════════════════════════════════")
	fmt.Println("                 SUMMARY")
	fmt.Println("═══════════════════════════════════════════")
	fmt.Printf("Predictions:  %d\n", len(records))
	fmt.Printf("  buy:        %d\n", counts["buy"])
	fmt.Printf("  hold:       %d\n", counts["hold"])
	fmt.Printf("  sell:       %d\n", counts["sell"])
	fmt.Printf("\n🎉 DONE! Predictions saved to: %s\n", outputPath)
}
