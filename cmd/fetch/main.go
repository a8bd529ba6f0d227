// Command fetch pulls the NSE event calendar and writes data/events.json.
// It is the standalone acquisition step; the predictor can also run it
// inline with --refresh.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"llm-event-predictor/internal/events"
	"llm-event-predictor/internal/logger"
	"llm-event-predictor/internal/store"
	"llm-event-predictor/internal/trace"

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

	path := store.DefaultConfig().EventsPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	n, err := events.NewCalendarFetcher().FetchAndSave(ctx, path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Calendar fetch failed", err)
		fmt.Fprintf(os.Stderr, "Calendar fetch failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved %d events to %s\n", n, path)
}
