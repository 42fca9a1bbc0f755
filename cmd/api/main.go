package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adwait222001/Market-Sutra/internal/config"
	"github.com/adwait222001/Market-Sutra/internal/handlers"
	internalhttp "github.com/adwait222001/Market-Sutra/internal/http"
	"github.com/adwait222001/Market-Sutra/internal/models"
	"github.com/adwait222001/Market-Sutra/internal/services"
)

func main() {
	_ = godotenv.Load(".env", ".env.local")
	cfg := config.Load()

	cache := services.NewCache(cfg)
	dir := services.NewDirectoryClient(cfg, cache)
	quotes := services.NewQuotesClient(cfg, cache)
	history := services.NewHistoryClient(cfg, dir)
	idx := services.NewIndexQuoteClient(cfg)

	live := services.NewLiveCache(idx, trackedEntries(cfg, dir), cfg.RefreshInterval, cfg.ScrapeTimeout)
	if err := live.Start(); err != nil {
		log.Fatalf("start live cache: %v", err)
	}

	api := handlers.New(cfg, dir, quotes, history, idx, live)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           internalhttp.NewRouter(cfg, api),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("market-sutra backend listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Print("shutting down")
	live.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// trackedEntries maps the configured tracked-index names through the index
// map. Names missing from the map are kept with an empty exchange so their
// snapshots surface as UNKNOWN instead of silently disappearing.
func trackedEntries(cfg config.Config, dir *services.DirectoryClient) []models.IndexEntry {
	out := make([]models.IndexEntry, 0, len(cfg.TrackedIndexes))
	for _, name := range cfg.TrackedIndexes {
		if entry, ok := dir.IndexByName(name); ok {
			out = append(out, entry)
			continue
		}
		log.Printf("[WARN] tracked index %s not in index map", name)
		out = append(out, models.IndexEntry{Name: name})
	}
	return out
}
