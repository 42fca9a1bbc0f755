package services

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/adwait222001/Market-Sutra/internal/models"
)

// indexQuoter is what the live cache needs from the scrape client.
type indexQuoter interface {
	FetchPriceAndClose(ctx context.Context, symbolCode string) (price, previousClose *float64, err error)
}

// LiveCache owns the background-refreshed snapshot of the tracked index set.
// One mutex guards the snapshot map and status string; network fetches
// happen outside it and only the finished result is swapped in.
type LiveCache struct {
	quotes   indexQuoter
	tracked  []models.IndexEntry
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron

	mu     sync.Mutex
	prices map[string]models.IndexSnapshot
	status string
}

func NewLiveCache(quotes indexQuoter, tracked []models.IndexEntry, interval, timeout time.Duration) *LiveCache {
	return &LiveCache{
		quotes:   quotes,
		tracked:  tracked,
		interval: interval,
		timeout:  timeout,
		prices:   make(map[string]models.IndexSnapshot),
		status:   "Loading...",
	}
}

// Start runs one refresh synchronously so the first request after boot sees
// data, then schedules the periodic loop.
func (s *LiveCache) Start() error {
	s.Refresh()
	s.cron = cron.New()
	if _, err := s.cron.AddFunc("@every "+s.interval.String(), s.Refresh); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the refresh loop and waits for an in-flight cycle to finish.
func (s *LiveCache) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Snapshot copies the current snapshot set and status under the lock.
func (s *LiveCache) Snapshot() (map[string]models.IndexSnapshot, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.IndexSnapshot, len(s.prices))
	for k, v := range s.prices {
		out[k] = v
	}
	return out, s.status
}

// Refresh fetches every tracked index and swaps in a whole new snapshot
// set. Per-field failures fall back to the previous cycle's value for that
// field only; the loop itself never fails.
func (s *LiveCache) Refresh() {
	status := "Market is closed"
	if MarketOpen(time.Now()) {
		status = "Market is open"
	}

	previous, _ := s.Snapshot()

	next := make(map[string]models.IndexSnapshot, len(s.tracked))
	for _, entry := range s.tracked {
		symbolCode := entry.Name + ":" + entry.Exchange

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		price, previousClose, err := s.quotes.FetchPriceAndClose(ctx, symbolCode)
		cancel()
		if err != nil {
			log.Printf("[WARN] live refresh failed for %s: %v", symbolCode, err)
		}

		last := previous[entry.Name]
		if price == nil {
			price = last.Price
		}
		if previousClose == nil {
			previousClose = last.PreviousClose
		}

		next[entry.Name] = buildSnapshot(price, previousClose)
	}

	s.mu.Lock()
	s.prices = next
	s.status = status
	s.mu.Unlock()
	log.Printf("live index prices updated (%d tracked) - %s", len(next), status)
}

func buildSnapshot(price, previousClose *float64) models.IndexSnapshot {
	snap := models.IndexSnapshot{
		Price:         price,
		PreviousClose: previousClose,
		Direction:     models.DirectionUnknown,
	}
	if price == nil || previousClose == nil {
		return snap
	}
	diff := math.Round((*price-*previousClose)*100) / 100
	snap.Difference = &diff
	switch {
	case diff > 0:
		snap.Direction = models.DirectionUp
	case diff < 0:
		snap.Direction = models.DirectionDown
	default:
		snap.Direction = models.DirectionFlat
	}
	return snap
}
