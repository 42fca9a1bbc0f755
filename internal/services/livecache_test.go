package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adwait222001/Market-Sutra/internal/models"
)

// scriptedQuoter returns canned per-code results, swappable between cycles.
type scriptedQuoter struct {
	results map[string]quoteResult
}

type quoteResult struct {
	price *float64
	close *float64
	err   error
}

func (s *scriptedQuoter) FetchPriceAndClose(_ context.Context, code string) (*float64, *float64, error) {
	r, ok := s.results[code]
	if !ok {
		return nil, nil, errors.New("no fixture")
	}
	return r.price, r.close, r.err
}

func newTestCache(q indexQuoter) *LiveCache {
	tracked := []models.IndexEntry{{Name: "NIFTY_50", Ticker: "^NSEI", Exchange: "INDEXNSE"}}
	return NewLiveCache(q, tracked, time.Minute, time.Second)
}

func TestRefreshComputesDifferenceAndDirection(t *testing.T) {
	q := &scriptedQuoter{results: map[string]quoteResult{
		"NIFTY_50:INDEXNSE": {price: fv(19725.20), close: fv(19700.70)},
	}}
	cache := newTestCache(q)
	cache.Refresh()

	prices, status := cache.Snapshot()
	if status == "Loading..." {
		t.Fatal("expected status to be replaced by refresh")
	}
	snap := prices["NIFTY_50"]
	if snap.Price == nil || *snap.Price != 19725.20 {
		t.Fatalf("unexpected price: %v", snap.Price)
	}
	if snap.Difference == nil || *snap.Difference != 24.50 {
		t.Fatalf("unexpected difference: %v", snap.Difference)
	}
	if snap.Direction != models.DirectionUp {
		t.Fatalf("expected UP, got %s", snap.Direction)
	}
}

func TestRefreshPerFieldFallback(t *testing.T) {
	q := &scriptedQuoter{results: map[string]quoteResult{
		"NIFTY_50:INDEXNSE": {price: fv(100), close: fv(99)},
	}}
	cache := newTestCache(q)
	cache.Refresh()

	// Next cycle the price scrape fails but previous close still arrives.
	q.results["NIFTY_50:INDEXNSE"] = quoteResult{price: nil, close: fv(98)}
	cache.Refresh()

	prices, _ := cache.Snapshot()
	snap := prices["NIFTY_50"]
	if snap.Price == nil || *snap.Price != 100 {
		t.Fatalf("expected retained price 100, got %v", snap.Price)
	}
	if snap.PreviousClose == nil || *snap.PreviousClose != 98 {
		t.Fatalf("expected fresh previous close 98, got %v", snap.PreviousClose)
	}
	if snap.Direction != models.DirectionUp {
		t.Fatalf("expected UP from 100 vs 98, got %s", snap.Direction)
	}
}

func TestRefreshUnknownWhenNoHistory(t *testing.T) {
	q := &scriptedQuoter{results: map[string]quoteResult{
		"NIFTY_50:INDEXNSE": {err: errors.New("scrape failed")},
	}}
	cache := newTestCache(q)
	cache.Refresh()

	prices, _ := cache.Snapshot()
	snap := prices["NIFTY_50"]
	if snap.Price != nil || snap.PreviousClose != nil || snap.Difference != nil {
		t.Fatalf("expected all fields unknown, got %+v", snap)
	}
	if snap.Direction != models.DirectionUnknown {
		t.Fatalf("expected UNKNOWN, got %s", snap.Direction)
	}
}

func TestRefreshFlatDirection(t *testing.T) {
	q := &scriptedQuoter{results: map[string]quoteResult{
		"NIFTY_50:INDEXNSE": {price: fv(100), close: fv(100)},
	}}
	cache := newTestCache(q)
	cache.Refresh()

	prices, _ := cache.Snapshot()
	if got := prices["NIFTY_50"].Direction; got != models.DirectionFlat {
		t.Fatalf("expected FLAT, got %s", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	q := &scriptedQuoter{results: map[string]quoteResult{
		"NIFTY_50:INDEXNSE": {price: fv(100), close: fv(99)},
	}}
	cache := newTestCache(q)
	cache.Refresh()

	prices, _ := cache.Snapshot()
	prices["NIFTY_50"] = models.IndexSnapshot{Direction: "TAMPERED"}

	again, _ := cache.Snapshot()
	if again["NIFTY_50"].Direction == "TAMPERED" {
		t.Fatal("snapshot must not share the internal map")
	}
}
