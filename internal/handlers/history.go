package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/adwait222001/Market-Sutra/internal/models"
)

// WeekPrice serves the last 7 trading days of closes for one symbol.
func (a *API) WeekPrice(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "Missing 'symbol' parameter.")
		return
	}

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()
	points := a.history.FetchHistory(ctx, symbol, 7)
	if len(points) == 0 {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("No trading data available for %s%s.", symbol, a.cfg.SymbolSuffix))
		return
	}

	days := make([]map[string]any, 0, len(points))
	for _, p := range points {
		days = append(days, map[string]any{
			"date":          p.Date.Format("2006-01-02"),
			"day":           p.Date.Format("Mon"),
			"closing_price": round2(p.Close),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":      symbol,
		"last_7_days": days,
	})
}

// TwentyFiveWeekPrice serves every daily close of the last 25 weeks.
func (a *API) TwentyFiveWeekPrice(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "Missing 'symbol' parameter.")
		return
	}

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()
	points := a.history.Fetch25WeekSeries(ctx, symbol)
	if len(points) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No data available for %s", symbol))
		return
	}

	prices := make([]map[string]any, 0, len(points))
	for _, p := range points {
		prices = append(prices, map[string]any{
			"week":          p.Date.Format("02-Jan"),
			"closing_price": p.Close,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":      symbol,
		"data_points": len(prices),
		"prices":      prices,
	})
}

// HistoricalPrices serves the normalized 25-day close series for an index.
func (a *API) HistoricalPrices(w http.ResponseWriter, r *http.Request) {
	indexName := strings.TrimSpace(r.URL.Query().Get("index_name"))
	if indexName == "" {
		writeError(w, http.StatusBadRequest, "Please provide index_name as a query parameter")
		return
	}

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()
	prices, err := a.history.FetchIndexHistory(ctx, indexName, 25)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No 25-week data found for %s", indexName))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"index_name":     indexName,
		"25_week_prices": prices,
	})
}

// FourGroup splits the whole index map into four contiguous groups and
// returns each index's 25-day close series.
func (a *API) FourGroup(w http.ResponseWriter, r *http.Request) {
	indexes, err := a.dir.Indexes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load symbols: %v", err))
		return
	}

	groupSize := (len(indexes) + 3) / 4

	resp := make(map[string]any, 4)
	for g := 0; g < 4; g++ {
		start := g * groupSize
		end := start + groupSize
		if start > len(indexes) {
			start = len(indexes)
		}
		if end > len(indexes) {
			end = len(indexes)
		}
		group := make(map[string][]float64, end-start)
		for _, entry := range groupEntries(indexes, start, end) {
			ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
			group[entry.Name] = a.history.FetchIndexSeries(ctx, entry.Ticker, 25)
			cancel()
		}
		resp[fmt.Sprintf("group_%d", g+1)] = group
	}
	writeJSON(w, http.StatusOK, resp)
}

func groupEntries(indexes []models.IndexEntry, start, end int) []models.IndexEntry {
	if start >= end {
		return nil
	}
	return indexes[start:end]
}
