package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adwait222001/Market-Sutra/internal/services"
)

// LiveData serves the background-maintained index snapshot set. Requests
// never trigger a refresh; they only copy what the loop last committed.
func (a *API) LiveData(w http.ResponseWriter, r *http.Request) {
	prices, status := a.live.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"prices": prices,
		"status": status,
	})
}

// IndexPrice scrapes one index quote on demand. The exchange code may be
// passed explicitly or looked up from the index map by name.
func (a *API) IndexPrice(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	exchange := strings.TrimSpace(r.URL.Query().Get("symbol"))

	if exchange == "" {
		if name == "" {
			writeError(w, http.StatusBadRequest, "Please provide a 'name' parameter")
			return
		}
		entry, ok := a.dir.IndexByName(name)
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{
				"error": fmt.Sprintf("Index '%s' not found", name),
			})
			return
		}
		exchange = entry.Exchange
	}

	symbolCode := exchange
	if name != "" {
		symbolCode = name + ":" + exchange
	}

	ctx, cancel := timeboxed(r, a.cfg.ScrapeTimeout)
	defer cancel()
	price, _, err := a.idx.FetchPriceAndClose(ctx, symbolCode)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"error": fmt.Sprintf("Error fetching %s: %v", symbolCode, err),
		})
		return
	}

	status := "CLOSED"
	if services.MarketOpen(time.Now()) {
		status = "OPEN"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"price":         price,
		"market_status": status,
		"symbol_code":   symbolCode,
		"timestamp":     nowStamp(),
	})
}
