package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/adwait222001/Market-Sutra/internal/services"
)

// priceMatchCutoff is looser than the listing threshold: /price queries are
// already ticker-shaped, so a weak match is still worth trying.
const priceMatchCutoff = 50

func (a *API) Price(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "Please provide a 'symbol' parameter")
		return
	}

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()
	pool, err := a.dir.Equities(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	match, ok, _ := services.ResolveOne(symbol, pool, services.ScopeSymbols)
	if !ok || match.Confidence < priceMatchCutoff {
		writeError(w, http.StatusNotFound, "Symbol not found or match score too low")
		return
	}

	quote, err := a.quotes.FetchQuote(ctx, match.Entry.Symbol)
	if err != nil || quote.Price == nil {
		writeError(w, http.StatusBadGateway, "Could not fetch current price")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":        match.Entry.Symbol,
		"price":         quote.Price,
		"market_cap":    services.FormatMarketCap(quote.MarketCap),
		"market_status": marketStatusLabel(quote.MarketOpen),
	})
}

func (a *API) MarketCap(w http.ResponseWriter, r *http.Request) {
	company := strings.TrimSpace(r.URL.Query().Get("company"))
	if company == "" {
		writeError(w, http.StatusBadRequest, "Company name is required")
		return
	}

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()
	pool, err := a.dir.Equities(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	match, ok, _ := services.ResolveOne(company, pool, services.ScopeAll)
	if !ok {
		writeError(w, http.StatusNotFound, "Company not found")
		return
	}

	quote, err := a.quotes.FetchQuote(ctx, match.Entry.Symbol)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Reported in thousands, per the consuming dashboard's scale.
	var marketCap *float64
	if quote.MarketCap != nil {
		scaled := round2(*quote.MarketCap / 1000)
		marketCap = &scaled
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"company":    company,
		"symbol":     match.Entry.Symbol,
		"market_cap": marketCap,
	})
}

func (a *API) LivePE(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Missing 'query' parameter.")
		return
	}

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()
	pool, err := a.dir.Equities(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	match, ok, low := services.ResolveOne(query, pool, services.ScopeAll)
	if !ok || low {
		writeError(w, http.StatusNotFound, "No matching company found")
		return
	}

	pe, err := a.quotes.PERatio(ctx, match.Entry.Symbol)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if pe == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Could not calculate P/E for %s", match.Entry.Symbol))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"company":  match.Entry.Name,
		"symbol":   match.Entry.Symbol,
		"pe_ratio": *pe,
	})
}

func marketStatusLabel(open bool) string {
	if open {
		return "Open"
	}
	return "Closed"
}
