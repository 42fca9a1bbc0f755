package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/adwait222001/Market-Sutra/internal/config"
	"github.com/adwait222001/Market-Sutra/internal/services"
)

type API struct {
	cfg     config.Config
	dir     *services.DirectoryClient
	quotes  *services.QuotesClient
	history *services.HistoryClient
	idx     *services.IndexQuoteClient
	live    *services.LiveCache
}

func New(cfg config.Config, dir *services.DirectoryClient, quotes *services.QuotesClient,
	history *services.HistoryClient, idx *services.IndexQuoteClient, live *services.LiveCache) *API {
	return &API{
		cfg:     cfg,
		dir:     dir,
		quotes:  quotes,
		history: history,
		idx:     idx,
		live:    live,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// selection problems are the client's fault, missing entities are 404,
// upstream trouble is a gateway problem.
func writeServiceError(w http.ResponseWriter, err error) {
	var selErr *services.SelectionError
	if errors.As(err, &selErr) {
		writeError(w, http.StatusBadRequest, selErr.Message)
		return
	}
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if errors.Is(err, services.ErrNoFinancialData) {
		writeError(w, http.StatusNotFound, "No financial data available.")
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusGatewayTimeout, "upstream timeout")
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		writeError(w, http.StatusGatewayTimeout, "upstream timeout")
		return
	}
	var upErr *services.UpstreamError
	if errors.As(err, &upErr) {
		writeError(w, http.StatusBadGateway, upErr.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func timeboxed(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

func round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}

func nowStamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
