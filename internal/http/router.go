package http

import (
	"net/http"

	"github.com/adwait222001/Market-Sutra/internal/config"
	"github.com/adwait222001/Market-Sutra/internal/handlers"
)

func NewRouter(cfg config.Config, api *handlers.API) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", api.Health)
	mux.HandleFunc("/match", api.Match)
	mux.HandleFunc("/match_index", api.MatchIndex)
	mux.HandleFunc("/price", api.Price)
	mux.HandleFunc("/finance", api.Finance)
	mux.HandleFunc("/balancesheet", api.BalanceSheet)
	mux.HandleFunc("/weekprice", api.WeekPrice)
	mux.HandleFunc("/25weekprice", api.TwentyFiveWeekPrice)
	mux.HandleFunc("/historical_prices", api.HistoricalPrices)
	mux.HandleFunc("/four-group", api.FourGroup)
	mux.HandleFunc("/livedata", api.LiveData)
	mux.HandleFunc("/index-price", api.IndexPrice)
	mux.HandleFunc("/livepe", api.LivePE)
	mux.HandleFunc("/marketcap", api.MarketCap)

	h := http.Handler(mux)
	h = withRecovery(h)
	h = withLogging(h)
	h = withRateLimit(cfg.RateLimitPerMin)(h)
	h = withCORS(h)
	return h
}
