package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/adwait222001/Market-Sutra/internal/config"
	"github.com/adwait222001/Market-Sutra/internal/models"
)

// HistoryClient fetches daily and weekly closing bars from the Yahoo
// Finance chart API.
type HistoryClient struct {
	hc        *http.Client
	baseURL   string
	suffix    string
	userAgent string
	dir       *DirectoryClient
}

func NewHistoryClient(cfg config.Config, dir *DirectoryClient) *HistoryClient {
	return &HistoryClient{
		hc:        &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:   cfg.YahooBaseURL,
		suffix:    cfg.SymbolSuffix,
		userAgent: cfg.UserAgent,
		dir:       dir,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *HistoryClient) fetchChart(ctx context.Context, ticker, interval, rng string) ([]models.HistoryPoint, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.baseURL, url.PathEscape(ticker), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, upstreamErr("history provider", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, upstreamErr("history provider", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, upstreamStatusErr("history provider", res.StatusCode)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, upstreamErr("history provider", err)
	}
	if chart.Chart.Error != nil {
		return nil, upstreamErr("history provider", fmt.Errorf("%s", chart.Chart.Error.Description))
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	points := make([]models.HistoryPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null bars: holidays, halted sessions
		}
		points = append(points, models.HistoryPoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// rangeForDays buckets a buffered day window into the closest chart range.
func rangeForDays(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}

// FetchHistory returns the most recent window daily closes for a bare
// equity symbol, chronological. Requests a buffered range to absorb
// weekends and holidays, then trims. A series shorter than window is
// left-padded with the earliest close; no data at all yields an empty
// series. Upstream failures degrade to empty, logged not raised.
func (c *HistoryClient) FetchHistory(ctx context.Context, symbol string, window int) []models.HistoryPoint {
	ticker := strings.ToUpper(strings.TrimSpace(symbol)) + c.suffix
	points, err := c.fetchChart(ctx, ticker, "1d", rangeForDays(window+10))
	if err != nil {
		log.Printf("[WARN] history fetch failed for %s: %v", ticker, err)
		return nil
	}
	return normalizeWindow(points, window)
}

func normalizeWindow(points []models.HistoryPoint, window int) []models.HistoryPoint {
	if len(points) == 0 || window <= 0 {
		return nil
	}
	if len(points) > window {
		points = points[len(points)-window:]
	}
	for len(points) < window {
		points = append([]models.HistoryPoint{points[0]}, points...)
	}
	return points
}

// FetchIndexSeries returns exactly window daily closes for an upstream
// ticker. When the chart returns nothing it repeats the current single-day
// price window times if one is obtainable, else returns window zeros.
func (c *HistoryClient) FetchIndexSeries(ctx context.Context, ticker string, window int) []float64 {
	points, err := c.fetchChart(ctx, ticker, "1d", rangeForDays(window+10))
	if err != nil {
		log.Printf("[WARN] index history fetch failed for %s: %v", ticker, err)
	}
	if len(points) == 0 {
		if current, ok := c.currentClose(ctx, ticker); ok {
			series := make([]float64, window)
			for i := range series {
				series[i] = current
			}
			return series
		}
		return make([]float64, window)
	}
	points = normalizeWindow(points, window)
	series := make([]float64, 0, len(points))
	for _, p := range points {
		series = append(series, p.Close)
	}
	return series
}

func (c *HistoryClient) currentClose(ctx context.Context, ticker string) (float64, bool) {
	points, err := c.fetchChart(ctx, ticker, "1d", "1d")
	if err != nil || len(points) == 0 {
		return 0, false
	}
	return points[len(points)-1].Close, true
}

// FetchIndexHistory resolves an index name through the index map before
// fetching its series. Unknown names are the only error.
func (c *HistoryClient) FetchIndexHistory(ctx context.Context, indexName string, window int) ([]float64, error) {
	entry, ok := c.dir.IndexByName(indexName)
	if !ok {
		return nil, ErrNotFound
	}
	return c.FetchIndexSeries(ctx, entry.Ticker, window), nil
}

// Fetch25WeekSeries returns every daily close over roughly the last 25
// weeks, untrimmed, for charting.
func (c *HistoryClient) Fetch25WeekSeries(ctx context.Context, symbol string) []models.HistoryPoint {
	ticker := strings.ToUpper(strings.TrimSpace(symbol)) + c.suffix
	points, err := c.fetchChart(ctx, ticker, "1d", "6mo")
	if err != nil {
		log.Printf("[WARN] 25-week fetch failed for %s: %v", ticker, err)
		return nil
	}
	return points
}
