package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adwait222001/Market-Sutra/internal/config"
)

func newQuotesClient(t *testing.T, handler http.HandlerFunc) *QuotesClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.Config{
		YahooBaseURL:   srv.URL,
		SymbolSuffix:   ".NS",
		UserAgent:      "test",
		StatementTTL:   time.Minute,
		RequestTimeout: 2 * time.Second,
	}
	return NewQuotesClient(cfg, NewMemoryCache())
}

func summaryBody(result string) string {
	return fmt.Sprintf(`{"quoteSummary":{"result":[%s],"error":null}}`, result)
}

func TestFetchQuoteParsesPriceModule(t *testing.T) {
	client := newQuotesClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/RELIANCE.NS") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(summaryBody(`{
			"price": {
				"regularMarketPrice": {"raw": 2456.789},
				"regularMarketPreviousClose": {"raw": 2440.10},
				"marketCap": {"raw": 1660000000000}
			}
		}`)))
	})

	quote, err := client.FetchQuote(context.Background(), "reliance")
	if err != nil {
		t.Fatal(err)
	}
	if quote.Symbol != "RELIANCE" {
		t.Fatalf("expected normalized symbol, got %q", quote.Symbol)
	}
	if quote.Price == nil || *quote.Price != 2456.79 {
		t.Fatalf("expected price 2456.79, got %v", quote.Price)
	}
	if quote.PreviousClose == nil || *quote.PreviousClose != 2440.10 {
		t.Fatalf("expected previous close 2440.10, got %v", quote.PreviousClose)
	}
	if quote.MarketCap == nil || *quote.MarketCap != 1.66e12 {
		t.Fatalf("expected market cap 1.66e12, got %v", quote.MarketCap)
	}
}

func TestFetchQuoteStaleFallback(t *testing.T) {
	var fail atomic.Bool
	client := newQuotesClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(summaryBody(`{"price": {"regularMarketPrice": {"raw": 100}}}`)))
	})

	first, err := client.FetchQuote(context.Background(), "TCS")
	if err != nil {
		t.Fatal(err)
	}
	if first.Price == nil || *first.Price != 100 {
		t.Fatalf("expected fresh price 100, got %v", first.Price)
	}

	fail.Store(true)
	second, err := client.FetchQuote(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("stale fallback should suppress the error, got %v", err)
	}
	if second.Price == nil || *second.Price != 100 {
		t.Fatalf("expected stale price 100, got %v", second.Price)
	}

	// A symbol never seen before has nothing to fall back on.
	if _, err := client.FetchQuote(context.Background(), "INFY"); err == nil {
		t.Fatal("expected error for uncached symbol")
	}
}

func TestFormatMarketCap(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{fv(2.5e12), "2.50T"},
		{fv(8.1e9), "8.10B"},
		{fv(3.25e6), "3.25M"},
		{fv(950_000), "950000"},
		{nil, "N/A"},
	}
	for _, c := range cases {
		if got := FormatMarketCap(c.in); got != c.want {
			t.Errorf("FormatMarketCap(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPERatio(t *testing.T) {
	client := newQuotesClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(summaryBody(`{
			"price": {"regularMarketPrice": {"raw": 250}},
			"defaultKeyStatistics": {"sharesOutstanding": {"raw": 1000000}},
			"incomeStatementHistory": {"incomeStatementHistory": [
				{"endDate": {"raw": 1711843200}, "netIncome": {"raw": 10000000}}
			]}
		}`)))
	})

	pe, err := client.PERatio(context.Background(), "TCS")
	if err != nil {
		t.Fatal(err)
	}
	// 250 / (10_000_000 / 1_000_000) = 25
	if pe == nil || *pe != 25 {
		t.Fatalf("expected P/E 25, got %v", pe)
	}
}

func TestPERatioMissingInputs(t *testing.T) {
	client := newQuotesClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(summaryBody(`{"price": {"regularMarketPrice": {"raw": 250}}}`)))
	})

	pe, err := client.PERatio(context.Background(), "TCS")
	if err != nil {
		t.Fatal(err)
	}
	if pe != nil {
		t.Fatalf("expected nil P/E with missing fundamentals, got %v", *pe)
	}
}

func TestFetchProfileDefaults(t *testing.T) {
	client := newQuotesClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(summaryBody(`{
			"assetProfile": {"sector": "Technology"},
			"price": {"exchangeName": "NSI"}
		}`)))
	})

	profile, err := client.FetchProfile(context.Background(), "INFOSYS LIMITED", "INFY")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Sector != "Technology" || profile.Exchange != "NSI" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if profile.Description != "No description available." || profile.Country != "Unknown" {
		t.Fatalf("expected placeholder fields, got %+v", profile)
	}
}

func TestFetchStatementsSkipsAbsentKeys(t *testing.T) {
	// endDate 2024-03-31 UTC
	client := newQuotesClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(summaryBody(`{
			"balanceSheetHistory": {"balanceSheetStatements": [
				{"endDate": {"raw": 1711843200},
				 "totalAssets": {"raw": 500000000},
				 "cash": {"raw": null}}
			]},
			"incomeStatementHistory": {"incomeStatementHistory": [
				{"endDate": {"raw": 1711843200},
				 "netIncome": {"raw": 90000000}}
			]}
		}`)))
	})

	balance, income, err := client.FetchStatements(context.Background(), "INFY")
	if err != nil {
		t.Fatal(err)
	}
	if len(balance.Columns) != 1 || balance.Columns[0].Year != "2024" {
		t.Fatalf("unexpected balance columns: %+v", balance.Columns)
	}
	items := balance.Columns[0].Items
	if len(items) != 2 {
		t.Fatalf("expected only the 2 present fields, got %d", len(items))
	}
	if items[0].Name != "Total Assets" || items[0].Value == nil || *items[0].Value != 5e8 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	// Present-but-null keys survive as nil so they render as "nan Cr".
	if items[1].Name != "Cash" || items[1].Value != nil {
		t.Fatalf("expected nil Cash item, got %+v", items[1])
	}
	if len(income.Columns) != 1 || income.Columns[0].Items[0].Name != "Net Income" {
		t.Fatalf("unexpected income statement: %+v", income.Columns)
	}
}

func TestFetchStatementsServedFromCache(t *testing.T) {
	var hits int32
	client := newQuotesClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(summaryBody(`{
			"balanceSheetHistory": {"balanceSheetStatements": [
				{"endDate": {"raw": 1711843200}, "totalAssets": {"raw": 1}}
			]}
		}`)))
	})

	if _, _, err := client.FetchStatements(context.Background(), "INFY"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := client.FetchStatements(context.Background(), "INFY"); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", got)
	}
}

func TestFetchQuoteUpstreamError(t *testing.T) {
	client := newQuotesClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	})

	quote, err := client.FetchQuote(context.Background(), "BOGUS")
	if err == nil {
		t.Fatal("expected error from upstream error envelope")
	}
	if quote.Price != nil {
		t.Fatalf("expected no price, got %v", *quote.Price)
	}
}
