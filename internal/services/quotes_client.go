package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/adwait222001/Market-Sutra/internal/config"
	"github.com/adwait222001/Market-Sutra/internal/models"
)

// QuotesClient fetches live quote, profile and fundamentals data for one
// symbol at a time from the Yahoo quote-summary API.
type QuotesClient struct {
	hc        *http.Client
	cache     Cache
	baseURL   string
	suffix    string
	userAgent string
	stmtTTL   time.Duration

	mu   sync.Mutex
	last map[string]models.Quote
}

func NewQuotesClient(cfg config.Config, cache Cache) *QuotesClient {
	return &QuotesClient{
		hc:        &http.Client{Timeout: cfg.RequestTimeout},
		cache:     cache,
		baseURL:   cfg.YahooBaseURL,
		suffix:    cfg.SymbolSuffix,
		userAgent: cfg.UserAgent,
		stmtTTL:   cfg.StatementTTL,
		last:      make(map[string]models.Quote),
	}
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

type rawPeriod map[string]json.RawMessage

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				RegularMarketPrice         rawValue `json:"regularMarketPrice"`
				RegularMarketPreviousClose rawValue `json:"regularMarketPreviousClose"`
				MarketCap                  rawValue `json:"marketCap"`
				ExchangeName               string   `json:"exchangeName"`
			} `json:"price"`
			AssetProfile *struct {
				LongBusinessSummary string `json:"longBusinessSummary"`
				Country             string `json:"country"`
				Sector              string `json:"sector"`
			} `json:"assetProfile"`
			DefaultKeyStatistics *struct {
				SharesOutstanding rawValue `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			BalanceSheetHistory *struct {
				Statements []rawPeriod `json:"balanceSheetStatements"`
			} `json:"balanceSheetHistory"`
			IncomeStatementHistory *struct {
				Statements []rawPeriod `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (c *QuotesClient) fetchSummary(ctx context.Context, symbol string, modules ...string) (*quoteSummaryResponse, error) {
	ticker := strings.ToUpper(strings.TrimSpace(symbol)) + c.suffix
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(ticker), strings.Join(modules, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, upstreamErr("quote provider", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, upstreamStatusErr("quote provider", res.StatusCode)
	}

	var out quoteSummaryResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, upstreamErr("quote provider", err)
	}
	if out.QuoteSummary.Error != nil {
		return nil, upstreamErr("quote provider", fmt.Errorf("%s", out.QuoteSummary.Error.Description))
	}
	if len(out.QuoteSummary.Result) == 0 {
		return nil, upstreamErr("quote provider", fmt.Errorf("empty result for %s", ticker))
	}
	return &out, nil
}

// FetchQuote returns the live quote for a bare exchange symbol. Individual
// missing fields stay nil; a total upstream failure falls back to the last
// good quote for the symbol before surfacing an error.
func (c *QuotesClient) FetchQuote(ctx context.Context, symbol string) (models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	quote := models.Quote{Symbol: symbol, MarketOpen: MarketOpen(time.Now())}

	summary, err := c.fetchSummary(ctx, symbol, "price")
	if err != nil {
		c.mu.Lock()
		stale, ok := c.last[symbol]
		c.mu.Unlock()
		if ok {
			stale.MarketOpen = quote.MarketOpen
			return stale, nil
		}
		return quote, err
	}

	if p := summary.QuoteSummary.Result[0].Price; p != nil {
		quote.Price = roundPtr(p.RegularMarketPrice.Raw, 2)
		quote.PreviousClose = roundPtr(p.RegularMarketPreviousClose.Raw, 2)
		quote.MarketCap = p.MarketCap.Raw
	}

	if quote.Price != nil {
		c.mu.Lock()
		c.last[symbol] = quote
		c.mu.Unlock()
	}
	return quote, nil
}

// FormatMarketCap renders a raw market cap with a magnitude suffix:
// trillions, billions or millions, two decimals; "N/A" when unknown.
func FormatMarketCap(v *float64) string {
	if v == nil {
		return "N/A"
	}
	switch {
	case *v >= 1e12:
		return fmt.Sprintf("%.2fT", *v/1e12)
	case *v >= 1e9:
		return fmt.Sprintf("%.2fB", *v/1e9)
	case *v >= 1e6:
		return fmt.Sprintf("%.2fM", *v/1e6)
	default:
		return fmt.Sprintf("%.0f", *v)
	}
}

// FetchProfile returns the descriptive company block, with placeholder text
// for whatever the upstream omits.
func (c *QuotesClient) FetchProfile(ctx context.Context, company, symbol string) (models.CompanyProfile, error) {
	profile := models.CompanyProfile{
		Company:     company,
		Symbol:      symbol,
		Description: "No description available.",
		Country:     "Unknown",
		Sector:      "Unknown",
		Exchange:    "Unknown",
	}
	summary, err := c.fetchSummary(ctx, symbol, "assetProfile", "price")
	if err != nil {
		return profile, err
	}
	result := summary.QuoteSummary.Result[0]
	if ap := result.AssetProfile; ap != nil {
		if ap.LongBusinessSummary != "" {
			profile.Description = ap.LongBusinessSummary
		}
		if ap.Country != "" {
			profile.Country = ap.Country
		}
		if ap.Sector != "" {
			profile.Sector = ap.Sector
		}
	}
	if p := result.Price; p != nil && p.ExchangeName != "" {
		profile.Exchange = p.ExchangeName
	}
	return profile, nil
}

// PERatio computes price / (latest net income / shares outstanding), rounded
// to two decimals. Nil when any input is missing.
func (c *QuotesClient) PERatio(ctx context.Context, symbol string) (*float64, error) {
	summary, err := c.fetchSummary(ctx, symbol, "price", "defaultKeyStatistics", "incomeStatementHistory")
	if err != nil {
		return nil, err
	}
	result := summary.QuoteSummary.Result[0]

	var price, shares, netIncome *float64
	if result.Price != nil {
		price = result.Price.RegularMarketPrice.Raw
	}
	if result.DefaultKeyStatistics != nil {
		shares = result.DefaultKeyStatistics.SharesOutstanding.Raw
	}
	if ish := result.IncomeStatementHistory; ish != nil && len(ish.Statements) > 0 {
		netIncome = periodValue(ish.Statements[0], "netIncome")
	}

	if price == nil || shares == nil || netIncome == nil || *shares == 0 || *netIncome == 0 {
		return nil, nil
	}
	earnings := *netIncome / *shares
	pe := math.Round(*price / earnings * 100) / 100
	return &pe, nil
}

// Ordered line items extracted from the upstream statements. The order here
// is the "original order" the normalizer preserves after priority keys.
var balanceSheetFields = []statementField{
	{"totalAssets", "Total Assets"},
	{"totalLiab", "Total Liab"},
	{"totalStockholderEquity", "Total Stockholder Equity"},
	{"cash", "Cash"},
	{"shortTermInvestments", "Short Term Investments"},
	{"netReceivables", "Net Receivables"},
	{"inventory", "Inventory"},
	{"totalCurrentAssets", "Total Current Assets"},
	{"totalCurrentLiabilities", "Total Current Liabilities"},
	{"longTermDebt", "Long Term Debt"},
	{"shortLongTermDebt", "Short Long Term Debt"},
	{"propertyPlantEquipment", "Property Plant Equipment"},
	{"retainedEarnings", "Retained Earnings"},
	{"commonStock", "Common Stock"},
	{"goodWill", "Good Will"},
	{"intangibleAssets", "Intangible Assets"},
}

var incomeStatementFields = []statementField{
	{"operatingRevenue", "Operating Revenue"},
	{"operatingIncome", "Operating Income"},
	{"netIncome", "Net Income"},
	{"grossProfit", "Gross Profit"},
	{"totalRevenue", "Total Revenue"},
}

type statementField struct {
	key   string
	label string
}

// FetchStatements returns the raw multi-year balance sheet and income
// statement for a symbol. Either table may come back empty without error;
// the normalizer decides whether that is fatal.
func (c *QuotesClient) FetchStatements(ctx context.Context, symbol string) (models.RawStatement, models.RawStatement, error) {
	cacheKey := "statements:v1:" + strings.ToUpper(symbol)
	if c.cache != nil {
		if b, ok := c.cache.Get(ctx, cacheKey); ok {
			var cached [2]models.RawStatement
			if err := UnmarshalCache(b, &cached); err == nil {
				return cached[0], cached[1], nil
			}
		}
	}

	summary, err := c.fetchSummary(ctx, symbol, "balanceSheetHistory", "incomeStatementHistory")
	if err != nil {
		return models.RawStatement{}, models.RawStatement{}, err
	}
	result := summary.QuoteSummary.Result[0]

	var balance, income models.RawStatement
	if bh := result.BalanceSheetHistory; bh != nil {
		balance = statementFromPeriods(bh.Statements, balanceSheetFields)
	}
	if ih := result.IncomeStatementHistory; ih != nil {
		income = statementFromPeriods(ih.Statements, incomeStatementFields)
	}

	if c.cache != nil && (!balance.Empty() || !income.Empty()) {
		if b, err := MarshalCache([2]models.RawStatement{balance, income}); err == nil {
			_ = c.cache.Set(ctx, cacheKey, b, c.stmtTTL)
		}
	}
	return balance, income, nil
}

func statementFromPeriods(periods []rawPeriod, fields []statementField) models.RawStatement {
	var out models.RawStatement
	for _, period := range periods {
		year := periodYear(period)
		if year == "" {
			continue
		}
		col := models.RawColumn{Year: year}
		for _, f := range fields {
			if _, present := period[f.key]; !present {
				continue
			}
			col.Items = append(col.Items, models.RawItem{
				Name:  f.label,
				Value: periodValue(period, f.key),
			})
		}
		if len(col.Items) == 0 {
			continue
		}
		out.Columns = append(out.Columns, col)
	}
	return out
}

func periodYear(period rawPeriod) string {
	raw, ok := period["endDate"]
	if !ok {
		return ""
	}
	var end rawValue
	if err := json.Unmarshal(raw, &end); err != nil || end.Raw == nil {
		return ""
	}
	return fmt.Sprintf("%d", time.Unix(int64(*end.Raw), 0).UTC().Year())
}

func periodValue(period rawPeriod, key string) *float64 {
	raw, ok := period[key]
	if !ok {
		return nil
	}
	var v rawValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v.Raw
}

func roundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	factor := math.Pow(10, float64(places))
	r := math.Round(*v*factor) / factor
	return &r
}
