package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/adwait222001/Market-Sutra/internal/config"
)

// Google Finance quote-page anchors. Brittle on purpose: when the markup
// changes the fields come back nil and callers fall back to cached values.
const (
	priceSelector = "div.YMlKec.fxKbKc"
	labelSelector = "div.mfs7Fc"
	valueSelector = "div.P6K39c"
)

// IndexQuoteClient scrapes current price and previous close for an index
// from its Google Finance quote page.
type IndexQuoteClient struct {
	hc        *http.Client
	baseURL   string
	userAgent string
}

func NewIndexQuoteClient(cfg config.Config) *IndexQuoteClient {
	return &IndexQuoteClient{
		hc:        &http.Client{Timeout: cfg.ScrapeTimeout},
		baseURL:   cfg.GoogleBaseURL,
		userAgent: cfg.UserAgent,
	}
}

// FetchPriceAndClose scrapes one quote page, e.g. symbolCode
// "NIFTY_50:INDEXNSE". Either field may come back nil; a transport or parse
// failure returns both nil with the error.
func (c *IndexQuoteClient) FetchPriceAndClose(ctx context.Context, symbolCode string) (price, previousClose *float64, err error) {
	u := fmt.Sprintf("%s/quote/%s", c.baseURL, url.PathEscape(symbolCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, nil, upstreamErr("index quote page", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, nil, upstreamStatusErr("index quote page", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, nil, upstreamErr("index quote page", err)
	}

	if text := doc.Find(priceSelector).First().Text(); text != "" {
		price = parseQuoteNumber(text)
	}

	doc.Find(labelSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(s.Text()), "previous close") {
			return true
		}
		if text := s.Parent().Find(valueSelector).First().Text(); text != "" {
			previousClose = parseQuoteNumber(text)
		}
		return false
	})

	return price, previousClose, nil
}

func parseQuoteNumber(text string) *float64 {
	cleaned := strings.NewReplacer(",", "", "₹", "", "$", "").Replace(strings.TrimSpace(text))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}
