package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// DirectoryEntry is one row of the exchange symbol directory.
type DirectoryEntry struct {
	Name   string `json:"company"`
	Symbol string `json:"symbol"`
	Suffix string `json:"exchange_suffix,omitempty"`
}

// IndexEntry maps a tracked index name to its upstream identifiers:
// Ticker for the daily-bar provider, Exchange for the quote-page scrape.
type IndexEntry struct {
	Name     string `yaml:"name" json:"name"`
	Ticker   string `yaml:"ticker" json:"ticker"`
	Exchange string `yaml:"exchange" json:"exchange"`
}

// ResolutionCandidate is a directory entry paired with a 0-100 match score.
type ResolutionCandidate struct {
	Entry      DirectoryEntry `json:"entry"`
	Confidence int            `json:"confidence"`
}

// Quote carries the live fields for one symbol. Pointers are nil when the
// upstream omitted the field.
type Quote struct {
	Symbol        string   `json:"symbol"`
	Price         *float64 `json:"price"`
	PreviousClose *float64 `json:"previous_close"`
	MarketCap     *float64 `json:"market_cap"`
	MarketOpen    bool     `json:"market_open"`
}

// CompanyProfile is the descriptive block served alongside statements.
type CompanyProfile struct {
	Company     string `json:"company"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Country     string `json:"country"`
	Sector      string `json:"sector"`
	Exchange    string `json:"exchange"`
}

// Direction of an index move since the previous close.
const (
	DirectionUp      = "UP"
	DirectionDown    = "DOWN"
	DirectionFlat    = "FLAT"
	DirectionUnknown = "UNKNOWN"
)

// IndexSnapshot is one entry of the live-price cache.
type IndexSnapshot struct {
	Price         *float64 `json:"price"`
	PreviousClose *float64 `json:"previous_close"`
	Difference    *float64 `json:"difference"`
	Direction     string   `json:"direction"`
}

// HistoryPoint is a single daily close.
type HistoryPoint struct {
	Date  time.Time
	Close float64
}

// RawStatement is a multi-year statement table as returned by the upstream
// fundamentals provider, newest column first, line items in provider order.
type RawStatement struct {
	Columns []RawColumn
}

type RawColumn struct {
	Year  string
	Items []RawItem
}

type RawItem struct {
	Name  string
	Value *float64
}

func (s RawStatement) Empty() bool {
	return len(s.Columns) == 0
}

// StatementTable maps year labels to ordered, unit-converted line items.
type StatementTable map[string]LineItems

type LineItem struct {
	Key   string
	Value string
}

// LineItems preserves key order when serialized, which plain maps cannot.
type LineItems []LineItem

func (l LineItems) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(item.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(item.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
