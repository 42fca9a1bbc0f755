package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	DirectoryURL    string
	IndexMapPath    string
	YahooBaseURL    string
	GoogleBaseURL   string
	RedisURL        string
	SymbolSuffix    string
	UserAgent       string
	DirectoryTTL    time.Duration
	StatementTTL    time.Duration
	RequestTimeout  time.Duration
	ScrapeTimeout   time.Duration
	RefreshInterval time.Duration
	RateLimitPerMin int
	TrackedIndexes  []string
}

func Load() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		DirectoryURL:    getEnv("SYMBOL_DIRECTORY_URL", "https://nsearchives.nseindia.com/content/equities/EQUITY_L.csv"),
		IndexMapPath:    getEnv("INDEX_SYMBOLS_PATH", "index_symbols.yaml"),
		YahooBaseURL:    getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		GoogleBaseURL:   getEnv("GOOGLE_FINANCE_BASE_URL", "https://www.google.com/finance"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		SymbolSuffix:    getEnv("SYMBOL_SUFFIX", ".NS"),
		UserAgent:       getEnv("UPSTREAM_USER_AGENT", "Mozilla/5.0"),
		DirectoryTTL:    getEnvDuration("DIRECTORY_TTL", 300*time.Second),
		StatementTTL:    getEnvDuration("STATEMENT_TTL", 600*time.Second),
		RequestTimeout:  getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		ScrapeTimeout:   getEnvDuration("SCRAPE_TIMEOUT", 5*time.Second),
		RefreshInterval: getEnvDuration("LIVE_REFRESH_INTERVAL", 60*time.Second),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 120),
		TrackedIndexes: getEnvList("TRACKED_INDEXES", []string{
			"NIFTY_50", "SENSEX", "NIFTY_PHARMA", "BSE-BANK", "NIFTY_BANK", "BSE-HC",
		}),
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(i) * time.Second
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
