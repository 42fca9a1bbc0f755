package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adwait222001/Market-Sutra/internal/config"
	"github.com/adwait222001/Market-Sutra/internal/models"
)

const directoryCacheKey = "directory:v1"

// DirectoryClient loads the canonical symbol directory: the exchange equity
// flat file over HTTP and the on-disk index-symbol map.
type DirectoryClient struct {
	hc        *http.Client
	cache     Cache
	ttl       time.Duration
	url       string
	suffix    string
	userAgent string
	indexPath string

	mu      sync.Mutex
	indexes []models.IndexEntry
}

func NewDirectoryClient(cfg config.Config, cache Cache) *DirectoryClient {
	return &DirectoryClient{
		hc:        &http.Client{Timeout: cfg.RequestTimeout},
		cache:     cache,
		ttl:       cfg.DirectoryTTL,
		url:       cfg.DirectoryURL,
		suffix:    cfg.SymbolSuffix,
		userAgent: cfg.UserAgent,
		indexPath: cfg.IndexMapPath,
	}
}

// Equities fetches the full equity directory, re-parsed from the upstream
// CSV. Results are cached for the configured TTL; every expiry re-fetches
// the whole file.
func (c *DirectoryClient) Equities(ctx context.Context) ([]models.DirectoryEntry, error) {
	if c.cache != nil {
		if b, ok := c.cache.Get(ctx, directoryCacheKey); ok {
			var cached []models.DirectoryEntry
			if err := UnmarshalCache(b, &cached); err == nil && len(cached) > 0 {
				return cached, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, upstreamErr("symbol directory", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, upstreamStatusErr("symbol directory", res.StatusCode)
	}

	entries, err := parseDirectoryCSV(res.Body, c.suffix)
	if err != nil {
		return nil, upstreamErr("symbol directory", err)
	}

	if c.cache != nil {
		if b, err := MarshalCache(entries); err == nil {
			_ = c.cache.Set(ctx, directoryCacheKey, b, c.ttl)
		}
	}
	return entries, nil
}

func parseDirectoryCSV(r io.Reader, suffix string) ([]models.DirectoryEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	symbolCol, nameCol := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.ToUpper(col)) {
		case "SYMBOL":
			symbolCol = i
		case "NAME OF COMPANY":
			nameCol = i
		}
	}
	if symbolCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("directory csv missing SYMBOL or NAME OF COMPANY column")
	}

	var entries []models.DirectoryEntry
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) <= symbolCol || len(rec) <= nameCol {
			continue
		}
		symbol := strings.ToUpper(strings.TrimSpace(rec[symbolCol]))
		name := strings.ToUpper(strings.TrimSpace(rec[nameCol]))
		if symbol == "" || name == "" {
			continue
		}
		entries = append(entries, models.DirectoryEntry{
			Name:   name,
			Symbol: symbol,
			Suffix: suffix,
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("directory csv contained no rows")
	}
	return entries, nil
}

type indexMapFile struct {
	Indexes []models.IndexEntry `yaml:"indexes"`
}

// Indexes returns the index-symbol map, loaded from disk on first use and
// treated as read-only reference data afterwards.
func (c *DirectoryClient) Indexes() ([]models.IndexEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexes != nil {
		out := make([]models.IndexEntry, len(c.indexes))
		copy(out, c.indexes)
		return out, nil
	}

	data, err := os.ReadFile(c.indexPath)
	if err != nil {
		return nil, fmt.Errorf("load index map: %w", err)
	}
	var file indexMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse index map: %w", err)
	}
	if len(file.Indexes) == 0 {
		return nil, fmt.Errorf("index map %s is empty", c.indexPath)
	}
	c.indexes = file.Indexes

	out := make([]models.IndexEntry, len(c.indexes))
	copy(out, c.indexes)
	return out, nil
}

// IndexPool adapts the index map into directory entries so the resolver can
// match index names and tickers the same way it matches equities.
func (c *DirectoryClient) IndexPool() ([]models.DirectoryEntry, error) {
	indexes, err := c.Indexes()
	if err != nil {
		return nil, err
	}
	pool := make([]models.DirectoryEntry, 0, len(indexes))
	for _, ix := range indexes {
		pool = append(pool, models.DirectoryEntry{Name: ix.Name, Symbol: ix.Ticker})
	}
	return pool, nil
}

// IndexByName does an exact, case-insensitive lookup in the index map.
func (c *DirectoryClient) IndexByName(name string) (models.IndexEntry, bool) {
	indexes, err := c.Indexes()
	if err != nil {
		return models.IndexEntry{}, false
	}
	for _, ix := range indexes {
		if strings.EqualFold(ix.Name, name) {
			return ix, true
		}
	}
	return models.IndexEntry{}, false
}
