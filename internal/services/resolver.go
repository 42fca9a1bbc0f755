package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/adwait222001/Market-Sutra/internal/models"
)

// AcceptThreshold is the confidence below which listing endpoints drop a
// candidate and single-match endpoints attach a warning.
const AcceptThreshold = 60

// DefaultResolveLimit caps the candidates returned by Resolve.
const DefaultResolveLimit = 10

// MatchScope selects which directory fields a query is scored against.
type MatchScope int

const (
	ScopeAll MatchScope = iota
	ScopeNames
	ScopeSymbols
)

func scoreEntry(query string, entry models.DirectoryEntry, scope MatchScope) int {
	best := 0
	if scope == ScopeAll || scope == ScopeNames {
		if s := fuzzy.WRatio(query, entry.Name); s > best {
			best = s
		}
	}
	if scope == ScopeAll || scope == ScopeSymbols {
		if s := fuzzy.WRatio(query, entry.Symbol); s > best {
			best = s
		}
	}
	return best
}

// Resolve scores the query against the pool and returns up to limit accepted
// candidates, descending by confidence, deduplicated by (name, symbol).
// Candidates scoring under AcceptThreshold are discarded.
func Resolve(query string, pool []models.DirectoryEntry, scope MatchScope, limit int) []models.ResolutionCandidate {
	if limit <= 0 {
		limit = DefaultResolveLimit
	}
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	seen := make(map[string]struct{}, len(pool))
	candidates := make([]models.ResolutionCandidate, 0, len(pool))
	for _, entry := range pool {
		key := entry.Name + "\x00" + entry.Symbol
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		score := scoreEntry(query, entry, scope)
		if score < AcceptThreshold {
			continue
		}
		candidates = append(candidates, models.ResolutionCandidate{Entry: entry, Confidence: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// ResolveOne returns the single best match regardless of threshold. The
// second result is false when the pool is empty; lowConfidence flags a top
// score under AcceptThreshold.
func ResolveOne(query string, pool []models.DirectoryEntry, scope MatchScope) (cand models.ResolutionCandidate, ok bool, lowConfidence bool) {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" || len(pool) == 0 {
		return models.ResolutionCandidate{}, false, false
	}
	best := models.ResolutionCandidate{Confidence: -1}
	for _, entry := range pool {
		score := scoreEntry(query, entry, scope)
		if score > best.Confidence {
			best = models.ResolutionCandidate{Entry: entry, Confidence: score}
		}
	}
	return best, true, best.Confidence < AcceptThreshold
}

// Select picks a candidate by 1-based choice index. Digit strings too long
// for an int count as out of range, not as malformed.
func Select(candidates []models.ResolutionCandidate, choice string) (models.ResolutionCandidate, error) {
	for _, r := range choice {
		if r < '0' || r > '9' {
			return models.ResolutionCandidate{}, &SelectionError{Message: "'choice' must be a number."}
		}
	}
	idx, err := strconv.Atoi(choice)
	if choice == "" || err != nil || idx < 1 || idx > len(candidates) {
		return models.ResolutionCandidate{}, &SelectionError{
			Message: fmt.Sprintf("Invalid choice. Please choose a number between 1 and %d.", len(candidates)),
		}
	}
	return candidates[idx-1], nil
}
