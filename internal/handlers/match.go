package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/adwait222001/Market-Sutra/internal/models"
	"github.com/adwait222001/Market-Sutra/internal/services"
)

// Match resolves a free-text company query against the equity directory.
// Without a choice it lists numbered candidates; with one it selects.
func (a *API) Match(w http.ResponseWriter, r *http.Request) {
	query := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("query")))
	choice := r.URL.Query().Get("choice")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Missing 'query' parameter.")
		return
	}

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()
	pool, err := a.dir.Equities(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	candidates := services.Resolve(query, pool, services.ScopeAll, services.DefaultResolveLimit)
	if len(candidates) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "No matching companies found with confidence > 60.",
		})
		return
	}

	if choice != "" {
		selected, err := services.Select(candidates, choice)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"selected": map[string]string{
				"company": selected.Entry.Name,
				"symbol":  selected.Entry.Symbol,
			},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"matches":     numberCandidates(candidates, "company"),
		"instruction": "To select a specific company, use /match?query=XYZ&choice=number",
	})
}

// MatchIndex is the index-flavored twin of Match, resolved against the
// index-symbol map instead of the equity directory.
func (a *API) MatchIndex(w http.ResponseWriter, r *http.Request) {
	query := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("query")))
	choice := r.URL.Query().Get("choice")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Missing 'query' parameter.")
		return
	}

	pool, err := a.dir.IndexPool()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	candidates := services.Resolve(query, pool, services.ScopeAll, services.DefaultResolveLimit)
	if len(candidates) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "No matching indices found with confidence > 60.",
		})
		return
	}

	if choice != "" {
		selected, err := services.Select(candidates, choice)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"selected": map[string]string{
				"index":  selected.Entry.Name,
				"symbol": selected.Entry.Symbol,
			},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"matches":     numberCandidates(candidates, "index"),
		"instruction": "To select a specific index, use /match_index?query=XYZ&choice=number",
	})
}

func numberCandidates(candidates []models.ResolutionCandidate, nameKey string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(candidates))
	for i, c := range candidates {
		out[strconv.Itoa(i+1)] = map[string]string{
			nameKey:  c.Entry.Name,
			"symbol": c.Entry.Symbol,
		}
	}
	return out
}
