package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/adwait222001/Market-Sutra/internal/models"
	"github.com/adwait222001/Market-Sutra/internal/services"
)

// Finance serves the combined statements + profile view for one company.
// Partial availability is not an error: whichever side the upstream had is
// returned, the other comes back null.
func (a *API) Finance(w http.ResponseWriter, r *http.Request) {
	company := strings.TrimSpace(r.URL.Query().Get("company"))
	if company == "" {
		writeError(w, http.StatusBadRequest, "Please provide a 'company' parameter")
		return
	}

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()
	match, warning, err := a.matchCompanyName(r, company)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	table, stmtErr := a.loadStatements(r, match.Entry.Symbol)
	if stmtErr != nil {
		log.Printf("[WARN] statements unavailable for %s: %v", match.Entry.Symbol, stmtErr)
	}

	profile, profErr := a.quotes.FetchProfile(ctx, match.Entry.Name, match.Entry.Symbol)
	if profErr != nil {
		log.Printf("[WARN] profile unavailable for %s: %v", match.Entry.Symbol, profErr)
	}

	resp := map[string]any{
		"company":    match.Entry.Name,
		"symbol":     match.Entry.Symbol,
		"stock_info": profile,
	}
	if table != nil {
		resp["balance_sheet"] = table
	} else {
		resp["balance_sheet"] = nil
	}
	if warning != "" {
		resp["warning"] = warning
	}
	writeJSON(w, http.StatusOK, resp)
}

// BalanceSheet serves only the normalized statement table.
func (a *API) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	company := strings.TrimSpace(r.URL.Query().Get("company"))
	if company == "" {
		writeError(w, http.StatusBadRequest, "Please provide a 'company' parameter")
		return
	}

	match, warning, err := a.matchCompanyName(r, company)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	table, err := a.loadStatements(r, match.Entry.Symbol)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := map[string]any{
		"company":       match.Entry.Name,
		"symbol":        match.Entry.Symbol,
		"balance_sheet": table,
	}
	if warning != "" {
		resp["warning"] = warning
	}
	writeJSON(w, http.StatusOK, resp)
}

// matchCompanyName does the name-scoped single-best match shared by the
// finance endpoints: any top match is accepted, low confidence only warns.
func (a *API) matchCompanyName(r *http.Request, company string) (models.ResolutionCandidate, string, error) {
	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()
	pool, err := a.dir.Equities(ctx)
	if err != nil {
		return models.ResolutionCandidate{}, "", err
	}
	match, ok, low := services.ResolveOne(company, pool, services.ScopeNames)
	if !ok {
		return models.ResolutionCandidate{}, "", fmt.Errorf("company %w", services.ErrNotFound)
	}
	warning := ""
	if low {
		warning = fmt.Sprintf("Match score is low (%d); data may not be exact.", match.Confidence)
	}
	return match, warning, nil
}

func (a *API) loadStatements(r *http.Request, symbol string) (models.StatementTable, error) {
	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()
	balance, income, err := a.quotes.FetchStatements(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return services.NormalizeStatements(balance, income)
}
