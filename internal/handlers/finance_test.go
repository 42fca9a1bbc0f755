package handlers

import (
	"net/http"
	"testing"
)

const statementsResult = `{
	"balanceSheetHistory": {"balanceSheetStatements": [
		{"endDate": {"raw": 1711843200},
		 "totalAssets": {"raw": 50000000},
		 "cash": {"raw": null}}
	]},
	"incomeStatementHistory": {"incomeStatementHistory": [
		{"endDate": {"raw": 1711843200},
		 "netIncome": {"raw": 15000000},
		 "totalRevenue": {"raw": 90000000}}
	]},
	"assetProfile": {"sector": "Technology", "country": "India"},
	"price": {"exchangeName": "NSI"}
}`

func TestBalanceSheet(t *testing.T) {
	api := newTestAPI(t, quoteSummaryHandler(statementsResult))

	rec, body := doRequest(t, api.BalanceSheet, "/balancesheet?company=INFOSYS")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}
	if body["symbol"] != "INFY" {
		t.Fatalf("unexpected symbol: %v", body["symbol"])
	}
	table, ok := body["balance_sheet"].(map[string]any)
	if !ok {
		t.Fatalf("expected statement table, got %v", body["balance_sheet"])
	}
	year, ok := table["2024"].(map[string]any)
	if !ok {
		t.Fatalf("expected a 2024 column, got %v", table)
	}
	if year["Net Income"] != "1.50 Cr" {
		t.Fatalf("expected Net Income 1.50 Cr, got %v", year["Net Income"])
	}
	if year["Total Assets"] != "5.00 Cr" {
		t.Fatalf("expected Total Assets 5.00 Cr, got %v", year["Total Assets"])
	}
	// Present-but-null upstream values render as the nan marker.
	if year["Cash"] != "nan Cr" {
		t.Fatalf("expected Cash nan Cr, got %v", year["Cash"])
	}
}

func TestBalanceSheetNoFinancialData(t *testing.T) {
	api := newTestAPI(t, quoteSummaryHandler(`{
		"balanceSheetHistory": {"balanceSheetStatements": []},
		"incomeStatementHistory": {"incomeStatementHistory": []}
	}`))

	rec, body := doRequest(t, api.BalanceSheet, "/balancesheet?company=INFOSYS")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body["error"] != "No financial data available." {
		t.Fatalf("unexpected error: %v", body["error"])
	}
}

func TestFinanceCombinedView(t *testing.T) {
	api := newTestAPI(t, quoteSummaryHandler(statementsResult))

	rec, body := doRequest(t, api.Finance, "/finance?company=INFOSYS")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}
	if body["company"] != "INFOSYS LIMITED" {
		t.Fatalf("expected directory name, got %v", body["company"])
	}
	info, ok := body["stock_info"].(map[string]any)
	if !ok {
		t.Fatalf("expected stock_info, got %v", body["stock_info"])
	}
	if info["sector"] != "Technology" || info["country"] != "India" {
		t.Fatalf("unexpected profile: %v", info)
	}
	if body["balance_sheet"] == nil {
		t.Fatal("expected populated balance_sheet")
	}
}

func TestFinanceToleratesMissingStatements(t *testing.T) {
	api := newTestAPI(t, quoteSummaryHandler(`{
		"assetProfile": {"sector": "Technology"},
		"price": {"exchangeName": "NSI"}
	}`))

	rec, body := doRequest(t, api.Finance, "/finance?company=INFOSYS")
	if rec.Code != http.StatusOK {
		t.Fatalf("statements failure must not fail the view, got %d: %v", rec.Code, body)
	}
	if body["balance_sheet"] != nil {
		t.Fatalf("expected null balance_sheet, got %v", body["balance_sheet"])
	}
	info := body["stock_info"].(map[string]any)
	if info["sector"] != "Technology" {
		t.Fatalf("unexpected profile: %v", info)
	}
}

func TestFinanceMissingCompanyParam(t *testing.T) {
	api := newTestAPI(t, nil)
	rec, _ := doRequest(t, api.Finance, "/finance")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
