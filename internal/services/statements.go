package services

import (
	"fmt"

	"github.com/adwait222001/Market-Sutra/internal/models"
)

// priorityLineItems lead every year's mapping, in this order, when present.
var priorityLineItems = []string{
	"Operating Revenue",
	"Operating Income",
	"Net Income",
	"Gross Profit",
	"Total Revenue",
}

// NormalizeStatements reshapes the raw balance sheet and income statement
// into a per-year table in crores. Balance-sheet columns key the years;
// the priority income line items are merged in, creating year entries the
// balance sheet lacked. Only when both sources are empty does it fail.
func NormalizeStatements(balance, income models.RawStatement) (models.StatementTable, error) {
	if balance.Empty() && income.Empty() {
		return nil, ErrNoFinancialData
	}

	type yearData struct {
		priority map[string]string
		rest     models.LineItems
	}
	years := make(map[string]*yearData)
	yearOf := func(label string) *yearData {
		y, ok := years[label]
		if !ok {
			y = &yearData{priority: make(map[string]string)}
			years[label] = y
		}
		return y
	}

	for _, col := range balance.Columns {
		y := yearOf(col.Year)
		for _, item := range col.Items {
			if isPriorityItem(item.Name) {
				y.priority[item.Name] = formatCrores(item.Value)
				continue
			}
			y.rest = append(y.rest, models.LineItem{Key: item.Name, Value: formatCrores(item.Value)})
		}
	}

	for _, col := range income.Columns {
		y := yearOf(col.Year)
		for _, item := range col.Items {
			if isPriorityItem(item.Name) {
				y.priority[item.Name] = formatCrores(item.Value)
			}
		}
	}

	table := make(models.StatementTable, len(years))
	for label, y := range years {
		ordered := make(models.LineItems, 0, len(y.priority)+len(y.rest))
		for _, key := range priorityLineItems {
			if v, ok := y.priority[key]; ok {
				ordered = append(ordered, models.LineItem{Key: key, Value: v})
			}
		}
		ordered = append(ordered, y.rest...)
		table[label] = ordered
	}
	return table, nil
}

func isPriorityItem(name string) bool {
	for _, key := range priorityLineItems {
		if key == name {
			return true
		}
	}
	return false
}

// formatCrores converts an absolute value to crores (1e7) with two
// decimals. Missing cells render "nan Cr", matching the upstream table's
// own notation for gaps.
func formatCrores(v *float64) string {
	if v == nil {
		return "nan Cr"
	}
	return fmt.Sprintf("%.2f Cr", *v/1e7)
}
