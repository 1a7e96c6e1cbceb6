// Package analytics folds transactions and movements into totals and trailing-month series.
// Inputs are never mutated and output depends only on the data and the given "now".
package analytics

import (
	"fmt"
	"time"

	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/ledger"
	"walldecor-admin/internal/model"

	"github.com/shopspring/decimal"
)

const (
	DefaultMonths = 12
	// MaxMonths bounds the trailing window, ten years
	MaxMonths = 120
)

const monthKeyLayout = "2006-01"

type FinanceSummary struct {
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalPurchases decimal.Decimal `json:"totalPurchases"`
	Profit         decimal.Decimal `json:"profit"`
	CashBalance    decimal.Decimal `json:"cashBalance"`
}

func ComputeFinanceSummary(data *model.AppData) FinanceSummary {
	sales, purchases := decimal.Zero, decimal.Zero
	for _, t := range data.Transactions {
		switch t.Type {
		case model.TxSale:
			sales = sales.Add(t.Amount)
		case model.TxPurchase:
			purchases = purchases.Add(t.Amount)
		}
	}
	profit := sales.Sub(purchases)
	return FinanceSummary{
		TotalSales:     sales,
		TotalPurchases: purchases,
		Profit:         profit,
		CashBalance:    data.Settings.CashOpeningBalance.Add(profit),
	}
}

type MonthlyPoint struct {
	Month string          `json:"month"`
	Value decimal.Decimal `json:"value"`
}

type MonthlyAnalytics struct {
	Months    []string       `json:"months"`
	Sales     []MonthlyPoint `json:"sales"`
	Purchases []MonthlyPoint `json:"purchases"`
	Profit    []MonthlyPoint `json:"profit"`
	StockNet  []MonthlyPoint `json:"stockNet"`
}

// MonthKey formats the calendar month of t as seen in loc
func MonthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(monthKeyLayout)
}

// LastMonthKeys lists n month keys ending at now's month, oldest first
func LastMonthKeys(now time.Time, n int, loc *time.Location) []string {
	local := now.In(loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[n-1-i] = first.AddDate(0, -i, 0).Format(monthKeyLayout)
	}
	return keys
}

// ComputeMonthlyAnalytics buckets records into the trailing window. Records dated outside
// the window are dropped. stockNet honours filter; a nil filter counts every product.
func ComputeMonthlyAnalytics(data *model.AppData, monthsBack int, now time.Time, loc *time.Location, filter ledger.ProductIDSet) (*MonthlyAnalytics, error) {
	if monthsBack < 1 {
		return nil, composer.Invalid("months", "months must be at least 1")
	}
	if monthsBack > MaxMonths {
		return nil, composer.Invalid("months", fmt.Sprintf("months must be at most %d", MaxMonths))
	}
	if loc == nil {
		loc = time.UTC
	}

	keys := LastMonthKeys(now, monthsBack, loc)
	sales := newBuckets(keys)
	purchases := newBuckets(keys)
	stock := newBuckets(keys)

	for _, t := range data.Transactions {
		k := MonthKey(t.Date, loc)
		switch t.Type {
		case model.TxSale:
			sales.add(k, t.Amount)
		case model.TxPurchase:
			purchases.add(k, t.Amount)
		}
	}
	for _, m := range data.StockMovements {
		if !filter.Has(m.ProductID) {
			continue
		}
		stock.add(MonthKey(m.Date, loc), m.Delta())
	}

	out := &MonthlyAnalytics{
		Months:    keys,
		Sales:     sales.points(keys),
		Purchases: purchases.points(keys),
		Profit:    make([]MonthlyPoint, len(keys)),
		StockNet:  stock.points(keys),
	}
	for i, k := range keys {
		out.Profit[i] = MonthlyPoint{Month: k, Value: sales[k].Sub(purchases[k])}
	}
	return out, nil
}

type buckets map[string]decimal.Decimal

func newBuckets(keys []string) buckets {
	b := make(buckets, len(keys))
	for _, k := range keys {
		b[k] = decimal.Zero
	}
	return b
}

// add ignores keys outside the window
func (b buckets) add(key string, v decimal.Decimal) {
	if cur, ok := b[key]; ok {
		b[key] = cur.Add(v)
	}
}

func (b buckets) points(keys []string) []MonthlyPoint {
	out := make([]MonthlyPoint, len(keys))
	for i, k := range keys {
		out[i] = MonthlyPoint{Month: k, Value: b[k]}
	}
	return out
}
