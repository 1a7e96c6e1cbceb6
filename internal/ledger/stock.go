// Package ledger derives stock levels from the movement log. Nothing here caches:
// every call folds the full list it is given.
package ledger

import (
	"walldecor-admin/internal/model"

	"github.com/shopspring/decimal"
)

// ProductIDSet restricts a computation to some products. A nil set means all.
type ProductIDSet map[string]struct{}

func NewProductIDSet(ids ...string) ProductIDSet {
	s := make(ProductIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ProductIDSet) Has(id string) bool {
	if s == nil {
		return true
	}
	_, ok := s[id]
	return ok
}

// FilterByKind collects the ids of products of the given kinds
func FilterByKind(products []model.Product, kinds ...model.ProductKind) ProductIDSet {
	set := ProductIDSet{}
	for _, p := range products {
		p.Normalize()
		for _, k := range kinds {
			if p.Kind == k {
				set[p.ID] = struct{}{}
				break
			}
		}
	}
	return set
}

type ProductStockRow struct {
	Product   model.Product   `json:"product"`
	StockIn   decimal.Decimal `json:"stockIn"`
	StockOut  decimal.Decimal `json:"stockOut"`
	Remaining decimal.Decimal `json:"remaining"`
}

// ComputeStock returns one row per eligible product in snapshot order.
// Remaining may go negative; that signals over-committed stock, not an error.
func ComputeStock(movements []model.StockMovement, products []model.Product, filter ProductIDSet) []ProductStockRow {
	type totals struct{ in, out decimal.Decimal }
	byProduct := make(map[string]*totals)
	for _, m := range movements {
		t, ok := byProduct[m.ProductID]
		if !ok {
			t = &totals{in: decimal.Zero, out: decimal.Zero}
			byProduct[m.ProductID] = t
		}
		switch m.Type {
		case model.MovementIn:
			t.in = t.in.Add(m.Quantity)
		case model.MovementOut:
			t.out = t.out.Add(m.Quantity)
		}
	}

	rows := make([]ProductStockRow, 0, len(products))
	for _, p := range products {
		if !filter.Has(p.ID) {
			continue
		}
		p.Normalize()
		row := ProductStockRow{Product: p, StockIn: decimal.Zero, StockOut: decimal.Zero}
		if t, ok := byProduct[p.ID]; ok {
			row.StockIn = t.in
			row.StockOut = t.out
		}
		row.Remaining = row.StockIn.Sub(row.StockOut)
		rows = append(rows, row)
	}
	return rows
}

// StockOf finds the row of one product
func StockOf(rows []ProductStockRow, productID string) (ProductStockRow, bool) {
	for _, r := range rows {
		if r.Product.ID == productID {
			return r, true
		}
	}
	return ProductStockRow{}, false
}

// LowStock keeps the rows whose remaining quantity is at or below threshold
func LowStock(rows []ProductStockRow, threshold decimal.Decimal) []ProductStockRow {
	low := []ProductStockRow{}
	for _, r := range rows {
		if r.Remaining.LessThanOrEqual(threshold) {
			low = append(low, r)
		}
	}
	return low
}
