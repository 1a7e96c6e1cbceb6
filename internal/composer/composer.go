// Package composer validates user input and expands transactions and productions
// into the stock movements they generate. It never writes anything.
package composer

import (
	"fmt"
	"strings"
	"time"

	"walldecor-admin/internal/model"
	"walldecor-admin/pkg/idgen"

	"github.com/shopspring/decimal"
)

type IDGenerator interface {
	New(prefix string) string
}

type Composer struct {
	ids IDGenerator
	now func() time.Time
}

func New(ids IDGenerator, now func() time.Time) *Composer {
	if now == nil {
		now = time.Now
	}
	return &Composer{ids: ids, now: now}
}

// Now is the clock every stamped record uses
func (c *Composer) Now() time.Time {
	return c.now()
}

type TransactionInput struct {
	Type                  model.TransactionType   `json:"type"`
	Description           string                  `json:"description"`
	Amount                decimal.Decimal         `json:"amount"`
	Items                 []model.TransactionItem `json:"items,omitempty"`
	Date                  time.Time               `json:"date"`
	ResponsibleEmployeeID string                  `json:"responsibleEmployeeId"`
}

// ComposeTransaction returns the transaction and one movement per item.
// Without items the transaction is in service mode and moves no stock.
func (c *Composer) ComposeTransaction(in TransactionInput) (*model.Transaction, []model.StockMovement, error) {
	tx := &model.Transaction{
		Type:                  in.Type,
		Description:           strings.TrimSpace(in.Description),
		ResponsibleEmployeeID: strings.TrimSpace(in.ResponsibleEmployeeID),
		Date:                  c.dateOrNow(in.Date),
	}

	// 1. Field dasar
	if err := check(tx); err != nil {
		return nil, nil, err
	}

	// 2. Service mode: amount diisi langsung
	if len(in.Items) == 0 {
		if !in.Amount.IsPositive() {
			return nil, nil, Invalid("amount", "amount must be > 0")
		}
		tx.Amount = in.Amount
		tx.ID = c.ids.New(idgen.Transaction)
		return tx, nil, nil
	}

	// 3. Item mode: stop di item pertama yang tidak valid
	items := make(model.TransactionItems, 0, len(in.Items))
	total := decimal.Zero
	for i, item := range in.Items {
		item.ProductID = strings.TrimSpace(item.ProductID)
		if err := check(item); err != nil {
			ve := err.(*ValidationError)
			return nil, nil, Invalid(fmt.Sprintf("items[%d].%s", i, ve.Field), fmt.Sprintf("item %d: %s", i+1, ve.Message))
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}
	if !total.IsPositive() {
		return nil, nil, Invalid("amount", "transaction total must be > 0")
	}
	tx.Amount = total
	tx.Items = items
	tx.ID = c.ids.New(idgen.Transaction)

	// 4. Satu movement per item, arah mengikuti tipe transaksi
	movements := make([]model.StockMovement, 0, len(items))
	for _, item := range items {
		movements = append(movements, model.StockMovement{
			ID:                    c.ids.New(idgen.StockMovement),
			ProductID:             item.ProductID,
			Type:                  tx.Type.MovementType(),
			Quantity:              item.Quantity,
			Date:                  tx.Date,
			ResponsibleEmployeeID: tx.ResponsibleEmployeeID,
			SourceType:            model.SourceTransaction,
			SourceID:              tx.ID,
		})
	}
	return tx, movements, nil
}

type ProductionInput struct {
	RawProductID          string          `json:"rawProductId"`
	RawQuantity           decimal.Decimal `json:"rawQuantity"`
	FinishedProductID     string          `json:"finishedProductId"`
	FinishedQuantity      decimal.Decimal `json:"finishedQuantity"`
	Date                  time.Time       `json:"date"`
	ResponsibleEmployeeID string          `json:"responsibleEmployeeId"`
	Notes                 string          `json:"notes,omitempty"`
}

// ComposeProduction returns the production with its OUT(raw) and IN(finished) movements
func (c *Composer) ComposeProduction(in ProductionInput) (*model.Production, []model.StockMovement, error) {
	p := &model.Production{
		RawProductID:          strings.TrimSpace(in.RawProductID),
		FinishedProductID:     strings.TrimSpace(in.FinishedProductID),
		RawQuantity:           in.RawQuantity,
		FinishedQuantity:      in.FinishedQuantity,
		ResponsibleEmployeeID: strings.TrimSpace(in.ResponsibleEmployeeID),
		Date:                  c.dateOrNow(in.Date),
		Notes:                 strings.TrimSpace(in.Notes),
	}
	if err := check(p); err != nil {
		return nil, nil, err
	}
	p.ID = c.ids.New(idgen.Production)

	movements := []model.StockMovement{
		{
			ID:                    c.ids.New(idgen.StockMovement),
			ProductID:             p.RawProductID,
			Type:                  model.MovementOut,
			Quantity:              p.RawQuantity,
			Date:                  p.Date,
			ResponsibleEmployeeID: p.ResponsibleEmployeeID,
			SourceType:            model.SourceProduction,
			SourceID:              p.ID,
		},
		{
			ID:                    c.ids.New(idgen.StockMovement),
			ProductID:             p.FinishedProductID,
			Type:                  model.MovementIn,
			Quantity:              p.FinishedQuantity,
			Date:                  p.Date,
			ResponsibleEmployeeID: p.ResponsibleEmployeeID,
			SourceType:            model.SourceProduction,
			SourceID:              p.ID,
		},
	}
	return p, movements, nil
}

type MovementInput struct {
	ProductID             string             `json:"productId"`
	Type                  model.MovementType `json:"type"`
	Quantity              decimal.Decimal    `json:"quantity"`
	Date                  time.Time          `json:"date"`
	ResponsibleEmployeeID string             `json:"responsibleEmployeeId"`
	SourceType            model.SourceType   `json:"sourceType,omitempty"`
}

// ComposeMovement builds a manual adjustment. Generated movements only come from their parents.
func (c *Composer) ComposeMovement(in MovementInput) (*model.StockMovement, error) {
	if in.SourceType != "" && in.SourceType != model.SourceManual {
		return nil, Invalid("sourceType", "only MANUAL movements can be recorded directly")
	}
	m := &model.StockMovement{
		ProductID:             strings.TrimSpace(in.ProductID),
		Type:                  in.Type,
		Quantity:              in.Quantity,
		Date:                  c.dateOrNow(in.Date),
		ResponsibleEmployeeID: strings.TrimSpace(in.ResponsibleEmployeeID),
		SourceType:            model.SourceManual,
	}
	if err := check(m); err != nil {
		return nil, err
	}
	m.ID = c.ids.New(idgen.StockMovement)
	return m, nil
}

func (c *Composer) dateOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return c.now()
	}
	return t
}
