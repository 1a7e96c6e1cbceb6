package model

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxPurchase TransactionType = "PURCHASE"
	TxSale     TransactionType = "SALE"
)

// MovementType maps a trade to its stock direction: SALE leaves, PURCHASE arrives
func (t TransactionType) MovementType() MovementType {
	if t == TxSale {
		return MovementOut
	}
	return MovementIn
}

type TransactionItem struct {
	ProductID string          `json:"productId" validate:"notblank"`
	Quantity  decimal.Decimal `json:"quantity" validate:"decimal_gt0"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"decimal_gt0"`
}

func (i TransactionItem) Subtotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// TransactionItems is stored as a JSON text column. A nil list means "service mode".
type TransactionItems []TransactionItem

func (items TransactionItems) Value() (driver.Value, error) {
	return jsonValue(items, items == nil)
}

func (items *TransactionItems) Scan(value any) error {
	return scanJSON(value, items)
}

type Transaction struct {
	ID                    string           `gorm:"type:varchar(32);primaryKey" json:"id"`
	Type                  TransactionType  `gorm:"type:varchar(10);not null;index" json:"type" validate:"oneof=PURCHASE SALE"`
	Description           string           `gorm:"type:text" json:"description" validate:"notblank"`
	ResponsibleEmployeeID string           `gorm:"type:varchar(32)" json:"responsibleEmployeeId" validate:"notblank"`
	Amount                decimal.Decimal  `gorm:"type:numeric;not null" json:"amount"`
	Items                 TransactionItems `gorm:"type:text" json:"items,omitempty"`
	Date                  time.Time        `gorm:"not null;index" json:"date"`
}
