package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

type SourceType string

const (
	SourceManual      SourceType = "MANUAL"
	SourceTransaction SourceType = "TRANSACTION"
	SourceProduction  SourceType = "PRODUCTION"
)

// StockMovement is the only record that moves stock. Remaining quantities are always folded from these.
type StockMovement struct {
	ID                    string          `gorm:"type:varchar(32);primaryKey" json:"id"`
	ProductID             string          `gorm:"type:varchar(32);not null;index" json:"productId" validate:"notblank"`
	Type                  MovementType    `gorm:"type:varchar(3);not null" json:"type" validate:"oneof=IN OUT"`
	Quantity              decimal.Decimal `gorm:"type:numeric;not null" json:"quantity" validate:"decimal_gt0"`
	Date                  time.Time       `gorm:"not null;index" json:"date"`
	ResponsibleEmployeeID string          `gorm:"type:varchar(32)" json:"responsibleEmployeeId" validate:"notblank"`
	SourceType            SourceType      `gorm:"type:varchar(12);index:idx_movement_source" json:"sourceType,omitempty"`
	SourceID              string          `gorm:"type:varchar(32);index:idx_movement_source" json:"sourceId,omitempty"`
	// Seq breaks date ties in SQL, newest highest. Local files keep list order instead.
	Seq int64 `gorm:"not null;default:0" json:"-"`
}

// Generated reports whether the movement belongs to a transaction or production
func (m StockMovement) Generated() bool {
	return m.SourceType == SourceTransaction || m.SourceType == SourceProduction
}

// Delta is the signed effect on stock: IN adds, OUT subtracts
func (m StockMovement) Delta() decimal.Decimal {
	if m.Type == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
