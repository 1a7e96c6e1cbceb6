package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Production converts raw material into finished goods.
// Field order follows the order rules are checked in.
type Production struct {
	ID                    string          `gorm:"type:varchar(32);primaryKey" json:"id"`
	RawProductID          string          `gorm:"type:varchar(32);not null" json:"rawProductId" validate:"notblank"`
	FinishedProductID     string          `gorm:"type:varchar(32);not null" json:"finishedProductId" validate:"notblank,nefield=RawProductID"`
	RawQuantity           decimal.Decimal `gorm:"type:numeric;not null" json:"rawQuantity" validate:"decimal_gt0"`
	FinishedQuantity      decimal.Decimal `gorm:"type:numeric;not null" json:"finishedQuantity" validate:"decimal_gt0"`
	ResponsibleEmployeeID string          `gorm:"type:varchar(32)" json:"responsibleEmployeeId" validate:"notblank"`
	Date                  time.Time       `gorm:"not null;index" json:"date"`
	Notes                 string          `gorm:"type:text" json:"notes,omitempty"`
}
