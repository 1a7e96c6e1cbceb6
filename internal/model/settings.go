package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingsID is the primary key of the singleton settings row
const SettingsID = "app"

type AppSettings struct {
	ID                 string          `gorm:"type:varchar(16);primaryKey" json:"-"`
	CashOpeningBalance decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"cashOpeningBalance"`
}

// AppData is one consistent snapshot of every collection, newest records first
type AppData struct {
	Employees      []Employee      `json:"employees"`
	Products       []Product       `json:"products"`
	StockMovements []StockMovement `json:"stockMovements"`
	Transactions   []Transaction   `json:"transactions"`
	Productions    []Production    `json:"productions"`
	Meetings       []Meeting       `json:"meetings"`
	Settings       AppSettings     `json:"settings"`
}

// Meta describes the hydration state of a repository
type Meta struct {
	Ready     bool       `json:"ready"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Normalize replaces missing collections with empty ones and fills defaulted fields
func (d *AppData) Normalize() {
	if d.Employees == nil {
		d.Employees = []Employee{}
	}
	if d.Products == nil {
		d.Products = []Product{}
	}
	for i := range d.Products {
		d.Products[i].Normalize()
	}
	if d.StockMovements == nil {
		d.StockMovements = []StockMovement{}
	}
	if d.Transactions == nil {
		d.Transactions = []Transaction{}
	}
	if d.Productions == nil {
		d.Productions = []Production{}
	}
	if d.Meetings == nil {
		d.Meetings = []Meeting{}
	}
	d.Settings.ID = SettingsID
}

// Clone returns a deep copy; callers may mutate it freely
func (d *AppData) Clone() *AppData {
	out := &AppData{
		Employees:      append([]Employee{}, d.Employees...),
		Products:       append([]Product{}, d.Products...),
		StockMovements: append([]StockMovement{}, d.StockMovements...),
		Transactions:   make([]Transaction, len(d.Transactions)),
		Productions:    append([]Production{}, d.Productions...),
		Meetings:       make([]Meeting, len(d.Meetings)),
		Settings:       d.Settings,
	}
	for i, t := range d.Transactions {
		if t.Items != nil {
			t.Items = append(TransactionItems{}, t.Items...)
		}
		out.Transactions[i] = t
	}
	for i, m := range d.Meetings {
		if m.Attendance != nil {
			m.Attendance = append(MeetingAttendances{}, m.Attendance...)
		}
		if m.EndAt != nil {
			end := *m.EndAt
			m.EndAt = &end
		}
		out.Meetings[i] = m
	}
	return out
}
