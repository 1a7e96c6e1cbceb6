package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeedData returns the starting dataset of a fresh local install
func SeedData(now time.Time) *AppData {
	ts := Timestamps{CreatedAt: now, UpdatedAt: now}
	return &AppData{
		Employees: []Employee{
			{ID: "EMP-0001", Name: "Rakha", Position: "CEO", Role: RoleCEO, Timestamps: ts},
			{ID: "EMP-0002", Name: "Roihan", Position: "CTO", Role: RoleCTO, Timestamps: ts},
			{ID: "EMP-0003", Name: "Bagus", Position: "CMO", Role: RoleCMO, Timestamps: ts},
		},
		Products: []Product{
			{ID: "PRD-0001", Name: "Wall Decor Kayu Minimalis", Category: "Kayu", Kind: KindFinished, Timestamps: ts},
			{ID: "PRD-0002", Name: "Wall Decor Macrame", Category: "Kain", Kind: KindFinished, Timestamps: ts},
		},
		StockMovements: []StockMovement{},
		Transactions:   []Transaction{},
		Productions:    []Production{},
		Meetings:       []Meeting{},
		Settings:       AppSettings{ID: SettingsID, CashOpeningBalance: decimal.Zero},
	}
}
