package analytics

import (
	"time"

	"walldecor-admin/internal/ledger"
	"walldecor-admin/internal/model"

	"github.com/shopspring/decimal"
)

// Dashboard holds the headline figures of the overview page
type Dashboard struct {
	Summary           FinanceSummary           `json:"summary"`
	Month             string                   `json:"month"`
	MonthSales        decimal.Decimal          `json:"monthSales"`
	MonthPurchases    decimal.Decimal          `json:"monthPurchases"`
	ProductCount      int                      `json:"productCount"`
	EmployeeCount     int                      `json:"employeeCount"`
	MeetingsThisMonth int                      `json:"meetingsThisMonth"`
	LowStock          []ledger.ProductStockRow `json:"lowStock"`
}

func ComputeDashboard(data *model.AppData, now time.Time, loc *time.Location, lowStockThreshold decimal.Decimal) (*Dashboard, error) {
	monthly, err := ComputeMonthlyAnalytics(data, 1, now, loc, nil)
	if err != nil {
		return nil, err
	}
	current := monthly.Months[0]

	meetings := 0
	for _, m := range data.Meetings {
		if MonthKey(m.StartAt, loc) == current {
			meetings++
		}
	}

	// Only finished goods count towards low stock alerts
	finished := ledger.FilterByKind(data.Products, model.KindFinished)
	rows := ledger.ComputeStock(data.StockMovements, data.Products, finished)

	return &Dashboard{
		Summary:           ComputeFinanceSummary(data),
		Month:             current,
		MonthSales:        monthly.Sales[0].Value,
		MonthPurchases:    monthly.Purchases[0].Value,
		ProductCount:      len(data.Products),
		EmployeeCount:     len(data.Employees),
		MeetingsThisMonth: meetings,
		LowStock:          ledger.LowStock(rows, lowStockThreshold),
	}, nil
}
