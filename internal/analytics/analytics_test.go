package analytics

import (
	"errors"
	"testing"
	"time"

	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/ledger"
	"walldecor-admin/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jakarta = time.FixedZone("WIB", 7*3600)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 12, 0, 0, 0, jakarta)
}

func sampleData() *model.AppData {
	data := model.SeedData(day(2025, 1, 1))
	data.Settings.CashOpeningBalance = d(1000)
	data.Transactions = []model.Transaction{
		{ID: "T1", Type: model.TxSale, Amount: d(500), Date: day(2025, 3, 10)},
		{ID: "T2", Type: model.TxPurchase, Amount: d(200), Date: day(2025, 3, 11)},
		{ID: "T3", Type: model.TxSale, Amount: d(300), Date: day(2025, 1, 5)},
		{ID: "T4", Type: model.TxSale, Amount: d(999), Date: day(2024, 6, 1)}, // outside a 3 month window
	}
	data.StockMovements = []model.StockMovement{
		{ID: "S1", ProductID: "PRD-0001", Type: model.MovementIn, Quantity: d(10), Date: day(2025, 2, 1)},
		{ID: "S2", ProductID: "PRD-0001", Type: model.MovementOut, Quantity: d(4), Date: day(2025, 2, 2)},
		{ID: "S3", ProductID: "PRD-0002", Type: model.MovementIn, Quantity: d(7), Date: day(2025, 3, 3)},
	}
	return data
}

func TestComputeFinanceSummary(t *testing.T) {
	s := ComputeFinanceSummary(sampleData())
	assert.True(t, s.TotalSales.Equal(d(1799)))
	assert.True(t, s.TotalPurchases.Equal(d(200)))
	assert.True(t, s.Profit.Equal(d(1599)))
	assert.True(t, s.CashBalance.Equal(d(2599)))
}

func TestLastMonthKeys(t *testing.T) {
	now := day(2025, 3, 31)
	assert.Equal(t, []string{"2025-01", "2025-02", "2025-03"}, LastMonthKeys(now, 3, jakarta))
	assert.Equal(t, []string{"2024-12", "2025-01"}, LastMonthKeys(day(2025, 1, 15), 2, jakarta))

	// 18:00 UTC on Mar 31 is already April in Jakarta
	utcEvening := time.Date(2025, 3, 31, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2025-04"}, LastMonthKeys(utcEvening, 1, jakarta))
}

func TestComputeMonthlyAnalytics(t *testing.T) {
	data := sampleData()
	now := day(2025, 3, 20)

	out, err := ComputeMonthlyAnalytics(data, 3, now, jakarta, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-01", "2025-02", "2025-03"}, out.Months)
	values := func(points []MonthlyPoint) []string {
		var s []string
		for _, p := range points {
			s = append(s, p.Value.String())
		}
		return s
	}
	assert.Equal(t, []string{"300", "0", "500"}, values(out.Sales))
	assert.Equal(t, []string{"0", "0", "200"}, values(out.Purchases))
	assert.Equal(t, []string{"300", "0", "300"}, values(out.Profit))
	assert.Equal(t, []string{"0", "6", "7"}, values(out.StockNet))

	t.Run("out of window record lands nowhere", func(t *testing.T) {
		total := decimal.Zero
		for _, p := range out.Sales {
			total = total.Add(p.Value)
		}
		assert.True(t, total.Equal(d(800)))
	})

	t.Run("filter restricts stock net", func(t *testing.T) {
		filtered, err := ComputeMonthlyAnalytics(data, 3, now, jakarta, ledger.NewProductIDSet("PRD-0002"))
		require.NoError(t, err)
		assert.Equal(t, []string{"0", "0", "7"}, values(filtered.StockNet))
	})

	t.Run("deterministic and does not mutate input", func(t *testing.T) {
		before := data.Clone()
		again, err := ComputeMonthlyAnalytics(data, 3, now, jakarta, nil)
		require.NoError(t, err)
		assert.Equal(t, out, again)
		assert.Equal(t, before, data)
	})

	t.Run("rejects empty window", func(t *testing.T) {
		_, err := ComputeMonthlyAnalytics(data, 0, now, jakarta, nil)
		var ve *composer.ValidationError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("rejects oversized window", func(t *testing.T) {
		_, err := ComputeMonthlyAnalytics(data, 100000000, now, jakarta, nil)
		var ve *composer.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "months", ve.Field)

		out, err := ComputeMonthlyAnalytics(data, MaxMonths, now, jakarta, nil)
		require.NoError(t, err)
		assert.Len(t, out.Months, MaxMonths)
	})
}

func TestComputeDashboard(t *testing.T) {
	data := sampleData()
	data.Meetings = []model.Meeting{
		{ID: "M1", StartAt: day(2025, 3, 1)},
		{ID: "M2", StartAt: day(2025, 2, 1)},
	}
	dash, err := ComputeDashboard(data, day(2025, 3, 20), jakarta, d(5))
	require.NoError(t, err)

	assert.Equal(t, "2025-03", dash.Month)
	assert.True(t, dash.MonthSales.Equal(d(500)))
	assert.True(t, dash.MonthPurchases.Equal(d(200)))
	assert.Equal(t, 2, dash.ProductCount)
	assert.Equal(t, 3, dash.EmployeeCount)
	assert.Equal(t, 1, dash.MeetingsThisMonth)
	assert.Empty(t, dash.LowStock, "6 and 7 remaining are above the threshold")

	dash, err = ComputeDashboard(data, day(2025, 3, 20), jakarta, d(6))
	require.NoError(t, err)
	require.Len(t, dash.LowStock, 1)
	assert.Equal(t, "PRD-0001", dash.LowStock[0].Product.ID)
}
