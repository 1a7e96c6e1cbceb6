package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"walldecor-admin/internal/analytics"
	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/ledger"
	"walldecor-admin/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type countingNotifier struct{ n atomic.Int32 }

func (c *countingNotifier) NotifyChanged() { c.n.Add(1) }

func (c *countingNotifier) count() int { return int(c.n.Load()) }

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive across calls
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	s := NewGormStore(db)
	require.NoError(t, s.AutoMigrate())
	return s
}

type backend struct {
	name  string
	store func(t *testing.T) Store
}

var backends = []backend{
	{"local", func(t *testing.T) Store { return NewMemoryStore(nil) }},
	{"sqlite", func(t *testing.T) Store { return newSQLiteStore(t) }},
}

type fixture struct {
	repo     Repository
	store    Store
	notifier *countingNotifier
	clock    *testClock
}

func newFixture(t *testing.T, b backend) *fixture {
	clock := &testClock{t: time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)}
	n := &countingNotifier{}
	store := b.store(t)
	return &fixture{
		repo:     New(store, n, WithClock(clock.Now)),
		store:    store,
		notifier: n,
		clock:    clock,
	}
}

func (f *fixture) snapshot(t *testing.T) *model.AppData {
	t.Helper()
	data, err := f.repo.GetAll(context.Background())
	require.NoError(t, err)
	return data
}

func (f *fixture) remaining(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	data := f.snapshot(t)
	row, ok := ledger.StockOf(ledger.ComputeStock(data.StockMovements, data.Products, nil), productID)
	require.True(t, ok, "product %s missing", productID)
	return row.Remaining
}

func movementsOf(data *model.AppData, sourceID string) []model.StockMovement {
	var out []model.StockMovement
	for _, m := range data.StockMovements {
		if m.SourceID == sourceID {
			out = append(out, m)
		}
	}
	return out
}

func TestRepositoryProductionAndTradeCascades(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, b)

			kayu, err := f.repo.Products().Create(ctx, composer.ProductInput{Name: "Kayu", Category: "Bahan", Kind: model.KindRawMaterial})
			require.NoError(t, err)
			meja, err := f.repo.Products().Create(ctx, composer.ProductInput{Name: "Meja", Category: "Furnitur", Kind: model.KindFinished})
			require.NoError(t, err)

			// Production converts 10 Kayu into 2 Meja
			prod, err := f.repo.Productions().Create(ctx, composer.ProductionInput{
				RawProductID: kayu.ID, RawQuantity: dec("10"),
				FinishedProductID: meja.ID, FinishedQuantity: dec("2"),
				ResponsibleEmployeeID: "EMP-0002",
			})
			require.NoError(t, err)
			assert.True(t, f.remaining(t, kayu.ID).Equal(dec("-10")))
			assert.True(t, f.remaining(t, meja.ID).Equal(dec("2")))
			assert.Len(t, movementsOf(f.snapshot(t), prod.ID), 2)

			// Item sale derives its amount and moves stock out
			sale, err := f.repo.Transactions().Create(ctx, composer.TransactionInput{
				Type: model.TxSale, Description: "Jual meja", ResponsibleEmployeeID: "EMP-0001",
				Items: []model.TransactionItem{{ProductID: meja.ID, Quantity: dec("1"), UnitPrice: dec("500000")}},
			})
			require.NoError(t, err)
			assert.True(t, sale.Amount.Equal(dec("500000")))
			saleMoves := movementsOf(f.snapshot(t), sale.ID)
			require.Len(t, saleMoves, 1)
			assert.Equal(t, model.MovementOut, saleMoves[0].Type)
			assert.Equal(t, meja.ID, saleMoves[0].ProductID)
			assert.True(t, saleMoves[0].Quantity.Equal(dec("1")))

			summary := analytics.ComputeFinanceSummary(f.snapshot(t))
			assert.True(t, summary.TotalSales.Equal(dec("500000")))
			assert.True(t, summary.Profit.Equal(dec("500000")))

			// Service-mode purchase moves no stock
			fee, err := f.repo.Transactions().Create(ctx, composer.TransactionInput{
				Type: model.TxPurchase, Description: "Jasa angkut", ResponsibleEmployeeID: "EMP-0001", Amount: dec("200000"),
			})
			require.NoError(t, err)
			assert.Empty(t, movementsOf(f.snapshot(t), fee.ID))
			summary = analytics.ComputeFinanceSummary(f.snapshot(t))
			assert.True(t, summary.TotalPurchases.Equal(dec("200000")))

			// Removing the sale removes its movements with it
			require.NoError(t, f.repo.Transactions().Remove(ctx, sale.ID))
			data := f.snapshot(t)
			assert.Empty(t, movementsOf(data, sale.ID))
			for _, tx := range data.Transactions {
				assert.NotEqual(t, sale.ID, tx.ID)
			}

			// Removing the production restores both products to zero
			require.NoError(t, f.repo.Productions().Remove(ctx, prod.ID))
			assert.Empty(t, movementsOf(f.snapshot(t), prod.ID))
			assert.True(t, f.remaining(t, kayu.ID).IsZero())
			assert.True(t, f.remaining(t, meja.ID).IsZero())
			assert.Empty(t, f.snapshot(t).Productions)

			// 2 products, 1 production, 2 transactions, 2 removals
			assert.Equal(t, 7, f.notifier.count())
		})
	}
}

func TestRepositoryValidationHappensBeforeWrite(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, b)

			_, err := f.repo.Transactions().Create(ctx, composer.TransactionInput{
				Type: model.TxSale, Description: "Jual", ResponsibleEmployeeID: "EMP-0001",
				Items: []model.TransactionItem{
					{ProductID: "PRD-1", Quantity: dec("1"), UnitPrice: dec("10")},
					{ProductID: "PRD-2", Quantity: dec("0"), UnitPrice: dec("10")},
				},
			})
			var ve *composer.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.False(t, errors.Is(err, ErrNotFound))

			_, err = f.repo.Productions().Create(ctx, composer.ProductionInput{
				RawProductID: "PRD-1", RawQuantity: dec("1"),
				FinishedProductID: "PRD-1", FinishedQuantity: dec("1"),
				ResponsibleEmployeeID: "EMP-0001",
			})
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "raw and finished product must differ", ve.Message)

			data := f.snapshot(t)
			assert.Empty(t, data.Transactions)
			assert.Empty(t, data.Productions)
			assert.Empty(t, data.StockMovements)
			assert.Equal(t, 0, f.notifier.count())
		})
	}
}

func TestRepositoryNotFound(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, b)
			name := "X"

			_, err := f.repo.Employees().Update(ctx, "EMP-404", model.EmployeePatch{Name: &name})
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = f.repo.Products().Update(ctx, "PRD-404", model.ProductPatch{Name: &name})
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = f.repo.Meetings().Update(ctx, "MTG-404", model.MeetingPatch{Title: &name})
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, f.repo.Products().Remove(ctx, "PRD-404"), ErrNotFound)
			assert.ErrorIs(t, f.repo.StockMovements().Remove(ctx, "STK-404"), ErrNotFound)
			assert.ErrorIs(t, f.repo.Productions().Remove(ctx, "PRO-404"), ErrNotFound)
			assert.ErrorIs(t, f.repo.Meetings().Remove(ctx, "MTG-404"), ErrNotFound)
			assert.Equal(t, 0, f.notifier.count())
		})
	}
}

func TestRepositoryFailedCascadeAppliesNothing(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, b)

			// A movement whose transaction no longer exists
			orphan := &model.StockMovement{
				ID: "STK-20250101-AAAAAA", ProductID: "PRD-1", Type: model.MovementIn, Quantity: dec("3"),
				Date: f.clock.Now(), ResponsibleEmployeeID: "EMP-0001",
				SourceType: model.SourceTransaction, SourceID: "TRX-GHOST",
			}
			require.NoError(t, f.store.Commit(ctx, NewBatch().Put(orphan)))

			err := f.repo.Transactions().Remove(ctx, "TRX-GHOST")
			require.ErrorIs(t, err, ErrNotFound)
			assert.Contains(t, err.Error(), "transaction TRX-GHOST")
			assert.Len(t, f.snapshot(t).StockMovements, 1, "movement delete must roll back with the batch")
			assert.Equal(t, 0, f.notifier.count())
		})
	}
}

func TestRepositoryProductRemoveCascadesMovements(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, b)

			p, err := f.repo.Products().Create(ctx, composer.ProductInput{Name: "Macrame", Category: "Kain"})
			require.NoError(t, err)
			other, err := f.repo.Products().Create(ctx, composer.ProductInput{Name: "Rak", Category: "Kayu"})
			require.NoError(t, err)

			_, err = f.repo.StockMovements().Create(ctx, composer.MovementInput{ProductID: p.ID, Type: model.MovementIn, Quantity: dec("5"), ResponsibleEmployeeID: "EMP-0001"})
			require.NoError(t, err)
			_, err = f.repo.StockMovements().Create(ctx, composer.MovementInput{ProductID: other.ID, Type: model.MovementIn, Quantity: dec("1"), ResponsibleEmployeeID: "EMP-0001"})
			require.NoError(t, err)
			tx, err := f.repo.Transactions().Create(ctx, composer.TransactionInput{
				Type: model.TxSale, Description: "Jual", ResponsibleEmployeeID: "EMP-0001",
				Items: []model.TransactionItem{{ProductID: p.ID, Quantity: dec("2"), UnitPrice: dec("1000")}},
			})
			require.NoError(t, err)

			require.NoError(t, f.repo.Products().Remove(ctx, p.ID))

			data := f.snapshot(t)
			require.Len(t, data.StockMovements, 1)
			assert.Equal(t, other.ID, data.StockMovements[0].ProductID)
			// the transaction keeps its soft reference to the vanished product
			require.Len(t, data.Transactions, 1)
			assert.Equal(t, tx.ID, data.Transactions[0].ID)
			assert.Equal(t, p.ID, model.ProductLabel(data.Products, p.ID))
		})
	}
}

func TestRepositoryStockMovementRemove(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, b)

			manual, err := f.repo.StockMovements().Create(ctx, composer.MovementInput{ProductID: "PRD-1", Type: model.MovementOut, Quantity: dec("2"), ResponsibleEmployeeID: "EMP-0001"})
			require.NoError(t, err)
			assert.Equal(t, model.SourceManual, manual.SourceType)

			tx, err := f.repo.Transactions().Create(ctx, composer.TransactionInput{
				Type: model.TxPurchase, Description: "Beli", ResponsibleEmployeeID: "EMP-0001",
				Items: []model.TransactionItem{{ProductID: "PRD-1", Quantity: dec("4"), UnitPrice: dec("100")}},
			})
			require.NoError(t, err)
			generated := movementsOf(f.snapshot(t), tx.ID)
			require.Len(t, generated, 1)

			err = f.repo.StockMovements().Remove(ctx, generated[0].ID)
			var ve *composer.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Message, tx.ID)

			require.NoError(t, f.repo.StockMovements().Remove(ctx, manual.ID))
			data := f.snapshot(t)
			require.Len(t, data.StockMovements, 1)
			assert.Equal(t, generated[0].ID, data.StockMovements[0].ID)
		})
	}
}

func TestRepositoryUpdates(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, b)

			e, err := f.repo.Employees().Create(ctx, composer.EmployeeInput{Name: "Sari", Position: "Admin", Role: model.RolePending})
			require.NoError(t, err)
			created := e.CreatedAt

			f.clock.Advance(time.Hour)
			role := model.RoleCMO
			updated, err := f.repo.Employees().Update(ctx, e.ID, model.EmployeePatch{Role: &role})
			require.NoError(t, err)
			assert.Equal(t, e.ID, updated.ID)
			assert.True(t, updated.CreatedAt.Equal(created))
			assert.True(t, updated.UpdatedAt.Equal(created.Add(time.Hour)))
			assert.Equal(t, model.RoleCMO, updated.Role)

			employees, err := f.repo.Employees().List(ctx)
			require.NoError(t, err)
			require.Len(t, employees, 1)
			assert.Equal(t, model.RoleCMO, employees[0].Role)
			assert.Equal(t, "Admin", employees[0].Position)

			m, err := f.repo.Meetings().Create(ctx, composer.MeetingInput{
				Title: "Rapat", StartAt: f.clock.Now(), Location: "Kantor",
				Attendance: []model.MeetingAttendance{{Name: "Sari", Status: model.AttendancePresent}},
			})
			require.NoError(t, err)
			notes := "stok aman"
			m2, err := f.repo.Meetings().Update(ctx, m.ID, model.MeetingPatch{Notes: &notes})
			require.NoError(t, err)
			assert.Equal(t, "stok aman", m2.Notes)
			assert.Len(t, m2.Attendance, 1)

			require.NoError(t, f.repo.Meetings().Remove(ctx, m.ID))
			meetings, err := f.repo.Meetings().List(ctx)
			require.NoError(t, err)
			assert.Empty(t, meetings)
		})
	}
}

func TestRepositorySettingsAndMeta(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, b)
			startedAt := *f.repo.Meta().UpdatedAt

			s, err := f.repo.Settings().Get(ctx)
			require.NoError(t, err)
			assert.True(t, s.CashOpeningBalance.IsZero())

			f.clock.Advance(time.Minute)
			_, err = f.repo.Settings().SetCashOpeningBalance(ctx, dec("1500000"))
			require.NoError(t, err)

			s, err = f.repo.Settings().Get(ctx)
			require.NoError(t, err)
			assert.True(t, s.CashOpeningBalance.Equal(dec("1500000")))
			assert.True(t, f.snapshot(t).Settings.CashOpeningBalance.Equal(dec("1500000")))

			meta := f.repo.Meta()
			assert.True(t, meta.Ready)
			assert.True(t, meta.UpdatedAt.After(startedAt))
		})
	}
}

func TestRepositoryConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, backends[0])

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.repo.StockMovements().Create(ctx, composer.MovementInput{
				ProductID: "PRD-1", Type: model.MovementIn, Quantity: dec("1"), ResponsibleEmployeeID: "EMP-0001",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, f.snapshot(t).StockMovements, 20)
	assert.Equal(t, 20, f.notifier.count())
}

func TestRepositoryGeneratedMovementsKeepItemOrder(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, b)

			var ids []string
			for _, name := range []string{"A", "B", "C"} {
				p, err := f.repo.Products().Create(ctx, composer.ProductInput{Name: name, Category: "Bahan"})
				require.NoError(t, err)
				ids = append(ids, p.ID)
			}

			// same date for everything, so only the insertion sequence can order them
			buy := func() *model.Transaction {
				items := make([]model.TransactionItem, len(ids))
				for i, id := range ids {
					items[i] = model.TransactionItem{ProductID: id, Quantity: dec("1"), UnitPrice: dec("1000")}
				}
				tx, err := f.repo.Transactions().Create(ctx, composer.TransactionInput{
					Type: model.TxPurchase, Description: "Restock", ResponsibleEmployeeID: "EMP-0001", Items: items,
				})
				require.NoError(t, err)
				return tx
			}
			first := buy()
			second := buy()

			order := func(sourceID string) []string {
				var got []string
				for _, m := range movementsOf(f.snapshot(t), sourceID) {
					got = append(got, m.ProductID)
				}
				return got
			}
			assert.Equal(t, ids, order(first.ID))
			assert.Equal(t, ids, order(second.ID))

			// newest batch first
			data := f.snapshot(t)
			require.Len(t, data.StockMovements, 6)
			for _, m := range data.StockMovements[:3] {
				assert.Equal(t, second.ID, m.SourceID)
			}

			manual, err := f.repo.StockMovements().Create(ctx, composer.MovementInput{
				ProductID: ids[0], Type: model.MovementIn, Quantity: dec("2"), ResponsibleEmployeeID: "EMP-0001",
			})
			require.NoError(t, err)
			assert.Equal(t, manual.ID, f.snapshot(t).StockMovements[0].ID)
		})
	}
}
