package repository

import (
	"context"
	"errors"

	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/model"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when an update or remove targets a missing record
	ErrNotFound = errors.New("not found")
	// ErrBackend marks failures of the storage transport, e.g. an unreachable API
	ErrBackend = errors.New("backend unavailable")
)

// Notifier receives one signal after every successful mutation
type Notifier interface {
	NotifyChanged()
}

type nopNotifier struct{}

func (nopNotifier) NotifyChanged() {}

// Repository is the operation surface every backend implements with the same rules
type Repository interface {
	GetAll(ctx context.Context) (*model.AppData, error)
	Meta() model.Meta

	Employees() EmployeeRepository
	Products() ProductRepository
	StockMovements() StockMovementRepository
	Transactions() TransactionRepository
	Productions() ProductionRepository
	Meetings() MeetingRepository
	Settings() SettingsRepository
}

// EmployeeRepository has no remove: employees are never hard-deleted
type EmployeeRepository interface {
	List(ctx context.Context) ([]model.Employee, error)
	Create(ctx context.Context, in composer.EmployeeInput) (*model.Employee, error)
	Update(ctx context.Context, id string, patch model.EmployeePatch) (*model.Employee, error)
}

// ProductRepository removes a product together with its movements
type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	Create(ctx context.Context, in composer.ProductInput) (*model.Product, error)
	Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error)
	Remove(ctx context.Context, id string) error
}

// StockMovementRepository records manual adjustments; movements are never updated
type StockMovementRepository interface {
	List(ctx context.Context) ([]model.StockMovement, error)
	Create(ctx context.Context, in composer.MovementInput) (*model.StockMovement, error)
	Remove(ctx context.Context, id string) error
}

type TransactionRepository interface {
	List(ctx context.Context) ([]model.Transaction, error)
	Create(ctx context.Context, in composer.TransactionInput) (*model.Transaction, error)
	Remove(ctx context.Context, id string) error
}

type ProductionRepository interface {
	List(ctx context.Context) ([]model.Production, error)
	Create(ctx context.Context, in composer.ProductionInput) (*model.Production, error)
	Remove(ctx context.Context, id string) error
}

type MeetingRepository interface {
	List(ctx context.Context) ([]model.Meeting, error)
	Create(ctx context.Context, in composer.MeetingInput) (*model.Meeting, error)
	Update(ctx context.Context, id string, patch model.MeetingPatch) (*model.Meeting, error)
	Remove(ctx context.Context, id string) error
}

type SettingsRepository interface {
	Get(ctx context.Context) (model.AppSettings, error)
	SetCashOpeningBalance(ctx context.Context, amount decimal.Decimal) (model.AppSettings, error)
}

// Store is the persistence primitive behind the shared repository
type Store interface {
	// Load returns a deep copy of every collection
	Load(ctx context.Context) (*model.AppData, error)
	// Get copies one record into dst (a *model.X), or fails with ErrNotFound
	Get(ctx context.Context, c Collection, id string, dst any) error
	// Commit applies every op of the batch or none of them
	Commit(ctx context.Context, b *Batch) error
}
