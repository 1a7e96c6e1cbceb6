package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/model"
	"walldecor-admin/pkg/idgen"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Option func(*repo)

func WithClock(now func() time.Time) Option {
	return func(r *repo) { r.now = now }
}

// WithLocation sets the business timezone used to date generated ids
func WithLocation(loc *time.Location) Option {
	return func(r *repo) { r.loc = loc }
}

func WithLogger(log *zap.Logger) Option {
	return func(r *repo) { r.log = log }
}

// repo validates through the composer and funnels every write through one mutex
type repo struct {
	store    Store
	notifier Notifier
	composer *composer.Composer
	now      func() time.Time
	loc      *time.Location
	log      *zap.Logger

	writeMu   sync.Mutex
	lastSeq   int64 // guarded by writeMu
	metaMu    sync.RWMutex
	updatedAt time.Time
}

// New builds the shared repository implementation on top of a Store
func New(store Store, notifier Notifier, opts ...Option) Repository {
	r := &repo{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		loc:      time.UTC,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.notifier == nil {
		r.notifier = nopNotifier{}
	}
	r.composer = composer.New(idgen.New(r.loc).WithClock(r.now), r.now)
	r.updatedAt = r.now()
	return r
}

// nextSeq hands out increasing movement sequence numbers. Caller holds writeMu.
func (r *repo) nextSeq() int64 {
	seq := r.now().UnixNano()
	if seq <= r.lastSeq {
		seq = r.lastSeq + 1
	}
	r.lastSeq = seq
	return seq
}

// putMovements adds generated movements so the stored list keeps their item order:
// puts prepend, so the last item goes in first and gets the lowest sequence.
func (r *repo) putMovements(b *Batch, movements []model.StockMovement) {
	for i := len(movements) - 1; i >= 0; i-- {
		movements[i].Seq = r.nextSeq()
		b.Put(&movements[i])
	}
}

func (r *repo) GetAll(ctx context.Context) (*model.AppData, error) {
	return r.store.Load(ctx)
}

func (r *repo) Meta() model.Meta {
	r.metaMu.RLock()
	defer r.metaMu.RUnlock()
	at := r.updatedAt
	return model.Meta{Ready: true, UpdatedAt: &at}
}

// mutate runs fn under the write lock and commits the batch it returns.
// The change signal fires after the lock is released, and only on success.
func (r *repo) mutate(ctx context.Context, fn func() (*Batch, error)) error {
	r.writeMu.Lock()
	err := func() error {
		b, err := fn()
		if err != nil {
			return err
		}
		if err := r.store.Commit(ctx, b); err != nil {
			r.log.Warn("Commit failed", zap.Int("ops", b.Len()), zap.Error(err))
			return err
		}
		r.log.Debug("Committed batch", zap.Int("ops", b.Len()))
		return nil
	}()
	r.writeMu.Unlock()
	if err != nil {
		return err
	}

	r.metaMu.Lock()
	r.updatedAt = r.now()
	r.metaMu.Unlock()
	r.notifier.NotifyChanged()
	return nil
}

func (r *repo) Employees() EmployeeRepository           { return employeeRepo{r} }
func (r *repo) Products() ProductRepository             { return productRepo{r} }
func (r *repo) StockMovements() StockMovementRepository { return movementRepo{r} }
func (r *repo) Transactions() TransactionRepository     { return transactionRepo{r} }
func (r *repo) Productions() ProductionRepository       { return productionRepo{r} }
func (r *repo) Meetings() MeetingRepository             { return meetingRepo{r} }
func (r *repo) Settings() SettingsRepository            { return settingsRepo{r} }

type employeeRepo struct{ *repo }

func (r employeeRepo) List(ctx context.Context) ([]model.Employee, error) {
	data, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Employees, nil
}

func (r employeeRepo) Create(ctx context.Context, in composer.EmployeeInput) (*model.Employee, error) {
	e, err := r.composer.NewEmployee(in)
	if err != nil {
		return nil, err
	}
	if err := r.mutate(ctx, func() (*Batch, error) { return NewBatch().Put(e), nil }); err != nil {
		return nil, err
	}
	return e, nil
}

func (r employeeRepo) Update(ctx context.Context, id string, patch model.EmployeePatch) (*model.Employee, error) {
	var next *model.Employee
	err := r.mutate(ctx, func() (*Batch, error) {
		var current model.Employee
		if err := r.store.Get(ctx, Employees, id, &current); err != nil {
			return nil, err
		}
		var err error
		if next, err = r.composer.PatchEmployee(current, patch); err != nil {
			return nil, err
		}
		return NewBatch().Put(next), nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

type productRepo struct{ *repo }

func (r productRepo) List(ctx context.Context) ([]model.Product, error) {
	data, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Products, nil
}

func (r productRepo) Create(ctx context.Context, in composer.ProductInput) (*model.Product, error) {
	p, err := r.composer.NewProduct(in)
	if err != nil {
		return nil, err
	}
	if err := r.mutate(ctx, func() (*Batch, error) { return NewBatch().Put(p), nil }); err != nil {
		return nil, err
	}
	return p, nil
}

func (r productRepo) Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	var next *model.Product
	err := r.mutate(ctx, func() (*Batch, error) {
		var current model.Product
		if err := r.store.Get(ctx, Products, id, &current); err != nil {
			return nil, err
		}
		var err error
		if next, err = r.composer.PatchProduct(current, patch); err != nil {
			return nil, err
		}
		return NewBatch().Put(next), nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Remove deletes the product and every movement that references it
func (r productRepo) Remove(ctx context.Context, id string) error {
	return r.mutate(ctx, func() (*Batch, error) {
		return NewBatch().DeleteMovementsByProduct(id).Delete(Products, id), nil
	})
}

type movementRepo struct{ *repo }

func (r movementRepo) List(ctx context.Context) ([]model.StockMovement, error) {
	data, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.StockMovements, nil
}

func (r movementRepo) Create(ctx context.Context, in composer.MovementInput) (*model.StockMovement, error) {
	m, err := r.composer.ComposeMovement(in)
	if err != nil {
		return nil, err
	}
	err = r.mutate(ctx, func() (*Batch, error) {
		m.Seq = r.nextSeq()
		return NewBatch().Put(m), nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Remove only deletes manual movements; generated ones go with their source
func (r movementRepo) Remove(ctx context.Context, id string) error {
	return r.mutate(ctx, func() (*Batch, error) {
		var m model.StockMovement
		if err := r.store.Get(ctx, StockMovements, id, &m); err != nil {
			return nil, err
		}
		if m.Generated() {
			return nil, composer.Invalid("sourceType",
				"movement belongs to "+string(m.SourceType)+" "+m.SourceID+"; delete the source instead")
		}
		return NewBatch().Delete(StockMovements, id), nil
	})
}

type transactionRepo struct{ *repo }

func (r transactionRepo) List(ctx context.Context) ([]model.Transaction, error) {
	data, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Transactions, nil
}

func (r transactionRepo) Create(ctx context.Context, in composer.TransactionInput) (*model.Transaction, error) {
	tx, movements, err := r.composer.ComposeTransaction(in)
	if err != nil {
		return nil, err
	}
	err = r.mutate(ctx, func() (*Batch, error) {
		b := NewBatch()
		r.putMovements(b, movements)
		return b.Put(tx), nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (r transactionRepo) Remove(ctx context.Context, id string) error {
	return r.mutate(ctx, func() (*Batch, error) {
		return NewBatch().DeleteMovementsBySource(model.SourceTransaction, id).Delete(Transactions, id), nil
	})
}

type productionRepo struct{ *repo }

func (r productionRepo) List(ctx context.Context) ([]model.Production, error) {
	data, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Productions, nil
}

func (r productionRepo) Create(ctx context.Context, in composer.ProductionInput) (*model.Production, error) {
	p, movements, err := r.composer.ComposeProduction(in)
	if err != nil {
		return nil, err
	}
	err = r.mutate(ctx, func() (*Batch, error) {
		b := NewBatch()
		r.putMovements(b, movements)
		return b.Put(p), nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r productionRepo) Remove(ctx context.Context, id string) error {
	return r.mutate(ctx, func() (*Batch, error) {
		return NewBatch().DeleteMovementsBySource(model.SourceProduction, id).Delete(Productions, id), nil
	})
}

type meetingRepo struct{ *repo }

func (r meetingRepo) List(ctx context.Context) ([]model.Meeting, error) {
	data, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Meetings, nil
}

func (r meetingRepo) Create(ctx context.Context, in composer.MeetingInput) (*model.Meeting, error) {
	m, err := r.composer.NewMeeting(in)
	if err != nil {
		return nil, err
	}
	if err := r.mutate(ctx, func() (*Batch, error) { return NewBatch().Put(m), nil }); err != nil {
		return nil, err
	}
	return m, nil
}

func (r meetingRepo) Update(ctx context.Context, id string, patch model.MeetingPatch) (*model.Meeting, error) {
	var next *model.Meeting
	err := r.mutate(ctx, func() (*Batch, error) {
		var current model.Meeting
		if err := r.store.Get(ctx, Meetings, id, &current); err != nil {
			return nil, err
		}
		var err error
		if next, err = r.composer.PatchMeeting(current, patch); err != nil {
			return nil, err
		}
		return NewBatch().Put(next), nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (r meetingRepo) Remove(ctx context.Context, id string) error {
	return r.mutate(ctx, func() (*Batch, error) {
		return NewBatch().Delete(Meetings, id), nil
	})
}

type settingsRepo struct{ *repo }

func (r settingsRepo) Get(ctx context.Context) (model.AppSettings, error) {
	var s model.AppSettings
	err := r.store.Get(ctx, Settings, model.SettingsID, &s)
	if errors.Is(err, ErrNotFound) {
		return model.AppSettings{ID: model.SettingsID, CashOpeningBalance: decimal.Zero}, nil
	}
	return s, err
}

func (r settingsRepo) SetCashOpeningBalance(ctx context.Context, amount decimal.Decimal) (model.AppSettings, error) {
	s := model.AppSettings{ID: model.SettingsID, CashOpeningBalance: amount}
	if err := r.mutate(ctx, func() (*Batch, error) { return NewBatch().Put(&s), nil }); err != nil {
		return model.AppSettings{}, err
	}
	return s, nil
}
