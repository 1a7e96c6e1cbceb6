package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"walldecor-admin/internal/model"

	"go.uber.org/zap"
)

// LocalStore keeps the whole dataset in memory and optionally mirrors it to a JSON file.
// Commit works on a copy and swaps it in, so a failed batch or file write changes nothing.
type LocalStore struct {
	mu   sync.RWMutex
	data *model.AppData
	path string
	log  *zap.Logger
}

// NewMemoryStore starts from data (or an empty dataset when nil) and never touches disk
func NewMemoryStore(data *model.AppData) *LocalStore {
	if data == nil {
		data = &model.AppData{}
	}
	data = data.Clone()
	data.Normalize()
	return &LocalStore{data: data, log: zap.NewNop()}
}

// OpenLocalStore reads path if it exists, otherwise starts from seed (may be nil).
// The file is first written on the first commit.
func OpenLocalStore(path string, seed *model.AppData, log *zap.Logger) (*LocalStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := NewMemoryStore(seed)
	s.path = path
	s.log = log

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("Data file not found, starting from seed", zap.String("path", path), zap.Bool("seeded", seed != nil))
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	var data model.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", path, err)
	}
	data.Normalize()
	s.data = &data
	log.Info("Data file loaded", zap.String("path", path),
		zap.Int("products", len(data.Products)),
		zap.Int("stock_movements", len(data.StockMovements)))
	return s, nil
}

func (s *LocalStore) Load(ctx context.Context) (*model.AppData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone(), nil
}

func (s *LocalStore) Get(ctx context.Context, c Collection, id string, dst any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found bool
	switch out := dst.(type) {
	case *model.Employee:
		*out, found = find(s.data.Employees, id, func(e model.Employee) string { return e.ID })
	case *model.Product:
		*out, found = find(s.data.Products, id, func(p model.Product) string { return p.ID })
	case *model.StockMovement:
		*out, found = find(s.data.StockMovements, id, func(m model.StockMovement) string { return m.ID })
	case *model.Transaction:
		*out, found = find(s.data.Transactions, id, func(t model.Transaction) string { return t.ID })
	case *model.Production:
		*out, found = find(s.data.Productions, id, func(p model.Production) string { return p.ID })
	case *model.Meeting:
		*out, found = find(s.data.Meetings, id, func(m model.Meeting) string { return m.ID })
	case *model.AppSettings:
		*out, found = s.data.Settings, true
	default:
		return fmt.Errorf("local store: unsupported record type %T", dst)
	}
	if !found {
		return notFound(c, id)
	}
	// nested lists must not alias the stored snapshot
	switch out := dst.(type) {
	case *model.Transaction:
		if out.Items != nil {
			out.Items = append(model.TransactionItems{}, out.Items...)
		}
	case *model.Meeting:
		out.Attendance = append(model.MeetingAttendances{}, out.Attendance...)
	}
	return nil
}

func (s *LocalStore) Commit(ctx context.Context, b *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.Clone()
	for _, o := range b.ops {
		if err := apply(next, o); err != nil {
			return err
		}
	}
	if s.path != "" {
		if err := writeFileAtomic(s.path, next); err != nil {
			return fmt.Errorf("save data file: %w", err)
		}
	}
	s.data = next
	return nil
}

func apply(data *model.AppData, o op) error {
	switch o.kind {
	case opPut:
		switch rec := o.record.(type) {
		case *model.Employee:
			data.Employees = upsert(data.Employees, *rec, func(e model.Employee) string { return e.ID })
		case *model.Product:
			data.Products = upsert(data.Products, *rec, func(p model.Product) string { return p.ID })
		case *model.StockMovement:
			data.StockMovements = upsert(data.StockMovements, *rec, func(m model.StockMovement) string { return m.ID })
		case *model.Transaction:
			data.Transactions = upsert(data.Transactions, *rec, func(t model.Transaction) string { return t.ID })
		case *model.Production:
			data.Productions = upsert(data.Productions, *rec, func(p model.Production) string { return p.ID })
		case *model.Meeting:
			data.Meetings = upsert(data.Meetings, *rec, func(m model.Meeting) string { return m.ID })
		case *model.AppSettings:
			data.Settings = *rec
		}
		return nil

	case opDelete:
		var ok bool
		switch o.collection {
		case Employees:
			data.Employees, ok = without(data.Employees, o.id, func(e model.Employee) string { return e.ID })
		case Products:
			data.Products, ok = without(data.Products, o.id, func(p model.Product) string { return p.ID })
		case StockMovements:
			data.StockMovements, ok = without(data.StockMovements, o.id, func(m model.StockMovement) string { return m.ID })
		case Transactions:
			data.Transactions, ok = without(data.Transactions, o.id, func(t model.Transaction) string { return t.ID })
		case Productions:
			data.Productions, ok = without(data.Productions, o.id, func(p model.Production) string { return p.ID })
		case Meetings:
			data.Meetings, ok = without(data.Meetings, o.id, func(m model.Meeting) string { return m.ID })
		}
		if !ok {
			return notFound(o.collection, o.id)
		}
		return nil

	case opDeleteMovementsBySource:
		data.StockMovements = filter(data.StockMovements, func(m model.StockMovement) bool {
			return !(m.SourceType == o.sourceType && m.SourceID == o.id)
		})
		return nil

	case opDeleteMovementsByProduct:
		data.StockMovements = filter(data.StockMovements, func(m model.StockMovement) bool {
			return m.ProductID != o.id
		})
		return nil
	}
	return fmt.Errorf("local store: unknown op %d", o.kind)
}

func find[T any](list []T, id string, idOf func(T) string) (T, bool) {
	for _, item := range list {
		if idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// upsert replaces in place, or prepends so lists stay newest first
func upsert[T any](list []T, rec T, idOf func(T) string) []T {
	id := idOf(rec)
	for i := range list {
		if idOf(list[i]) == id {
			list[i] = rec
			return list
		}
	}
	return append([]T{rec}, list...)
}

func without[T any](list []T, id string, idOf func(T) string) ([]T, bool) {
	for i := range list {
		if idOf(list[i]) == id {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}

func filter[T any](list []T, keep func(T) bool) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// writeFileAtomic writes to a temp file in the same directory and renames it over path
func writeFileAtomic(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
