package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"walldecor-admin/internal/model"

	"gorm.io/gorm"
)

// GormStore persists every collection in its own table. Works with postgres and sqlite.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates every table this store and the credential repo use
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(
		&model.Employee{},
		&model.Product{},
		&model.StockMovement{},
		&model.Transaction{},
		&model.Production{},
		&model.Meeting{},
		&model.AppSettings{},
		&model.Credential{},
	)
}

// Load reads all collections inside one read transaction so the snapshot is never torn
func (s *GormStore) Load(ctx context.Context) (*model.AppData, error) {
	var data model.AppData
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("created_at DESC").Find(&data.Employees).Error; err != nil {
			return err
		}
		if err := tx.Order("created_at DESC").Find(&data.Products).Error; err != nil {
			return err
		}
		if err := tx.Order("date DESC, seq DESC, id DESC").Find(&data.StockMovements).Error; err != nil {
			return err
		}
		if err := tx.Order("date DESC, id DESC").Find(&data.Transactions).Error; err != nil {
			return err
		}
		if err := tx.Order("date DESC, id DESC").Find(&data.Productions).Error; err != nil {
			return err
		}
		if err := tx.Order("created_at DESC").Find(&data.Meetings).Error; err != nil {
			return err
		}
		err := tx.First(&data.Settings, "id = ?", model.SettingsID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return nil
	}, s.readOptions())
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	data.Normalize()
	return &data, nil
}

// readOptions asks postgres for a repeatable-read snapshot; sqlite transactions are already serialized
func (s *GormStore) readOptions() *sql.TxOptions {
	if s.db.Dialector.Name() == "postgres" {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, c Collection, id string, dst any) error {
	err := s.db.WithContext(ctx).First(dst, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(c, id)
	}
	if err != nil {
		return fmt.Errorf("get %s %s: %w", c.Singular(), id, err)
	}
	if p, ok := dst.(*model.Product); ok {
		p.Normalize()
	}
	return nil
}

// Commit runs the batch in one database transaction; any failing op rolls back all of them
func (s *GormStore) Commit(ctx context.Context, b *Batch) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range b.ops {
			if err := s.exec(tx, o); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) exec(tx *gorm.DB, o op) error {
	switch o.kind {
	case opPut:
		if err := tx.Save(o.record).Error; err != nil {
			return fmt.Errorf("save %s: %w", o.collection.Singular(), err)
		}
		return nil

	case opDelete:
		res := tx.Delete(newRecord(o.collection), "id = ?", o.id)
		if res.Error != nil {
			return fmt.Errorf("delete %s %s: %w", o.collection.Singular(), o.id, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound(o.collection, o.id)
		}
		return nil

	case opDeleteMovementsBySource:
		err := tx.Where("source_type = ? AND source_id = ?", o.sourceType, o.id).
			Delete(&model.StockMovement{}).Error
		if err != nil {
			return fmt.Errorf("delete movements of %s %s: %w", o.sourceType, o.id, err)
		}
		return nil

	case opDeleteMovementsByProduct:
		if err := tx.Where("product_id = ?", o.id).Delete(&model.StockMovement{}).Error; err != nil {
			return fmt.Errorf("delete movements of product %s: %w", o.id, err)
		}
		return nil
	}
	return fmt.Errorf("gorm store: unknown op %d", o.kind)
}
