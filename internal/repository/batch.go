package repository

import (
	"fmt"

	"walldecor-admin/internal/model"
)

type Collection string

const (
	Employees      Collection = "employees"
	Products       Collection = "products"
	StockMovements Collection = "stockMovements"
	Transactions   Collection = "transactions"
	Productions    Collection = "productions"
	Meetings       Collection = "meetings"
	Settings       Collection = "settings"
)

// Singular names the records of a collection in error messages
func (c Collection) Singular() string {
	switch c {
	case Employees:
		return "employee"
	case Products:
		return "product"
	case StockMovements:
		return "stock movement"
	case Transactions:
		return "transaction"
	case Productions:
		return "production"
	case Meetings:
		return "meeting"
	}
	return string(c)
}

func notFound(c Collection, id string) error {
	return fmt.Errorf("%s %s: %w", c.Singular(), id, ErrNotFound)
}

type opKind int

const (
	opPut opKind = iota
	opDelete
	opDeleteMovementsBySource
	opDeleteMovementsByProduct
)

type op struct {
	kind       opKind
	collection Collection
	id         string
	record     any
	sourceType model.SourceType
}

// Batch is an ordered list of writes applied all-or-nothing by a Store
type Batch struct {
	ops []op
}

func NewBatch() *Batch {
	return &Batch{}
}

// Put inserts or replaces a record; new records go to the front of their list
func (b *Batch) Put(record any) *Batch {
	b.ops = append(b.ops, op{kind: opPut, collection: collectionOf(record), record: record})
	return b
}

// Delete removes one record and aborts the batch with ErrNotFound if it is missing
func (b *Batch) Delete(c Collection, id string) *Batch {
	b.ops = append(b.ops, op{kind: opDelete, collection: c, id: id})
	return b
}

// DeleteMovementsBySource removes every movement generated by one transaction or production
func (b *Batch) DeleteMovementsBySource(st model.SourceType, sourceID string) *Batch {
	b.ops = append(b.ops, op{kind: opDeleteMovementsBySource, collection: StockMovements, id: sourceID, sourceType: st})
	return b
}

// DeleteMovementsByProduct removes every movement of one product
func (b *Batch) DeleteMovementsByProduct(productID string) *Batch {
	b.ops = append(b.ops, op{kind: opDeleteMovementsByProduct, collection: StockMovements, id: productID})
	return b
}

func (b *Batch) Len() int {
	return len(b.ops)
}

func collectionOf(record any) Collection {
	switch record.(type) {
	case *model.Employee:
		return Employees
	case *model.Product:
		return Products
	case *model.StockMovement:
		return StockMovements
	case *model.Transaction:
		return Transactions
	case *model.Production:
		return Productions
	case *model.Meeting:
		return Meetings
	case *model.AppSettings:
		return Settings
	}
	panic(fmt.Sprintf("repository: unsupported record type %T", record))
}

// newRecord returns an empty pointer of the collection's record type
func newRecord(c Collection) any {
	switch c {
	case Employees:
		return &model.Employee{}
	case Products:
		return &model.Product{}
	case StockMovements:
		return &model.StockMovement{}
	case Transactions:
		return &model.Transaction{}
	case Productions:
		return &model.Production{}
	case Meetings:
		return &model.Meeting{}
	case Settings:
		return &model.AppSettings{}
	}
	panic(fmt.Sprintf("repository: unknown collection %q", c))
}
