// Package store holds the gorm-backed repositories for customers and the
// records they reference. Every write runs inside a scoped transaction.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDataSheetTaken is returned when a data sheet is already owned by another customer.
	ErrDataSheetTaken = errors.New("data sheet already assigned to another customer")
)

// Stores bundles the repositories sharing one connection.
type Stores struct {
	db          *gorm.DB
	Customers   *CustomerRepository
	Professions *ProfessionRepository
	DataSheets  *DataSheetRepository
	Documents   *DocumentRepository
}

// New wires every repository to db.
func New(db *gorm.DB) *Stores {
	return &Stores{
		db:          db,
		Customers:   NewCustomerRepository(db),
		Professions: NewProfessionRepository(db),
		DataSheets:  NewDataSheetRepository(db),
		Documents:   NewDocumentRepository(db),
	}
}

// Ping checks that the underlying connection is alive.
func (s *Stores) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// notFound converts gorm's missing-row error into ErrNotFound, naming the entity.
func notFound(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d %w", entity, id, ErrNotFound)
	}
	return err
}

// table is the plain CRUD shared by the single-table repositories.
type table[T any] struct {
	db     *gorm.DB
	entity string
}

func (t table[T]) list(ctx context.Context) ([]T, error) {
	out := []T{}
	if err := t.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (t table[T]) get(ctx context.Context, id uint) (*T, error) {
	return t.first(t.db.WithContext(ctx), id)
}

func (t table[T]) first(tx *gorm.DB, id uint) (*T, error) {
	var v T
	if err := tx.First(&v, id).Error; err != nil {
		return nil, notFound(err, t.entity, id)
	}
	return &v, nil
}

func (t table[T]) create(ctx context.Context, v *T) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(v).Error
	})
}

// update loads the row, lets apply mutate it and saves it back in one transaction.
func (t table[T]) update(ctx context.Context, id uint, apply func(tx *gorm.DB, v *T) error) (*T, error) {
	var out *T
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := t.first(tx, id)
		if err != nil {
			return err
		}
		if err := apply(tx, v); err != nil {
			return err
		}
		if err := tx.Save(v).Error; err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t table[T]) delete(ctx context.Context, id uint) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(new(T), id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%s %d %w", t.entity, id, ErrNotFound)
		}
		return nil
	})
}
