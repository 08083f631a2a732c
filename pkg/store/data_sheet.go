package store

import (
	"context"

	"custdesk/models"

	"gorm.io/gorm"
)

// DataSheetPatch carries the fields to change; nil keeps the stored value.
type DataSheetPatch struct {
	Description    *string
	HistoricalData *string
}

// DataSheetRepository is plain CRUD over data sheets.
type DataSheetRepository struct {
	t table[models.DataSheet]
}

func NewDataSheetRepository(db *gorm.DB) *DataSheetRepository {
	return &DataSheetRepository{t: table[models.DataSheet]{db: db, entity: "data sheet"}}
}

func (r *DataSheetRepository) List(ctx context.Context) ([]models.DataSheet, error) {
	return r.t.list(ctx)
}

func (r *DataSheetRepository) Get(ctx context.Context, id uint) (*models.DataSheet, error) {
	return r.t.get(ctx, id)
}

func (r *DataSheetRepository) Create(ctx context.Context, ds *models.DataSheet) error {
	return r.t.create(ctx, ds)
}

func (r *DataSheetRepository) Update(ctx context.Context, id uint, p DataSheetPatch) (*models.DataSheet, error) {
	return r.t.update(ctx, id, func(_ *gorm.DB, ds *models.DataSheet) error {
		if p.Description != nil {
			ds.Description = *p.Description
		}
		if p.HistoricalData != nil {
			ds.HistoricalData = *p.HistoricalData
		}
		return nil
	})
}

// Delete removes the sheet. Customers owning it are removed with it by the
// foreign key cascade.
func (r *DataSheetRepository) Delete(ctx context.Context, id uint) error {
	return r.t.delete(ctx, id)
}
