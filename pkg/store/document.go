package store

import (
	"context"

	"custdesk/models"

	"gorm.io/gorm"
)

// DocumentPatch carries the fields to change; nil keeps the stored value.
type DocumentPatch struct {
	Dtype      *string
	DocNumber  *string
	CustomerID *uint
}

// DocumentRepository is plain CRUD over documents. The referenced customer
// must exist on every write.
type DocumentRepository struct {
	t table[models.Document]
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{t: table[models.Document]{db: db, entity: "document"}}
}

func (r *DocumentRepository) List(ctx context.Context) ([]models.Document, error) {
	return r.t.list(ctx)
}

func (r *DocumentRepository) Get(ctx context.Context, id uint) (*models.Document, error) {
	return r.t.get(ctx, id)
}

func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) error {
	return r.t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := customerExists(tx, d.CustomerID); err != nil {
			return err
		}
		return tx.Create(d).Error
	})
}

func (r *DocumentRepository) Update(ctx context.Context, id uint, p DocumentPatch) (*models.Document, error) {
	return r.t.update(ctx, id, func(tx *gorm.DB, d *models.Document) error {
		if p.Dtype != nil {
			d.Dtype = *p.Dtype
		}
		if p.DocNumber != nil {
			d.DocNumber = *p.DocNumber
		}
		if p.CustomerID != nil {
			if err := customerExists(tx, *p.CustomerID); err != nil {
				return err
			}
			d.CustomerID = *p.CustomerID
		}
		return nil
	})
}

func (r *DocumentRepository) Delete(ctx context.Context, id uint) error {
	return r.t.delete(ctx, id)
}

func customerExists(tx *gorm.DB, id uint) error {
	var c models.Customer
	if err := tx.Select("id").First(&c, id).Error; err != nil {
		return notFound(err, "customer", id)
	}
	return nil
}
