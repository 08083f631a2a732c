package store

import (
	"context"

	"custdesk/models"

	"gorm.io/gorm"
)

// ProfessionRepository is plain CRUD over professions.
type ProfessionRepository struct {
	t table[models.Profession]
}

func NewProfessionRepository(db *gorm.DB) *ProfessionRepository {
	return &ProfessionRepository{t: table[models.Profession]{db: db, entity: "profession"}}
}

func (r *ProfessionRepository) List(ctx context.Context) ([]models.Profession, error) {
	return r.t.list(ctx)
}

func (r *ProfessionRepository) Get(ctx context.Context, id uint) (*models.Profession, error) {
	return r.t.get(ctx, id)
}

func (r *ProfessionRepository) Create(ctx context.Context, p *models.Profession) error {
	return r.t.create(ctx, p)
}

// Update applies description when non-nil.
func (r *ProfessionRepository) Update(ctx context.Context, id uint, description *string) (*models.Profession, error) {
	return r.t.update(ctx, id, func(_ *gorm.DB, p *models.Profession) error {
		if description != nil {
			p.Description = *description
		}
		return nil
	})
}

func (r *ProfessionRepository) Delete(ctx context.Context, id uint) error {
	return r.t.delete(ctx, id)
}
