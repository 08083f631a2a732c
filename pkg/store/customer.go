package store

import (
	"context"
	"fmt"

	"custdesk/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewCustomer is the compound-create payload: the data sheet and the
// professions are inline bodies, not references.
type NewCustomer struct {
	Name        string
	Address     string
	Active      *bool
	DataSheet   models.DataSheet
	Professions []string
}

// CustomerUpdate is the full-replace payload. Data sheet and profession are
// referenced by id.
type CustomerUpdate struct {
	Name         string
	Address      string
	DataSheetID  uint
	ProfessionID uint
}

// CustomerPatch keeps the stored value for every nil field. ClearDataSheet
// unassigns the sheet and wins over DataSheetID.
type CustomerPatch struct {
	Name           *string
	Address        *string
	DataSheetID    *uint
	ClearDataSheet bool
}

// CustomerRepository reads and writes the customer aggregate.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// expanded preloads the owned data sheet and the linked professions.
func expanded(tx *gorm.DB) *gorm.DB {
	return tx.Preload("DataSheet").Preload("Professions", func(db *gorm.DB) *gorm.DB {
		return db.Order("professions.id")
	})
}

func (r *CustomerRepository) find(tx *gorm.DB, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := expanded(tx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "customer", id)
	}
	return &c, nil
}

func (r *CustomerRepository) findMany(tx *gorm.DB, ids []uint) ([]models.Customer, error) {
	out := []models.Customer{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := expanded(tx).Where("customers.id IN ?", ids).Order("customers.id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// load fetches the bare row, without associations. A row outside the
// address/active scope of f is not found.
func (r *CustomerRepository) load(tx *gorm.DB, id uint, f CustomerFilter) (*models.Customer, error) {
	var c models.Customer
	if err := f.base(tx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "customer", id)
	}
	return &c, nil
}

// List returns the expanded customers matching f.
func (r *CustomerRepository) List(ctx context.Context, f CustomerFilter) ([]models.Customer, error) {
	out := []models.Customer{}
	if err := expanded(f.listing(r.db.WithContext(ctx).Model(&models.Customer{}))).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one expanded customer by id, within the address/active scope of f.
func (r *CustomerRepository) Get(ctx context.Context, id uint, f CustomerFilter) (*models.Customer, error) {
	return r.find(f.base(r.db.WithContext(ctx)), id)
}

// Create inserts the data sheet, the customer and one new profession per
// entry, all or nothing.
func (r *CustomerRepository) Create(ctx context.Context, in NewCustomer) (*models.Customer, error) {
	var out *models.Customer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sheet := models.DataSheet{Description: in.DataSheet.Description, HistoricalData: in.DataSheet.HistoricalData}
		if err := tx.Create(&sheet).Error; err != nil {
			return fmt.Errorf("create data sheet: %w", err)
		}
		c := models.Customer{Name: in.Name, Address: in.Address, Active: true, DataSheetID: &sheet.ID}
		if in.Active != nil {
			c.Active = *in.Active
		}
		if err := tx.Omit(clause.Associations).Create(&c).Error; err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
		for _, desc := range in.Professions {
			p := models.Profession{Description: desc}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("create profession: %w", err)
			}
			if err := tx.Model(&c).Association("Professions").Append(&p); err != nil {
				return fmt.Errorf("attach profession %d: %w", p.ID, err)
			}
		}
		var err error
		out, err = r.find(tx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces name, address and the data sheet reference, and swaps the
// whole profession set for the single given profession.
func (r *CustomerRepository) Update(ctx context.Context, id uint, f CustomerFilter, in CustomerUpdate) (*models.Customer, error) {
	var out *models.Customer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := r.load(tx, id, f)
		if err != nil {
			return err
		}
		var p models.Profession
		if err := tx.First(&p, in.ProfessionID).Error; err != nil {
			return notFound(err, "profession", in.ProfessionID)
		}
		if err := claimDataSheet(tx, in.DataSheetID, c.ID); err != nil {
			return err
		}
		if err := tx.Model(c).Updates(map[string]any{
			"name":          in.Name,
			"address":       in.Address,
			"data_sheet_id": in.DataSheetID,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(c).Association("Professions").Replace(&p); err != nil {
			return fmt.Errorf("replace professions with %d: %w", p.ID, err)
		}
		out, err = r.find(tx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PartialUpdate changes only the fields present in p. Professions are untouched.
func (r *CustomerRepository) PartialUpdate(ctx context.Context, id uint, f CustomerFilter, p CustomerPatch) (*models.Customer, error) {
	var out *models.Customer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := r.load(tx, id, f)
		if err != nil {
			return err
		}
		changes := map[string]any{}
		if p.Name != nil {
			changes["name"] = *p.Name
		}
		if p.Address != nil {
			changes["address"] = *p.Address
		}
		switch {
		case p.ClearDataSheet:
			changes["data_sheet_id"] = nil
		case p.DataSheetID != nil:
			if err := claimDataSheet(tx, *p.DataSheetID, c.ID); err != nil {
				return err
			}
			changes["data_sheet_id"] = *p.DataSheetID
		}
		if len(changes) > 0 {
			if err := tx.Model(c).Updates(changes).Error; err != nil {
				return err
			}
		}
		out, err = r.find(tx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Deactivate marks one customer inactive.
func (r *CustomerRepository) Deactivate(ctx context.Context, id uint, f CustomerFilter) (*models.Customer, error) {
	var out *models.Customer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := r.load(tx, id, f)
		if err != nil {
			return err
		}
		if err := tx.Model(c).Update("active", false).Error; err != nil {
			return err
		}
		out, err = r.find(tx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeactivateAll marks every customer matching f inactive and returns them.
func (r *CustomerRepository) DeactivateAll(ctx context.Context, f CustomerFilter) ([]models.Customer, error) {
	return r.SetStatus(ctx, f, false)
}

// SetStatus sets active on every customer matching the address/active part
// of f and returns the changed rows.
func (r *CustomerRepository) SetStatus(ctx context.Context, f CustomerFilter, active bool) ([]models.Customer, error) {
	var out []models.Customer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := f.base(tx.Model(&models.Customer{})).Pluck("customers.id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := tx.Model(&models.Customer{}).Where("id IN ?", ids).Update("active", active).Error; err != nil {
				return err
			}
		}
		var err error
		out, err = r.findMany(tx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the customer row, its profession links and its documents.
// Professions and the data sheet are kept.
func (r *CustomerRepository) Delete(ctx context.Context, id uint, f CustomerFilter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := r.load(tx, id, f)
		if err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", c.ID).Delete(&models.Document{}).Error; err != nil {
			return fmt.Errorf("delete documents: %w", err)
		}
		if err := tx.Model(c).Association("Professions").Clear(); err != nil {
			return fmt.Errorf("clear professions: %w", err)
		}
		return tx.Delete(c).Error
	})
}

// claimDataSheet checks the sheet exists and is not owned by another customer.
func claimDataSheet(tx *gorm.DB, sheetID, ownerID uint) error {
	var ds models.DataSheet
	if err := tx.Select("id").First(&ds, sheetID).Error; err != nil {
		return notFound(err, "data sheet", sheetID)
	}
	var owners int64
	if err := tx.Model(&models.Customer{}).
		Where("data_sheet_id = ? AND id <> ?", sheetID, ownerID).
		Count(&owners).Error; err != nil {
		return err
	}
	if owners > 0 {
		return fmt.Errorf("data sheet %d: %w", sheetID, ErrDataSheetTaken)
	}
	return nil
}
