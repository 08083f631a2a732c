package models

import "time"

// Customer is the aggregate root: it owns a DataSheet and links to Professions.
type Customer struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string `gorm:"size:50;not null"`
	Address   string `gorm:"size:50;not null"`
	// Active is written explicitly on create; a gorm default tag would swallow false.
	Active      bool         `gorm:"not null;index"`
	DataSheetID *uint        `gorm:"uniqueIndex"`
	DataSheet   *DataSheet   `gorm:"foreignKey:DataSheetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Professions []Profession `gorm:"many2many:customer_professions;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Documents   []Document   `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// StatusMessage is derived from Active and never stored.
func (c Customer) StatusMessage() string {
	if c.Active {
		return "Customer active"
	}
	return "Customer inactive"
}

// NumProfessions counts the loaded profession links.
func (c Customer) NumProfessions() int {
	return len(c.Professions)
}
