package models

import "time"

// Document types.
const (
	DocTypePassport = "PP"
	DocTypeIDCard   = "ID"
	DocTypeOther    = "OT"
)

// Document is an identity document filed against a customer.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
	Dtype      string    `gorm:"size:2;not null" json:"dtype"`
	DocNumber  string    `gorm:"size:50;not null" json:"doc_number"`
	CustomerID uint      `gorm:"index;not null" json:"customer"`
}
