package models

// Profession is an independent lookup row shared by customers (many-to-many).
type Profession struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Description string `gorm:"size:50;not null" json:"description"`
}
