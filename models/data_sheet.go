package models

// DataSheet holds free-form history for a customer. At most one customer owns a sheet.
type DataSheet struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Description    string `gorm:"size:50;not null" json:"description"`
	HistoricalData string `gorm:"type:text;not null" json:"historical_data"`
}
