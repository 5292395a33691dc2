package model

import "time"

// Equipment is a roster entry. The engine only reads it.
type Equipment struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Matricule    string    `gorm:"uniqueIndex;size:64;not null" json:"matricule"`
	Category     string    `gorm:"size:128;index" json:"category"`
	Brand        string    `gorm:"size:128" json:"brand"`
	Designation  string    `gorm:"size:256" json:"designation"`
	PurchaseDate string    `gorm:"size:32" json:"purchase_date"`
	Meter        float64   `json:"meter"`
	Status       string    `gorm:"size:32" json:"status"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
