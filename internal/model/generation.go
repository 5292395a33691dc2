package model

import "time"

// Generation is written in the same transaction as a wholesale replacement
// of a derived table, so the latest row for a scope names the live data set.
type Generation struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Scope     string    `gorm:"size:32;not null;index" json:"scope"`
	Rows      int       `gorm:"not null" json:"rows"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
