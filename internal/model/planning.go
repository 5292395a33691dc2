package model

import "time"

// PlannedIntervention is one projected occurrence of an operation.
type PlannedIntervention struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Year          int       `gorm:"not null;index;uniqueIndex:idx_plan_key" json:"year"`
	Matricule     string    `gorm:"size:64;not null;uniqueIndex:idx_plan_key" json:"matricule"`
	Category      string    `gorm:"size:128" json:"category"`
	Operation     string    `gorm:"size:64;not null;uniqueIndex:idx_plan_key" json:"operation"`
	ScheduledDate time.Time `gorm:"not null;uniqueIndex:idx_plan_key" json:"scheduled_date"`
	Interval      int       `gorm:"not null" json:"interval"`
	Level         Level     `gorm:"size:4;not null" json:"level"`
}
