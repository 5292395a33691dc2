package model

import "time"

// Source tags where a history event was consolidated from.
type Source string

const (
	SourceCurative     Source = "curative"
	SourceOilChange    Source = "oil_change"
	SourceConsolidated Source = "consolidated"
)

// HistoryEvent is a normalized record of maintenance that actually happened.
type HistoryEvent struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Matricule string    `gorm:"size:64;not null;index:idx_history_matricule_operation" json:"matricule"`
	Operation string    `gorm:"size:64;not null;index:idx_history_matricule_operation" json:"operation"`
	Date      time.Time `gorm:"not null" json:"date"`
	Year      int       `gorm:"not null;index" json:"year"`
	Meter     *int64    `json:"meter,omitempty"`
	Source    Source    `gorm:"size:16;not null" json:"source"`
}
