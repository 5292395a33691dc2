package model

// Raw historical sources, stored as imported. Dates stay textual because
// malformed values are expected and are only rejected during consolidation.

// CurativeRecord is a row of the curative maintenance log.
type CurativeRecord struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	Matricule     string `gorm:"size:64;index" json:"matricule"`
	EntryDate     string `gorm:"size:32" json:"entry_date"`
	ExitDate      string `gorm:"size:32" json:"exit_date"`
	DeclaredFault string `json:"declared_fault"`
	Parts         string `json:"parts"`
	FaultType     string `gorm:"size:64" json:"fault_type"`
	Technician    string `gorm:"size:128" json:"technician"`
}

// OilChangeRecord is a row of the oil change log. Filter columns carry
// rule markers ("*" or "**") when the filter was replaced.
type OilChangeRecord struct {
	ID              int64  `gorm:"primaryKey" json:"id"`
	Matricule       string `gorm:"size:64;index" json:"matricule"`
	Date            string `gorm:"size:32" json:"date"`
	Counter         string `gorm:"size:64" json:"counter"`
	OilFilter       string `gorm:"size:8" json:"oil_filter"`
	FuelFilter      string `gorm:"size:8" json:"fuel_filter"`
	AirFilter       string `gorm:"size:8" json:"air_filter"`
	HydraulicFilter string `gorm:"size:8" json:"hydraulic_filter"`
	Chain           string `gorm:"size:8" json:"chain"`
	Obs             string `json:"obs"`
}

// ConsolidatedRecord is a row of the consolidated workshop log.
type ConsolidatedRecord struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Matricule string `gorm:"size:64;index" json:"matricule"`
	Date      string `gorm:"size:32" json:"date"`
	Code      string `gorm:"size:64" json:"code"`
	Obs       string `json:"obs"`
	Grease    string `gorm:"size:32" json:"grease"`
}
