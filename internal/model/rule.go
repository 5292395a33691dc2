package model

import (
	"strings"
	"time"
)

// Intervals are the fixed interval lengths, in days, a rule can mark.
var Intervals = [5]int{7, 30, 90, 180, 360}

// Marker is the symbol placed in an interval column of the rule table.
type Marker string

const (
	MarkerNone   Marker = ""
	MarkerSingle Marker = "*"
	MarkerDouble Marker = "**"
)

// ParseMarker returns the recognized marker in raw, or MarkerNone.
func ParseMarker(raw string) Marker {
	switch strings.TrimSpace(raw) {
	case string(MarkerSingle):
		return MarkerSingle
	case string(MarkerDouble):
		return MarkerDouble
	}
	return MarkerNone
}

// Active reports whether the marker schedules its interval.
func (m Marker) Active() bool {
	return m == MarkerSingle || m == MarkerDouble
}

// IntervalRule holds the interval markers and level flags of one operation.
type IntervalRule struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Operation   string    `gorm:"uniqueIndex;size:64;not null" json:"operation"`
	Label       string    `gorm:"size:256" json:"label"`
	Every7      Marker    `gorm:"column:every_7;size:2" json:"every_7"`
	Every30     Marker    `gorm:"column:every_30;size:2" json:"every_30"`
	Every90     Marker    `gorm:"column:every_90;size:2" json:"every_90"`
	Every180    Marker    `gorm:"column:every_180;size:2" json:"every_180"`
	Every360    Marker    `gorm:"column:every_360;size:2" json:"every_360"`
	Control     bool      `gorm:"not null" json:"control"`
	Cleaning    bool      `gorm:"not null" json:"cleaning"`
	Replacement bool      `gorm:"not null" json:"replacement"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Markers returns the markers in the order of Intervals.
func (r IntervalRule) Markers() [5]Marker {
	return [5]Marker{r.Every7, r.Every30, r.Every90, r.Every180, r.Every360}
}

// SetMarker stores m in the column of the given interval. Unknown intervals are ignored.
func (r *IntervalRule) SetMarker(interval int, m Marker) {
	switch interval {
	case 7:
		r.Every7 = m
	case 30:
		r.Every30 = m
	case 90:
		r.Every90 = m
	case 180:
		r.Every180 = m
	case 360:
		r.Every360 = m
	}
}

// CategoryRule switches one operation on or off for an equipment category.
type CategoryRule struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Category  string    `gorm:"uniqueIndex:idx_category_operation;size:128;not null" json:"category"`
	Operation string    `gorm:"uniqueIndex:idx_category_operation;size:64;not null" json:"operation"`
	Active    bool      `gorm:"column:is_active;not null" json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RuleSchema records which source columns fed the interval rule table.
type RuleSchema struct {
	ID                int64          `gorm:"primaryKey" json:"-"`
	OperationColumn   string         `gorm:"size:128" json:"operation_column"`
	IntervalColumns   map[int]string `gorm:"serializer:json" json:"interval_columns"`
	ControlColumn     string         `gorm:"size:128" json:"control_column"`
	CleaningColumn    string         `gorm:"size:128" json:"cleaning_column"`
	ReplacementColumn string         `gorm:"size:128" json:"replacement_column"`
	CreatedAt         time.Time      `json:"created_at"`
}
