package followup

import (
	"sort"
	"strings"
	"time"

	"fleet-maintenance-backend/internal/catalog"
	"fleet-maintenance-backend/internal/model"
	"fleet-maintenance-backend/internal/parse"
)

// Status is the display state of a matrix cell.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusOverdue   Status = "overdue"
	StatusRealized  Status = "realized"
	StatusOutOfPlan Status = "out_of_plan"
)

// PageQuery selects a page of equipment.
type PageQuery struct {
	Filter   string `form:"filter" json:"filter"`
	Page     int    `form:"page" json:"page"`
	PageSize int    `form:"page_size" json:"page_size"`
}

// Cell is the occurrence shown for one operation in one month.
type Cell struct {
	ScheduledDate time.Time   `json:"scheduled_date"`
	Level         model.Level `json:"level"`
	Realized      bool        `json:"realized"`
	RealizedDate  *time.Time  `json:"realized_date,omitempty"`
	Status        Status      `json:"status"`
}

// MatrixRow is one month of one equipment. Cells follow the catalog order
// and are nil when nothing happens that month.
type MatrixRow struct {
	Matricule string  `json:"matricule"`
	Month     int     `json:"month"`
	MonthName string  `json:"month_name"`
	Cells     []*Cell `json:"cells"`
}

// MatrixPage is a page of the equipment by month by operation matrix.
type MatrixPage struct {
	Year       int         `json:"year"`
	Operations []string    `json:"operations"`
	Headers    []string    `json:"headers"`
	Rows       []MatrixRow `json:"rows"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
}

// MatrixOptions controls BuildMatrix.
type MatrixOptions struct {
	Year          int
	Query         PageQuery
	Now           time.Time
	ToleranceDays int
	// All disables pagination, for exports.
	All bool
}

// Normalize clamps page and page size to at least 1.
func (q PageQuery) Normalize(defaultSize int) PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultSize
	}
	if q.PageSize < 1 {
		q.PageSize = 1
	}
	return q
}

// FilterMatricules returns the distinct non-empty matricules of equipment,
// sorted, that contain filter case-insensitively.
func FilterMatricules(equipment []model.Equipment, filter string) []string {
	filter = strings.ToLower(strings.TrimSpace(filter))
	seen := make(map[string]bool, len(equipment))
	var out []string
	for _, e := range equipment {
		m := strings.TrimSpace(e.Matricule)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		if filter == "" || strings.Contains(strings.ToLower(m), filter) {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// BuildMatrix lays occurrences out as twelve month rows per equipment.
func BuildMatrix(equipment []model.Equipment, occurrences []Occurrence, opts MatrixOptions) MatrixPage {
	q := opts.Query.Normalize(1)
	ops := catalog.All()
	page := MatrixPage{
		Year:       opts.Year,
		Operations: make([]string, len(ops)),
		Headers:    make([]string, len(ops)),
		Rows:       []MatrixRow{},
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
	for i, op := range ops {
		page.Operations[i] = op.Code
		page.Headers[i] = op.Label
	}

	matricules := FilterMatricules(equipment, q.Filter)
	page.Total = len(matricules)
	if !opts.All {
		from := (q.Page - 1) * q.PageSize
		if from >= len(matricules) {
			return page
		}
		to := from + q.PageSize
		if to > len(matricules) {
			to = len(matricules)
		}
		matricules = matricules[from:to]
	}

	byMatricule := make(map[string][]Occurrence)
	for _, o := range occurrences {
		if o.ScheduledDate.Year() != opts.Year {
			continue
		}
		k := parse.Normalize(o.Matricule)
		byMatricule[k] = append(byMatricule[k], o)
	}

	today := parse.Day(opts.Now)
	for _, m := range matricules {
		var months [12][]*Occurrence
		occ := byMatricule[parse.Normalize(m)]
		for i := range occ {
			if catalog.Index(occ[i].Operation) < 0 {
				continue
			}
			mi := int(occ[i].ScheduledDate.Month()) - 1
			months[mi] = append(months[mi], &occ[i])
		}

		for mi := 0; mi < 12; mi++ {
			row := MatrixRow{
				Matricule: m,
				Month:     mi + 1,
				MonthName: time.Month(mi + 1).String(),
				Cells:     make([]*Cell, len(ops)),
			}
			best := make([]*Occurrence, len(ops))
			for _, o := range months[mi] {
				col := catalog.Index(o.Operation)
				if best[col] == nil || better(*o, *best[col]) {
					best[col] = o
				}
			}
			for col, o := range best {
				if o != nil {
					row.Cells[col] = cellOf(*o, today, opts.ToleranceDays)
				}
			}
			page.Rows = append(page.Rows, row)
		}
	}
	return page
}

// better orders the candidates for a cell: realized first, then the higher
// level, then the later date.
func better(a, b Occurrence) bool {
	if a.Realized != b.Realized {
		return a.Realized
	}
	if pa, pb := a.Level.Priority(), b.Level.Priority(); pa != pb {
		return pa > pb
	}
	return a.ScheduledDate.After(b.ScheduledDate)
}

func cellOf(o Occurrence, today time.Time, toleranceDays int) *Cell {
	c := &Cell{
		ScheduledDate: o.ScheduledDate,
		Level:         o.Level,
		Realized:      o.Realized,
		RealizedDate:  o.RealizedDate,
	}
	switch {
	case o.OutOfPlan():
		c.Status = StatusOutOfPlan
	case o.Realized:
		c.Status = StatusRealized
	case o.ScheduledDate.AddDate(0, 0, toleranceDays).Before(today):
		c.Status = StatusOverdue
	default:
		c.Status = StatusPlanned
	}
	return c
}
