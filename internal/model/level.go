package model

// Level is the depth of a maintenance intervention.
type Level string

const (
	LevelControl     Level = "C"
	LevelCleaning    Level = "N"
	LevelReplacement Level = "CH"
	// LevelOutOfPlan tags realized work that matched no plan entry.
	LevelOutOfPlan Level = "HP"
)

// PlanLevels lists the plannable levels in ascending priority.
var PlanLevels = []Level{LevelControl, LevelCleaning, LevelReplacement}

// Priority orders levels: C < N < CH < HP. Unknown levels rank 0.
func (l Level) Priority() int {
	switch l {
	case LevelControl:
		return 1
	case LevelCleaning:
		return 2
	case LevelReplacement:
		return 3
	case LevelOutOfPlan:
		return 4
	}
	return 0
}
