// Package catalog holds the fixed list of preventive maintenance operations
// and matches free-text workshop descriptions against it.
package catalog

import "fleet-maintenance-backend/internal/parse"

// OperationType is a canonical preventive maintenance operation.
type OperationType struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	// SynonymOnly operations are never matched by their label words,
	// only through an explicit synonym.
	SynonymOnly bool `json:"-"`
}

// Operation codes referenced by the consolidation rules.
const (
	EngineOilLevelCheck = "engine-oil-level-check"
	CircuitTightness    = "circuit-tightness"
	OilFilter           = "oil-filter"
	ChangeEngineOil     = "change-engine-oil"
	AirFilter           = "air-filter"
	FuelFilter          = "fuel-filter"
	Chain               = "chain"
	Gearbox             = "gearbox"
	GeneralGreasing     = "general-greasing"
	HydraulicCircuit    = "hydraulic-circuit"
	HydraulicFilter     = "hydraulic-filter"
)

// operations is in display order.
var operations = []OperationType{
	{Code: EngineOilLevelCheck, Label: "Niveau d'huile du carter"},
	{Code: CircuitTightness, Label: "Etanchéité de tous les circuits", SynonymOnly: true},
	{Code: "belt", Label: "Courroie"},
	{Code: OilFilter, Label: "Filtre à huile"},
	{Code: ChangeEngineOil, Label: "Vidanger le carter moteur"},
	{Code: AirFilter, Label: "Filtre à air"},
	{Code: FuelFilter, Label: "Filtre carburant"},
	{Code: Chain, Label: "chaine"},
	{Code: "brake", Label: "Frein"},
	{Code: "valve", Label: "soupape"},
	{Code: "tyre", Label: "pneu"},
	{Code: "wheel-hub", Label: "moyeu de roue"},
	{Code: Gearbox, Label: "boite de vitesse"},
	{Code: "cardan-shaft", Label: "cardan"},
	{Code: GeneralGreasing, Label: "Graissage général"},
	{Code: "clutch", Label: "embrayage"},
	{Code: HydraulicCircuit, Label: "circuit hydraulique"},
	{Code: "hydraulic-pump", Label: "pompe hydraulique"},
	{Code: HydraulicFilter, Label: "Filtre hydraulique"},
	{Code: "hydraulic-tank", Label: "Réservoir hydraulique"},
	{Code: "alternator", Label: "alternateur"},
	{Code: "battery", Label: "batterie"},
	{Code: "wiring-harness", Label: "Faisceaux électriques"},
}

var (
	byCode = make(map[string]OperationType, len(operations))
	byKey  = make(map[string]OperationType, 2*len(operations))
	index  = make(map[string]int, len(operations))
)

func init() {
	for i, op := range operations {
		byCode[op.Code] = op
		index[op.Code] = i
		byKey[parse.Normalize(op.Code)] = op
		byKey[parse.Normalize(op.Label)] = op
	}
}

// All returns the catalog in display order.
func All() []OperationType {
	out := make([]OperationType, len(operations))
	copy(out, operations)
	return out
}

// Codes returns the operation codes in display order.
func Codes() []string {
	codes := make([]string, len(operations))
	for i, op := range operations {
		codes[i] = op.Code
	}
	return codes
}

// ByCode looks an operation up by its exact code.
func ByCode(code string) (OperationType, bool) {
	op, ok := byCode[code]
	return op, ok
}

// Index returns the display position of code, or -1.
func Index(code string) int {
	if i, ok := index[code]; ok {
		return i
	}
	return -1
}

// Resolve finds the operation whose code or label equals name once both are
// normalized. It is an exact lookup; use a Matcher for free text.
func Resolve(name string) (OperationType, bool) {
	op, ok := byKey[parse.Normalize(name)]
	return op, ok
}
