package catalog

import "fleet-maintenance-backend/internal/parse"

// defaultExclusions lists, per normalized equipment category, the operations
// that do not apply to it. Categories not listed keep every operation.
var defaultExclusions = map[string][]string{
	"geg": {"brake", Chain, "tyre", "wheel-hub", GeneralGreasing, Gearbox, "cardan-shaft", "clutch",
		HydraulicCircuit, "hydraulic-pump", HydraulicFilter, "hydraulic-tank", "wiring-harness"},
	"outillagedivers": {"belt", OilFilter, ChangeEngineOil, AirFilter, FuelFilter, "valve", "alternator",
		"battery", "brake", Chain, "tyre", "wheel-hub", GeneralGreasing, Gearbox, "cardan-shaft", "clutch",
		HydraulicCircuit, "hydraulic-pump", HydraulicFilter, "hydraulic-tank", "wiring-harness"},
	"aircomprime": {"brake", Chain, "tyre", "wheel-hub", GeneralGreasing, Gearbox, "cardan-shaft", "clutch",
		HydraulicCircuit, "hydraulic-pump", "wiring-harness"},
	"transmarchandise1": {EngineOilLevelCheck, CircuitTightness, "belt", OilFilter, ChangeEngineOil,
		AirFilter, FuelFilter, Chain, "valve", Gearbox, "cardan-shaft", "clutch", HydraulicCircuit,
		"hydraulic-pump", HydraulicFilter, "hydraulic-tank", "alternator", "battery", "wiring-harness"},
	"transetvspeciaux1": {EngineOilLevelCheck, CircuitTightness, "belt", OilFilter, ChangeEngineOil,
		AirFilter, FuelFilter, Chain, "valve", Gearbox, "cardan-shaft", "clutch", HydraulicCircuit,
		"hydraulic-pump", HydraulicFilter, "hydraulic-tank", "alternator", "battery", "wiring-harness"},
	"transpersonnel": {EngineOilLevelCheck, HydraulicCircuit, "hydraulic-pump", HydraulicFilter,
		"hydraulic-tank", "wiring-harness"},
	"transbenner": {"clutch", Chain, Gearbox, "alternator", "wiring-harness"},
	"legeree":     {GeneralGreasing, HydraulicCircuit, "hydraulic-pump", HydraulicFilter, "hydraulic-tank"},
	"legerd": {GeneralGreasing, HydraulicCircuit, "hydraulic-pump", HydraulicFilter, "hydraulic-tank",
		"wiring-harness"},
	"transforbeton": {"brake", Chain, "tyre", "wheel-hub", Gearbox, "cardan-shaft", "clutch", HydraulicCircuit,
		"hydraulic-pump", HydraulicFilter, "hydraulic-tank", "wiring-harness"},
	"manutention1": {OilFilter, ChangeEngineOil, AirFilter, FuelFilter, "valve", "alternator", "brake", Chain,
		"tyre", "wheel-hub", "cardan-shaft", "clutch", HydraulicCircuit, "hydraulic-pump", HydraulicFilter,
		"hydraulic-tank", "wiring-harness"},
}

// DefaultActive reports whether op applies to category before anyone edits
// the category rules.
func DefaultActive(category, op string) bool {
	for _, excluded := range defaultExclusions[parse.Normalize(category)] {
		if excluded == op {
			return false
		}
	}
	return true
}
