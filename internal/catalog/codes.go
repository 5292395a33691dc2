package catalog

import "strings"

// GreasingCode is the consolidated-log code for general greasing; it only
// counts when a grease quantity was recorded.
const GreasingCode = "GR"

// consolidatedCodes maps short consolidated-log codes to operations.
var consolidatedCodes = map[string]string{
	"NIVEAU HUILE": EngineOilLevelCheck,
	"VIDANGE,M":    ChangeEngineOil,
	"TRANSMISSION": Gearbox,
	GreasingCode:   GeneralGreasing,
	"HYDRAULIQUE":  HydraulicCircuit,
}

// LookupCode maps a consolidated-log code (case-insensitive) to its operation.
func LookupCode(code string) (OperationType, bool) {
	c, ok := consolidatedCodes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return OperationType{}, false
	}
	return ByCode(c)
}
