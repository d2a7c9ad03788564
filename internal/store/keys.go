package store

// Entity keys name the independent durable-storage slots. Every key is
// loadable on its own and falls back to a built-in default when absent.
const (
	KeySchedule           = "schedule"
	KeyUnitReport         = "unit_report"
	KeyEraReport          = "era_report"
	KeyGeneratorReport    = "generator_report"
	KeyMaterials          = "materials"
	KeyHidroAlert         = "hidro_alert"
	KeyRegimen            = "regimen"
	KeyInterventionGroups = "intervention_groups"
	KeyCommandPersonnel   = "command_personnel"
	KeyServicePersonnel   = "service_personnel"
	KeyUnits              = "units"
	KeyUnitTypes          = "unit_types"
	KeyRoster             = "roster"
	KeyTemplates          = "templates"
	KeyUsers              = "users"
	KeyChangeLog          = "change_log"
)

// Keys lists every entity slot in a stable order.
var Keys = []string{
	KeySchedule, KeyUnitReport, KeyEraReport, KeyGeneratorReport,
	KeyMaterials, KeyHidroAlert, KeyRegimen, KeyInterventionGroups,
	KeyCommandPersonnel, KeyServicePersonnel, KeyUnits, KeyUnitTypes,
	KeyRoster, KeyTemplates, KeyUsers, KeyChangeLog,
}

// defaults holds the JSON document returned for a key that was never
// saved. List-shaped slots default to an empty array, map-shaped slots to
// an empty object.
var defaults = map[string]string{
	KeySchedule:           `{"date":"","commandStaff":[],"services":[],"sportsEvents":[]}`,
	KeyUnitReport:         `{"reportDate":"","zones":[]}`,
	KeyEraReport:          `{}`,
	KeyGeneratorReport:    `{}`,
	KeyMaterials:          `[]`,
	KeyHidroAlert:         `{}`,
	KeyRegimen:            `{}`,
	KeyInterventionGroups: `[]`,
	KeyCommandPersonnel:   `[]`,
	KeyServicePersonnel:   `[]`,
	KeyUnits:              `[]`,
	KeyUnitTypes:          `[]`,
	KeyRoster:             `{}`,
	KeyTemplates:          `[]`,
	KeyUsers:              `[]`,
	KeyChangeLog:          `[]`,
}

// DefaultValue returns the built-in document for key, or "null" for a key
// outside the known slot list.
func DefaultValue(key string) string {
	if d, ok := defaults[key]; ok {
		return d
	}
	return "null"
}

// KnownKey reports whether key names one of the entity slots.
func KnownKey(key string) bool {
	_, ok := defaults[key]
	return ok
}
