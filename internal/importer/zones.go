package importer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ZoneSpec maps canonical station-name prefixes to one report zone.
type ZoneSpec struct {
	Name     string   `yaml:"name"`
	Prefixes []string `yaml:"prefixes"`
}

// ZoneTable drives station-to-zone assignment in the unit-report parser.
// Station names vary across documents (quotes, honorific titles, alternate
// spellings), so lookups run over normalized names with alias substitution
// applied first.
type ZoneTable struct {
	Zones   []ZoneSpec        `yaml:"zones"`
	Aliases map[string]string `yaml:"aliases"`
}

// DefaultZoneTable returns the compiled-in six-zone layout used by the
// printed report.
func DefaultZoneTable() *ZoneTable {
	return &ZoneTable{
		Zones: []ZoneSpec{
			{Name: "ZONA I", Prefixes: []string{"ESTACION I", "ESTACION II", "DESTACAMENTO PUERTO", "O.C.O.B."}},
			{Name: "ZONA II", Prefixes: []string{"ESTACION III", "ESTACION IV", "DESTACAMENTO BOCA", "BRIGADA"}},
			{Name: "ZONA III", Prefixes: []string{"ESTACION V", "ESTACION VI", "DESTACAMENTO CABALLITO"}},
			{Name: "ZONA IV", Prefixes: []string{"ESTACION VII", "ESTACION VIII", "DESTACAMENTO FLORES", "OFICINA"}},
			{Name: "ZONA V", Prefixes: []string{"ESTACION IX", "ESTACION X", "DESTACAMENTO URQUIZA", "URIP"}},
			{Name: "ZONA VI", Prefixes: []string{"ESTACION XI", "DIVISION TRANSPORTE", "TRANSPORTE", "COMPANIA"}},
		},
		Aliases: map[string]string{
			"CTE GRAL A VAZQUEZ":        "ESTACION V",
			"CMTE GRAL A VAZQUEZ":       "ESTACION V",
			"COMANDANTE GRAL A VAZQUEZ": "ESTACION V",
			"DTO PUERTO MADERO":         "DESTACAMENTO PUERTO",
			"DTO BOCA":                  "DESTACAMENTO BOCA",
		},
	}
}

// LoadZoneTable reads a YAML zone table from path. Missing sections fall
// back to the compiled-in defaults, so a file may override only aliases.
func LoadZoneTable(path string) (*ZoneTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read zone table: %w", err)
	}
	var t ZoneTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse zone table: %w", err)
	}
	def := DefaultZoneTable()
	if len(t.Zones) == 0 {
		t.Zones = def.Zones
	}
	if len(t.Aliases) == 0 {
		t.Aliases = def.Aliases
	}
	return &t, nil
}

// NormalizeStation canonicalizes a station name for zone lookup: quote
// characters and periods stripped, whitespace collapsed, upper-cased, and
// known aliases substituted.
func (t *ZoneTable) NormalizeStation(name string) string {
	r := strings.NewReplacer(`"`, "", "“", "", "”", "", "'", "", ".", "")
	name = r.Replace(strings.ToUpper(name))
	name = strings.Join(strings.Fields(name), " ")
	for alias, canonical := range t.Aliases {
		if strings.Contains(name, alias) {
			name = strings.Replace(name, alias, canonical, 1)
			break
		}
	}
	// An alias whose canonical form starts with ESTACION can double the
	// word when the raw name already carried it.
	name = strings.ReplaceAll(name, "ESTACION ESTACION", "ESTACION")
	return name
}

// AssignZone resolves a normalized station name to a zone. The strict pass
// takes the longest matching prefix; if no prefix matches, a second pass
// retries with the ESTACION word stripped from both sides. A loose match
// that remains ambiguous across zones fails closed (no zone).
func (t *ZoneTable) AssignZone(name string) (string, bool) {
	bestLen := 0
	bestZone := ""
	ambiguous := false
	for _, z := range t.Zones {
		for _, p := range z.Prefixes {
			if !strings.HasPrefix(name, p) {
				continue
			}
			switch {
			case len(p) > bestLen:
				bestLen, bestZone, ambiguous = len(p), z.Name, false
			case len(p) == bestLen && z.Name != bestZone:
				ambiguous = true
			}
		}
	}
	if bestLen > 0 && !ambiguous {
		return bestZone, true
	}

	// Loose pass: retry with the station word stripped from both sides.
	// Matching is word-based, not raw substring: single-letter station
	// numerals would otherwise match almost any name.
	stripped := stripStationWord(name)
	var match string
	for _, z := range t.Zones {
		for _, p := range z.Prefixes {
			sp := stripStationWord(p)
			if sp == "" || stripped == "" {
				continue
			}
			if containsWords(stripped, sp) || containsWords(sp, stripped) {
				if match != "" && match != z.Name {
					return "", false // ambiguous across zones: fail closed
				}
				match = z.Name
			}
		}
	}
	return match, match != ""
}

func stripStationWord(s string) string {
	s = strings.ReplaceAll(s, "ESTACIÓN", " ")
	s = strings.ReplaceAll(s, "ESTACION", " ")
	return strings.Join(strings.Fields(s), " ")
}

// containsWords reports whether sub appears in s as a run of whole words.
func containsWords(s, sub string) bool {
	if s == sub {
		return true
	}
	return strings.HasPrefix(s, sub+" ") ||
		strings.HasSuffix(s, " "+sub) ||
		strings.Contains(s, " "+sub+" ")
}
