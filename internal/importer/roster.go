package importer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dnbomberos/guardia/internal/model"
)

var (
	rosterDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	rosterRoleRe = regexp.MustCompile(`^(JEFE DE (?:INSPECCIONES|SERVICIO|GUARDIA|RESERVA))\s*:\s*(.+)$`)
)

// ExtractRoster pulls a sparse date→role→name roster out of flattened
// document lines. A D/M/YYYY line sets the current date; subsequent role
// lines accumulate into that date's entry. Lines before any date line and
// unrecognized role labels are ignored.
func ExtractRoster(lines []string) model.Roster {
	roster := make(model.Roster)
	currentDate := ""

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if m := rosterDateRe.FindStringSubmatch(line); m != nil {
			day, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			currentDate = fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			continue
		}
		if currentDate == "" {
			continue
		}
		if m := rosterRoleRe.FindStringSubmatch(line); m != nil {
			roster.SetRole(currentDate, m[1], strings.TrimSpace(m[2]))
		}
	}
	return roster
}

// ParseRosterJSON validates and decodes a roster JSON import. The payload
// must be a non-array object keyed by YYYY-MM-DD; anything else is
// ErrFormatUnrecognized. The result is merged into stored state by the
// caller, never replacing entries wholesale.
func ParseRosterJSON(data []byte) (model.Roster, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("roster import must be a JSON object: %w", ErrFormatUnrecognized)
	}
	var roster model.Roster
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("roster import is not valid JSON: %w", ErrFormatUnrecognized)
	}
	return roster, nil
}
