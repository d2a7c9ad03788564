package importer

import (
	"strings"

	"github.com/dnbomberos/guardia/internal/model"
)

// TabularResult is the tagged outcome of a spreadsheet schedule parse:
// either a recognized schedule or a rejection with the reason the sheet
// did not match the layout.
type TabularResult struct {
	Schedule *model.Schedule
	Reason   string
}

// Recognized reports whether the sheet matched a known layout.
func (r TabularResult) Recognized() bool { return r.Schedule != nil }

func rejected(reason string) TabularResult { return TabularResult{Reason: reason} }

// ParseTabularSchedule dispatches spreadsheet rows to one of the two known
// schedule layouts. If the first cell of the sheet contains "GUARDIA DEL
// DIA" the sheet is a personnel roster export; anything else is tried as a
// template export.
func ParseTabularSchedule(rows [][]string) TabularResult {
	if len(rows) == 0 {
		return rejected("empty sheet")
	}
	first := normalizeHeader(cell(rows[0], 0))
	if strings.Contains(first, "GUARDIA DEL DIA") || strings.Contains(first, "GUARDIA DEL DÍA") {
		return parseRosterLayout(rows)
	}
	return parseTemplateLayout(rows)
}

// cell is the bounds-safe accessor used throughout the spreadsheet
// parsers: the trimmed value at idx, or "" when the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// normalizeHeader upper-cases a header cell and strips the diacritics the
// historical templates are inconsistent about.
func normalizeHeader(h string) string {
	h = strings.ToUpper(strings.TrimSpace(h))
	r := strings.NewReplacer("Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ü", "U")
	return r.Replace(h)
}

// headerIndex builds a normalized header-name → column-index map for one
// header row. Built once per sheet, per the layouts' single header row.
func headerIndex(row []string) map[string]int {
	idx := make(map[string]int, len(row))
	for i := range row {
		if h := normalizeHeader(cell(row, i)); h != "" {
			if _, dup := idx[h]; !dup {
				idx[h] = i
			}
		}
	}
	return idx
}

// lookup returns the first matching column value for any of the given
// normalized header names.
func lookup(row []string, idx map[string]int, names ...string) string {
	for _, n := range names {
		if i, ok := idx[n]; ok {
			if v := cell(row, i); v != "" {
				return v
			}
		}
	}
	return ""
}

// parseRosterLayout handles the personnel-roster export: service sections
// introduced by a lone first-cell row, followed by a LUGAR/LP header and
// one row per individual. Rows are grouped into assignments by LUGAR, one
// detail line per contributing individual.
func parseRosterLayout(rows [][]string) TabularResult {
	ids := model.NewIDGen()
	sched := &model.Schedule{Services: []model.Service{}, SportsEvents: []model.Service{}}

	if d := dateValueRe.FindString(normalizeHeader(cell(rows[0], 0))); d != "" {
		sched.Date = d
	}

	var (
		svc        *model.Service
		byLocation map[string]int // LUGAR -> assignment index in svc
		colIdx     map[string]int
		headerOK   bool
	)

	flush := func() {
		if svc != nil {
			sched.Services = append(sched.Services, *svc)
			svc = nil
		}
	}

	for _, row := range rows[1:] {
		if isLoneFirstCell(row) {
			flush()
			svc = &model.Service{
				ID:          ids.Next("svc"),
				Title:       cell(row, 0),
				Assignments: []model.Assignment{},
			}
			byLocation = make(map[string]int)
			colIdx = nil
			continue
		}

		idx := headerIndex(row)
		if _, hasLugar := idx["LUGAR"]; hasLugar {
			if _, hasLP := idx["LP"]; hasLP {
				colIdx = idx
				if _, hasRank := idx["JERARQUIA"]; hasRank {
					headerOK = true
				}
				continue
			}
		}

		if colIdx == nil || svc == nil {
			continue
		}
		location := lookup(row, colIdx, "LUGAR")
		if location == "" {
			continue
		}

		detail := joinFields(
			lookup(row, colIdx, "JERARQUIA"),
			lookup(row, colIdx, "LP"),
			lookup(row, colIdx, "NOMBRE", "APELLIDO Y NOMBRE"),
			lookup(row, colIdx, "POC"),
			lookup(row, colIdx, "CONTACTO", "CELULAR"),
		)

		if i, ok := byLocation[location]; ok {
			if detail != "" {
				svc.Assignments[i].Details = append(svc.Assignments[i].Details, detail)
			}
			continue
		}
		asg := model.Assignment{
			ID:        ids.Next("asg"),
			Location:  location,
			Time:      PlaceholderTime,
			Personnel: PlaceholderPersonnel,
		}
		if detail != "" {
			asg.Details = []string{detail}
		}
		byLocation[location] = len(svc.Assignments)
		svc.Assignments = append(svc.Assignments, asg)
	}
	flush()

	if !headerOK {
		return rejected("no LUGAR/LP/JERARQUÍA header row found")
	}
	return TabularResult{Schedule: sched}
}

// isLoneFirstCell reports whether only the first cell of the row is set.
func isLoneFirstCell(row []string) bool {
	if cell(row, 0) == "" {
		return false
	}
	for i := 1; i < len(row); i++ {
		if cell(row, i) != "" {
			return false
		}
	}
	return true
}

func joinFields(fields ...string) string {
	parts := fields[:0]
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// parseTemplateLayout handles the flat template export: one Service ×
// Assignment record per row, grouped by service title. Services whose
// title names a sports event are partitioned into SportsEvents.
func parseTemplateLayout(rows [][]string) TabularResult {
	idx := headerIndex(rows[0])
	if _, ok := idx["TITULO DEL SERVICIO"]; !ok {
		return rejected("no Título del Servicio header found")
	}

	ids := model.NewIDGen()
	var ordered []*model.Service
	byTitle := make(map[string]*model.Service)

	for _, row := range rows[1:] {
		title := lookup(row, idx, "TITULO DEL SERVICIO")
		if title == "" {
			continue
		}
		svc, ok := byTitle[title]
		if !ok {
			svc = &model.Service{
				ID:          ids.Next("svc"),
				Title:       title,
				Description: lookup(row, idx, "DESCRIPCION"),
				Novelty:     lookup(row, idx, "NOVEDAD"),
				Assignments: []model.Assignment{},
			}
			byTitle[title] = svc
			ordered = append(ordered, svc)
		}

		location := lookup(row, idx, "UBICACION")
		timeStr := lookup(row, idx, "HORARIO")
		personnel := lookup(row, idx, "PERSONAL")
		if location == "" && timeStr == "" && personnel == "" {
			// Service shell row: contributes the service, no assignment.
			continue
		}

		asg := model.Assignment{
			ID:                 ids.Next("asg"),
			Location:           location,
			Time:               timeStr,
			ImplementationTime: lookup(row, idx, "HORARIO DE IMPLANTACION"),
			Personnel:          personnel,
			UnitID:             lookup(row, idx, "UNIDAD"),
		}
		for _, d := range splitDetails(lookup(row, idx, "DETALLES")) {
			if impl, ok := extractImplementationTime(d); ok {
				if asg.ImplementationTime == "" {
					asg.ImplementationTime = impl
				}
				continue
			}
			asg.Details = append(asg.Details, d)
		}
		if asg.Location == "" {
			asg.Location = PlaceholderLocation
		}
		if asg.Time == "" {
			asg.Time = PlaceholderTime
		}
		if asg.Personnel == "" {
			asg.Personnel = PlaceholderPersonnel
		}
		svc.Assignments = append(svc.Assignments, asg)
	}

	sched := &model.Schedule{Services: []model.Service{}, SportsEvents: []model.Service{}}
	for _, svc := range ordered {
		if strings.Contains(normalizeHeader(svc.Title), "EVENTO DEPORTIVO") {
			sched.SportsEvents = append(sched.SportsEvents, *svc)
		} else {
			sched.Services = append(sched.Services, *svc)
		}
	}
	return TabularResult{Schedule: sched}
}

// splitDetails splits a Detalles cell on semicolons and newlines.
func splitDetails(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '\n' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// extractImplementationTime pulls the value out of a detail token written
// as "HORARIO DE IMPLANTACION <value>" (case and accent insensitive).
func extractImplementationTime(detail string) (string, bool) {
	norm := normalizeHeader(detail)
	const prefix = "HORARIO DE IMPLANTACION"
	if !strings.HasPrefix(norm, prefix) {
		return "", false
	}
	// Normalization maps runes 1:1, so the prefix covers the same number
	// of runes in the original detail text.
	runes := []rune(strings.TrimSpace(detail))
	rest := strings.TrimSpace(string(runes[len([]rune(prefix)):]))
	rest = strings.TrimLeft(rest, ": ")
	return strings.TrimSpace(rest), true
}
