package importer

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dnbomberos/guardia/internal/model"
)

// The source spreadsheet lays out stations as repeating blocks across
// three independent column bands. Within a band, each unit row uses fixed
// sub-column offsets.
var columnBands = []int{0, 6, 12}

const (
	colType = iota
	colID
	colStatus
	colOfficer
	colPOC
	colCount
)

// blockKeywords mark the first row of a station block. Matching is a
// trimmed-uppercased prefix test.
var blockKeywords = []string{
	"ESTACION", "ESTACIÓN",
	"DTO.", "DESTAC.", "DESTACAMENTO",
	"BRIGADA", "OFICINA",
	"COMPAÑIA", "COMPANIA",
	"DIVISIÓN", "DIVISION",
	"TRANSPORTE", "URIP", "O.C.O.B.",
}

// noiseLabels appear in the type column of summary rows inside a block.
var noiseLabels = []string{"TOTAL", "DEPEN"}

var reportDateRe = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)

func isBlockStart(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, kw := range blockKeywords {
		if strings.HasPrefix(s, kw) {
			return true
		}
	}
	return false
}

func isNoiseLabel(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, n := range noiseLabels {
		if strings.HasPrefix(s, n) {
			return true
		}
	}
	return false
}

// ParseUnitReport reconstructs the zoned unit-status tree from a report
// spreadsheet.
//
// Station blocks are located by scanning every row at each column band for
// a block-start keyword; block boundaries are derived per band from the
// sorted start rows, since the data carries no end-of-station marker.
// Stations whose name cannot be assigned to a zone are logged and dropped.
//
// A sheet with no block-start keywords at all is ErrFormatUnrecognized; a
// sheet that matched blocks but produced zero populated zones is rejected
// with a descriptive error.
func ParseUnitReport(rows [][]string, table *ZoneTable, logger *log.Logger) (*model.UnitReportData, error) {
	if table == nil {
		table = DefaultZoneTable()
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[import] ", log.LstdFlags)
	}

	groupsByZone := make(map[string][]model.UnitGroup)
	foundBlocks := false

	for _, band := range columnBands {
		var starts []int
		for r := range rows {
			if isBlockStart(cell(rows[r], band)) {
				starts = append(starts, r)
			}
		}
		// Row scan is ascending, so starts is already sorted.
		for i, start := range starts {
			end := len(rows)
			if i+1 < len(starts) {
				end = starts[i+1]
			}
			foundBlocks = true
			group, name := parseStationBlock(rows, band, start, end)
			if name == "" {
				continue
			}
			normalized := table.NormalizeStation(name)
			zone, ok := table.AssignZone(normalized)
			if !ok {
				logger.Printf("WARNING: station %q (normalized %q) matched no zone, dropping", name, normalized)
				continue
			}
			groupsByZone[zone] = append(groupsByZone[zone], group)
		}
	}

	if !foundBlocks {
		return nil, fmt.Errorf("unit report: no station blocks found: %w", ErrFormatUnrecognized)
	}

	report := &model.UnitReportData{ReportDate: findReportDate(rows)}
	for _, z := range table.Zones {
		if groups := groupsByZone[z.Name]; len(groups) > 0 {
			report.Zones = append(report.Zones, model.Zone{Name: z.Name, Groups: groups})
		}
	}
	if len(report.Zones) == 0 {
		return nil, fmt.Errorf("unit report: recognized station blocks but no zone received any station")
	}
	return report, nil
}

// parseStationBlock extracts one station's name and unit rows from the
// block's row span at the given column band. The name is re-confirmed
// within a short lookahead window, tolerating one or two leading blank or
// partial rows; a block with no confirmable name is discarded.
func parseStationBlock(rows [][]string, band, start, end int) (model.UnitGroup, string) {
	name := ""
	lookahead := start + 3
	if lookahead > end {
		lookahead = end
	}
	for r := start; r < lookahead; r++ {
		if v := cell(rows[r], band); isBlockStart(v) {
			name = strings.TrimSpace(v)
			break
		}
	}
	if name == "" {
		return model.UnitGroup{}, ""
	}

	group := model.UnitGroup{Name: name}
	for r := start; r < end; r++ {
		if unit, ok := parseUnitRow(rows[r], band); ok {
			group.Units = append(group.Units, unit)
		}
	}
	return group, name
}

// parseUnitRow interprets one row at fixed sub-column offsets relative to
// the band. A row qualifies as a unit record only if both type and id are
// present, the id is longer than two characters, and the type cell is not
// itself a block keyword or a summary-row label.
func parseUnitRow(row []string, band int) (model.FireUnit, bool) {
	unitType := cell(row, band+colType)
	id := cell(row, band+colID)
	if unitType == "" || id == "" || len(id) <= 2 {
		return model.FireUnit{}, false
	}
	if isBlockStart(unitType) || isNoiseLabel(unitType) {
		return model.FireUnit{}, false
	}

	unit := model.FireUnit{
		ID:   id,
		Type: unitType,
	}
	status := cell(row, band+colStatus)
	officer := cell(row, band+colOfficer)
	poc := cell(row, band+colPOC)

	upper := strings.ToUpper(status)
	switch {
	case strings.Contains(upper, "F/S"):
		unit.Status = model.StatusOutOfService
		// An out-of-service unit has no acting crew; the officer cell, if
		// filled, carries the reason instead.
		if officer != "" {
			unit.OutOfServiceReason = officer
		} else {
			unit.OutOfServiceReason = strings.Trim(strings.ReplaceAll(upper, "F/S", ""), " -:")
		}
	case strings.Contains(upper, "RESERVA"):
		unit.Status = model.StatusReserve
		unit.OfficerInCharge = officer
		unit.POC = poc
	case strings.Contains(upper, "A/P"), strings.Contains(upper, "A PRÉSTAMO"), strings.Contains(upper, "A PRESTAMO"):
		unit.Status = model.StatusOnLoan
		unit.OfficerInCharge = officer
		unit.POC = poc
	default:
		unit.Status = model.StatusInService
		unit.OfficerInCharge = officer
		unit.POC = poc
	}

	// Blank or non-numeric counts stay null: "not applicable" is distinct
	// from a reported zero.
	if raw := cell(row, band+colCount); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			unit.PersonnelCount = &n
		}
	}
	return unit, true
}

// findReportDate scans the top of the sheet for a D/M/YYYY cell, falling
// back to the current date when none is present.
func findReportDate(rows [][]string) string {
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for r := 0; r < limit; r++ {
		for _, v := range rows[r] {
			if d := reportDateRe.FindString(v); d != "" {
				return d
			}
		}
	}
	return time.Now().Format("2/1/2006")
}
