package importer

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/dnbomberos/guardia/internal/model"
)

// Kind identifies which entity an import produced.
type Kind string

const (
	// KindAuto lets the dispatcher pick from the file extension and content.
	KindAuto Kind = "auto"
	// KindSchedule is a guard schedule import.
	KindSchedule Kind = "schedule"
	// KindUnitReport is a unit status report import.
	KindUnitReport Kind = "unitreport"
	// KindRoster is a command roster import.
	KindRoster Kind = "roster"
)

// Result is the normalized outcome of one file import. Exactly one of the
// entity fields is set, matching Kind.
type Result struct {
	Kind       Kind
	Schedule   *model.Schedule
	UnitReport *model.UnitReportData
	Roster     model.Roster
}

// Options configures an import pass.
type Options struct {
	// Kind forces the target entity instead of auto-detection.
	Kind Kind
	// Zones overrides the compiled-in zone table.
	Zones *ZoneTable
	// Logger receives per-field warnings. Nil means a stderr logger.
	Logger *log.Logger
}

// ImportFile parses a user-supplied file buffer into a normalized entity.
// The format-specific parser is picked from the file extension; document
// content decides between schedule and roster for rich-text input, and
// between schedule layouts for spreadsheets.
func ImportFile(data []byte, name string, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[import] ", log.LstdFlags)
	}
	if opts.Kind == "" {
		opts.Kind = KindAuto
	}

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".docx":
		lines, err := ExtractDocxLines(data)
		if err != nil {
			return nil, err
		}
		return importLines(lines, opts)

	case ".xlsx", ".xls", ".ods":
		rows, err := ReadWorkbook(data, ext)
		if err != nil {
			return nil, err
		}
		return importRows(rows, opts)

	case ".pdf":
		if opts.Kind != KindAuto && opts.Kind != KindUnitReport {
			return nil, fmt.Errorf("pdf import only carries unit reports")
		}
		report, err := DecodePDFUnitReport(data)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: KindUnitReport, UnitReport: report}, nil

	case ".json":
		if opts.Kind != KindAuto && opts.Kind != KindRoster {
			return nil, fmt.Errorf("json import only carries rosters")
		}
		roster, err := ParseRosterJSON(data)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: KindRoster, Roster: roster}, nil

	default:
		return nil, fmt.Errorf("unsupported file type %q: %w", ext, ErrFormatUnrecognized)
	}
}

// importLines routes flattened rich-text lines to the schedule parser or
// the roster extractor.
func importLines(lines []string, opts Options) (*Result, error) {
	if opts.Kind == KindRoster {
		return rosterResult(ExtractRoster(lines))
	}

	sched, err := ParseTextSchedule(lines)
	if opts.Kind == KindSchedule {
		if err != nil {
			return nil, err
		}
		return &Result{Kind: KindSchedule, Schedule: sched}, nil
	}

	// Auto mode: a roster calendar's role lines also read as command
	// staff, so a "schedule" with no date and no services is treated as
	// weak evidence. Prefer the roster when the lines yield one.
	if err == nil && (sched.Date != "" || len(sched.Services) > 0 || len(sched.SportsEvents) > 0) {
		return &Result{Kind: KindSchedule, Schedule: sched}, nil
	}
	if roster := ExtractRoster(lines); len(roster) > 0 {
		return rosterResult(roster)
	}
	if err == nil {
		return &Result{Kind: KindSchedule, Schedule: sched}, nil
	}
	return nil, err
}

func rosterResult(roster model.Roster) (*Result, error) {
	if len(roster) == 0 {
		return nil, fmt.Errorf("no roster entries found: %w", ErrFormatUnrecognized)
	}
	return &Result{Kind: KindRoster, Roster: roster}, nil
}

// importRows routes spreadsheet rows to the schedule layouts or the
// unit-report parser.
func importRows(rows [][]string, opts Options) (*Result, error) {
	switch opts.Kind {
	case KindSchedule:
		res := ParseTabularSchedule(rows)
		if !res.Recognized() {
			return nil, fmt.Errorf("%s: %w", res.Reason, ErrFormatUnrecognized)
		}
		return &Result{Kind: KindSchedule, Schedule: res.Schedule}, nil

	case KindUnitReport:
		report, err := ParseUnitReport(rows, opts.Zones, opts.Logger)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: KindUnitReport, UnitReport: report}, nil

	default:
		// Auto: schedule layouts first (their markers are cheap to test),
		// then the unit-report block scan.
		if res := ParseTabularSchedule(rows); res.Recognized() {
			return &Result{Kind: KindSchedule, Schedule: res.Schedule}, nil
		}
		report, err := ParseUnitReport(rows, opts.Zones, opts.Logger)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: KindUnitReport, UnitReport: report}, nil
	}
}
