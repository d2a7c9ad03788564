package importer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dnbomberos/guardia/internal/model"
)

// Placeholder values filled in when a committed assignment is missing a
// required field. The printed forms expect these exact strings.
const (
	PlaceholderLocation  = "Ubicación a detallar"
	PlaceholderTime      = "Horario a detallar"
	PlaceholderPersonnel = "Personal a detallar"
)

// lineKind tags one classified input line. Classification is tested in
// strict priority order; the switch in parseLine is exhaustive over these
// values so no two rules can silently race.
type lineKind int

const (
	kindDate lineKind = iota
	kindCommandStaff
	kindServicesMarker
	kindSportsMarker
	kindNewService
	kindField
	kindLocationHeader
	kindDetail
)

// parseState names where the free-text pass currently is. The state only
// influences how fallback detail lines are attached.
type parseState int

const (
	stateAwaitingService parseState = iota
	stateInAssignment
	stateInDetails
)

// classifiedLine is the tagged result of classifying one input line.
type classifiedLine struct {
	kind  lineKind
	label string // role for command staff, field name for fields
	value string
}

var (
	dateLineRe   = regexp.MustCompile(`^GUARDIA DEL D[IÍ]A\b[:\s]*(.*)$`)
	dateValueRe  = regexp.MustCompile(`\d{1,2}\s+DE\s+\p{L}+\s+DE\s+\d{4}`)
	staffLineRe  = regexp.MustCompile(`^(JEFE DE (?:INSPECCIONES|SERVICIO|GUARDIA|RESERVA))\s*:\s*(.+)$`)
	newServiceRe = regexp.MustCompile(`^\d+\s*-\s*(.*)$`)
	fieldLineRe  = regexp.MustCompile(`^(QTH|HORARIO DE IMPLANTACI[OÓ]N|HORARIO|UNIDAD|PERSONAL|MODALIDAD DE COBERTURA)\s*:\s*(.*)$`)
	orderRe      = regexp.MustCompile(`\bO\.S\.?\s*(?:N[°º]?\s*)?\d[\d/.\-]*`)
	trailParenRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

// classifyLine tags a single trimmed line. next is the following input
// line (empty at end of input); it is needed for the bare-location
// heuristic, which must not swallow a header that a HORARIO line follows.
func classifyLine(line, next string) classifiedLine {
	upper := strings.ToUpper(line)

	if m := dateLineRe.FindStringSubmatch(upper); m != nil {
		value := strings.TrimSpace(m[1])
		if d := dateValueRe.FindString(upper); d != "" {
			value = d
		}
		return classifiedLine{kind: kindDate, value: value}
	}
	if m := staffLineRe.FindStringSubmatch(line); m != nil {
		return classifiedLine{kind: kindCommandStaff, label: m[1], value: strings.TrimSpace(m[2])}
	}
	if upper == "SERVICIOS" {
		return classifiedLine{kind: kindServicesMarker}
	}
	if upper == "EVENTOS DEPORTIVOS" {
		return classifiedLine{kind: kindSportsMarker}
	}
	if m := newServiceRe.FindStringSubmatch(line); m != nil {
		return classifiedLine{kind: kindNewService, value: strings.TrimSpace(m[1])}
	}
	if m := fieldLineRe.FindStringSubmatch(line); m != nil {
		return classifiedLine{kind: kindField, label: normalizeFieldLabel(m[1]), value: strings.TrimSpace(m[2])}
	}
	if isBareLocationHeader(line, next) {
		return classifiedLine{kind: kindLocationHeader, value: line}
	}
	return classifiedLine{kind: kindDetail, value: line}
}

func normalizeFieldLabel(label string) string {
	label = strings.ToUpper(label)
	if strings.HasPrefix(label, "HORARIO DE IMPLANTACI") {
		return "HORARIO DE IMPLANTACIÓN"
	}
	return label
}

// isBareLocationHeader reports whether the line is an implicit location
// header: equal to its own uppercase form, longer than 8 runes, not a role
// or rank word, and not followed by a HORARIO line (which would make it a
// stray title, not a location).
func isBareLocationHeader(line, next string) bool {
	if line != strings.ToUpper(line) || utf8.RuneCountInString(line) <= 8 {
		return false
	}
	for _, role := range model.CommandRoles {
		if strings.HasPrefix(line, role) {
			return false
		}
	}
	for _, rank := range model.KnownRanks {
		if strings.HasPrefix(line, rank) {
			return false
		}
	}
	return !strings.HasPrefix(strings.ToUpper(next), "HORARIO")
}

// textParser accumulates a Schedule over one forward pass.
type textParser struct {
	ids   *model.IDGen
	sched *model.Schedule
	state parseState

	svc       *model.Service
	svcSports bool // sticky flag captured when the service was started
	sports    bool
	asg       *model.Assignment
}

// ParseTextSchedule converts an ordered sequence of non-empty trimmed
// lines (extracted from a rich-text document) into a Schedule.
//
// It runs a single forward pass over the lines, classifying each one and
// feeding it into a small state machine. Input that yields neither a
// date, command staff, nor any service is rejected with
// ErrFormatUnrecognized.
func ParseTextSchedule(lines []string) (*model.Schedule, error) {
	p := &textParser{
		ids:   model.NewIDGen(),
		sched: &model.Schedule{Services: []model.Service{}, SportsEvents: []model.Service{}},
		state: stateAwaitingService,
	}

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var next string
		if i+1 < len(lines) {
			next = strings.TrimSpace(lines[i+1])
		}
		p.parseLine(classifyLine(line, next))
	}
	p.flushService()

	s := p.sched
	if s.Date == "" && len(s.CommandStaff) == 0 && len(s.Services) == 0 && len(s.SportsEvents) == 0 {
		return nil, fmt.Errorf("text schedule: %w", ErrFormatUnrecognized)
	}
	return s, nil
}

func (p *textParser) parseLine(c classifiedLine) {
	switch c.kind {
	case kindDate:
		p.sched.Date = c.value

	case kindCommandStaff:
		// Literal import: every matching line appends, duplicates and all.
		p.sched.CommandStaff = append(p.sched.CommandStaff, p.parseOfficer(c.label, c.value))

	case kindServicesMarker:
		// Section banner, carries no data.

	case kindSportsMarker:
		p.flushService()
		p.sports = true
		p.state = stateAwaitingService

	case kindNewService:
		p.flushService()
		title, desc := splitServiceTitle(c.value)
		p.svc = &model.Service{
			ID:          p.ids.Next("svc"),
			Title:       title,
			Description: desc,
			Assignments: []model.Assignment{},
		}
		p.svcSports = p.sports
		p.state = stateAwaitingService

	case kindField:
		p.parseField(c.label, c.value)

	case kindLocationHeader:
		p.commitAssignment()
		p.asg = &model.Assignment{ID: p.ids.Next("asg"), Location: c.value}
		p.state = stateInAssignment

	case kindDetail:
		if p.svc == nil {
			return // preamble noise before the first service
		}
		if p.asg == nil {
			p.asg = &model.Assignment{ID: p.ids.Next("asg")}
		}
		p.asg.Details = append(p.asg.Details, c.value)
		p.state = stateInDetails
	}
}

func (p *textParser) parseField(label, value string) {
	switch label {
	case "QTH":
		if p.asg != nil && p.asg.Location != "" {
			p.commitAssignment()
		}
		if p.asg == nil {
			p.asg = &model.Assignment{ID: p.ids.Next("asg")}
		}
		p.asg.Location = value
		p.state = stateInAssignment

	case "MODALIDAD DE COBERTURA":
		// Service-scoped, not assignment-scoped.
		if p.asg != nil && p.asg.Location != "" {
			p.commitAssignment()
		}
		if p.svc != nil {
			if p.svc.Novelty != "" {
				p.svc.Novelty += " "
			}
			p.svc.Novelty += value
		}

	default:
		if p.asg == nil {
			p.asg = &model.Assignment{ID: p.ids.Next("asg")}
		}
		switch label {
		case "HORARIO":
			p.asg.Time = value
		case "HORARIO DE IMPLANTACIÓN":
			p.asg.ImplementationTime = value
		case "UNIDAD":
			p.asg.UnitID = value
		case "PERSONAL":
			p.asg.Personnel = value
		}
		p.state = stateInAssignment
	}
}

// parseOfficer splits a command-staff value into rank and name. The rank
// is an optional leading known-rank word; everything else, after stripping
// a trailing parenthetical and stray punctuation, is the name.
func (p *textParser) parseOfficer(role, text string) model.Officer {
	rank := model.RankOther
	upper := strings.ToUpper(text)
	for _, r := range model.KnownRanks {
		if upper == r || strings.HasPrefix(upper, r+" ") {
			rank = r
			text = strings.TrimSpace(text[len(r):])
			break
		}
	}
	name := trailParenRe.ReplaceAllString(text, "")
	name = strings.Trim(name, " .,;:-")
	return model.Officer{
		ID:   p.ids.Next("off"),
		Role: role,
		Rank: rank,
		Name: name,
	}
}

// splitServiceTitle cleans the remainder of a numbered service line and
// pulls an embedded O.S. order reference out into the description.
func splitServiceTitle(rest string) (title, description string) {
	rest = strings.TrimSpace(rest)
	rest = strings.TrimRight(rest, ".- ")
	rest = stripQuotes(rest)

	if loc := orderRe.FindStringIndex(strings.ToUpper(rest)); loc != nil {
		description = strings.TrimSpace(rest[loc[0]:loc[1]])
		remainder := strings.TrimSpace(rest[:loc[0]] + " " + rest[loc[1]:])
		title = stripQuotes(remainder)
		return title, description
	}
	return rest, ""
}

func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	for _, pair := range [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}} {
		if strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) && len(s) > len(pair[0])+len(pair[1]) {
			return strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
		}
	}
	return s
}

// commitAssignment materializes the in-flight assignment into the current
// service. An assignment with neither a location nor detail lines is
// silently dropped; missing required fields get placeholder defaults.
func (p *textParser) commitAssignment() {
	asg := p.asg
	p.asg = nil
	if asg == nil || p.svc == nil {
		return
	}
	if asg.Location == "" && len(asg.Details) == 0 {
		return
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
	p.svc.Assignments = append(p.svc.Assignments, *asg)
}

// flushService commits the in-flight assignment and moves the current
// service onto the list it belonged to when it was started.
func (p *textParser) flushService() {
	p.commitAssignment()
	if p.svc == nil {
		return
	}
	if p.svcSports {
		p.sched.SportsEvents = append(p.sched.SportsEvents, *p.svc)
	} else {
		p.sched.Services = append(p.sched.Services, *p.svc)
	}
	p.svc = nil
}
