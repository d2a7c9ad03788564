package importer

import (
	"errors"
	"testing"

	"github.com/dnbomberos/guardia/internal/model"
)

func TestParseTextScheduleEndToEnd(t *testing.T) {
	lines := []string{
		"GUARDIA DEL DIA 5 DE AGOSTO DE 2025",
		"JEFE DE SERVICIO: Comandante PEREZ, Juan",
		"1- O.S. 100/25 COBERTURA EVENTO",
		"QTH: ESTADIO X",
		"HORARIO: 18:00 a 22:00",
		"PERSONAL: Dotación a designar",
	}

	sched, err := ParseTextSchedule(lines)
	if err != nil {
		t.Fatalf("ParseTextSchedule failed: %v", err)
	}

	if sched.Date != "5 DE AGOSTO DE 2025" {
		t.Errorf("Expected date %q, got %q", "5 DE AGOSTO DE 2025", sched.Date)
	}

	if len(sched.CommandStaff) != 1 {
		t.Fatalf("Expected 1 officer, got %d", len(sched.CommandStaff))
	}
	off := sched.CommandStaff[0]
	if off.Role != model.RoleService {
		t.Errorf("Expected role %q, got %q", model.RoleService, off.Role)
	}
	if off.Rank != "COMANDANTE" {
		t.Errorf("Expected rank COMANDANTE, got %q", off.Rank)
	}
	if off.Name != "PEREZ, Juan" {
		t.Errorf("Expected name %q, got %q", "PEREZ, Juan", off.Name)
	}

	if len(sched.Services) != 1 {
		t.Fatalf("Expected 1 service, got %d", len(sched.Services))
	}
	svc := sched.Services[0]
	if svc.Description != "O.S. 100/25" {
		t.Errorf("Expected description %q, got %q", "O.S. 100/25", svc.Description)
	}
	if svc.Title != "COBERTURA EVENTO" {
		t.Errorf("Expected title %q, got %q", "COBERTURA EVENTO", svc.Title)
	}

	if len(svc.Assignments) != 1 {
		t.Fatalf("Expected 1 assignment, got %d", len(svc.Assignments))
	}
	asg := svc.Assignments[0]
	if asg.Location != "ESTADIO X" {
		t.Errorf("Expected location %q, got %q", "ESTADIO X", asg.Location)
	}
	if asg.Time != "18:00 a 22:00" {
		t.Errorf("Expected time %q, got %q", "18:00 a 22:00", asg.Time)
	}
	if asg.Personnel != "Dotación a designar" {
		t.Errorf("Expected personnel %q, got %q", "Dotación a designar", asg.Personnel)
	}
}

func TestSportsMarkerBeforeFirstService(t *testing.T) {
	lines := []string{
		"GUARDIA DEL DIA 5 DE AGOSTO DE 2025",
		"EVENTOS DEPORTIVOS",
		"1- PARTIDO LOCAL",
		"QTH: CANCHA A",
		"2- PARTIDO VISITANTE",
		"QTH: CANCHA B",
	}

	sched, err := ParseTextSchedule(lines)
	if err != nil {
		t.Fatalf("ParseTextSchedule failed: %v", err)
	}
	if len(sched.Services) != 0 {
		t.Errorf("Expected empty services, got %d", len(sched.Services))
	}
	if len(sched.SportsEvents) != 2 {
		t.Fatalf("Expected 2 sports events, got %d", len(sched.SportsEvents))
	}
	if sched.SportsEvents[0].Title != "PARTIDO LOCAL" {
		t.Errorf("Expected first sports event PARTIDO LOCAL, got %q", sched.SportsEvents[0].Title)
	}
}

func TestIdempotentReparse(t *testing.T) {
	lines := []string{
		"GUARDIA DEL DIA 12 DE AGOSTO DE 2025",
		"1- CUSTODIA DE OBJETIVO",
		"QTH: CASA DE GOBIERNO",
		"HORARIO: 08:00 a 20:00",
		"2- PREVENCION EN PLAZA",
		"QTH: PLAZA CENTRAL",
		"Llevar equipo completo",
	}

	first, err := ParseTextSchedule(lines)
	if err != nil {
		t.Fatalf("First parse failed: %v", err)
	}
	second, err := ParseTextSchedule(lines)
	if err != nil {
		t.Fatalf("Second parse failed: %v", err)
	}

	if len(first.Services) != len(second.Services) {
		t.Fatalf("Service count differs: %d vs %d", len(first.Services), len(second.Services))
	}
	for i := range first.Services {
		a, b := first.Services[i], second.Services[i]
		if a.Title != b.Title {
			t.Errorf("Service %d title differs: %q vs %q", i, a.Title, b.Title)
		}
		if len(a.Assignments) != len(b.Assignments) {
			t.Fatalf("Service %d assignment count differs: %d vs %d", i, len(a.Assignments), len(b.Assignments))
		}
		for j := range a.Assignments {
			x, y := a.Assignments[j], b.Assignments[j]
			if x.Location != y.Location || x.Time != y.Time || x.Personnel != y.Personnel {
				t.Errorf("Service %d assignment %d differs: %+v vs %+v", i, j, x, y)
			}
		}
	}
}

func TestCommitPlaceholders(t *testing.T) {
	lines := []string{
		"GUARDIA DEL DIA 5 DE AGOSTO DE 2025",
		"1- SERVICIO MINIMO",
		"QTH: DEPOSITO CENTRAL",
	}

	sched, err := ParseTextSchedule(lines)
	if err != nil {
		t.Fatalf("ParseTextSchedule failed: %v", err)
	}
	asg := sched.Services[0].Assignments[0]
	if asg.Time != PlaceholderTime {
		t.Errorf("Expected time placeholder %q, got %q", PlaceholderTime, asg.Time)
	}
	if asg.Personnel != PlaceholderPersonnel {
		t.Errorf("Expected personnel placeholder %q, got %q", PlaceholderPersonnel, asg.Personnel)
	}
}

func TestAssignmentWithoutLocationDropped(t *testing.T) {
	lines := []string{
		"GUARDIA DEL DIA 5 DE AGOSTO DE 2025",
		"1- SERVICIO SIN DESTINO",
		"HORARIO: 08:00 a 12:00",
	}

	sched, err := ParseTextSchedule(lines)
	if err != nil {
		t.Fatalf("ParseTextSchedule failed: %v", err)
	}
	// Time alone, with no location and no details, never materializes.
	if n := len(sched.Services[0].Assignments); n != 0 {
		t.Errorf("Expected 0 assignments, got %d", n)
	}
}

func TestBareLocationHeader(t *testing.T) {
	lines := []string{
		"GUARDIA DEL DIA 5 DE AGOSTO DE 2025",
		"1- PREVENCION GENERAL",
		"PLAZA DE LA REPUBLICA",
		"PERSONAL: Dotación completa",
	}

	sched, err := ParseTextSchedule(lines)
	if err != nil {
		t.Fatalf("ParseTextSchedule failed: %v", err)
	}
	asgs := sched.Services[0].Assignments
	if len(asgs) != 1 {
		t.Fatalf("Expected 1 assignment, got %d", len(asgs))
	}
	if asgs[0].Location != "PLAZA DE LA REPUBLICA" {
		t.Errorf("Expected bare header as location, got %q", asgs[0].Location)
	}
}

func TestModalidadAppendsToServiceNovelty(t *testing.T) {
	lines := []string{
		"GUARDIA DEL DIA 5 DE AGOSTO DE 2025",
		"1- COBERTURA TEATRO",
		"QTH: TEATRO MUNICIPAL",
		"MODALIDAD DE COBERTURA: Permanencia en el lugar",
	}

	sched, err := ParseTextSchedule(lines)
	if err != nil {
		t.Fatalf("ParseTextSchedule failed: %v", err)
	}
	svc := sched.Services[0]
	if svc.Novelty != "Permanencia en el lugar" {
		t.Errorf("Expected novelty on service, got %q", svc.Novelty)
	}
	// The in-flight assignment was committed before the novelty applied.
	if len(svc.Assignments) != 1 {
		t.Errorf("Expected committed assignment, got %d", len(svc.Assignments))
	}
}

func TestOfficerRankFallback(t *testing.T) {
	lines := []string{
		"GUARDIA DEL DIA 5 DE AGOSTO DE 2025",
		"JEFE DE GUARDIA: Dr. GOMEZ, Luis (interino)",
	}

	sched, err := ParseTextSchedule(lines)
	if err != nil {
		t.Fatalf("ParseTextSchedule failed: %v", err)
	}
	off := sched.CommandStaff[0]
	if off.Rank != model.RankOther {
		t.Errorf("Expected rank %q, got %q", model.RankOther, off.Rank)
	}
	if off.Name != "Dr. GOMEZ, Luis" {
		t.Errorf("Expected trailing parenthetical stripped, got %q", off.Name)
	}
}

func TestDuplicateStaffLinesKept(t *testing.T) {
	lines := []string{
		"GUARDIA DEL DIA 5 DE AGOSTO DE 2025",
		"JEFE DE SERVICIO: Comandante PEREZ, Juan",
		"JEFE DE SERVICIO: Capitan LOPEZ, Ana",
	}

	sched, err := ParseTextSchedule(lines)
	if err != nil {
		t.Fatalf("ParseTextSchedule failed: %v", err)
	}
	// Literal import keeps every matching line, duplicates included.
	if len(sched.CommandStaff) != 2 {
		t.Errorf("Expected 2 officers, got %d", len(sched.CommandStaff))
	}
}

func TestUnrecognizedTextRejected(t *testing.T) {
	lines := []string{
		"acta de reunión ordinaria",
		"se deja constancia de lo tratado",
	}

	_, err := ParseTextSchedule(lines)
	if !errors.Is(err, ErrFormatUnrecognized) {
		t.Fatalf("Expected ErrFormatUnrecognized, got %v", err)
	}
}
