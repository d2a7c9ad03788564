// Package model defines the shared data shapes produced by the import
// pipeline and transported by the sync layer: guard schedules, unit
// reports and the command roster.
//
// All entities are plain structured data with no behavior beyond
// validation and normalization. The sync layer owns the canonical copy;
// everything else operates on values it received or built itself.
package model

import "fmt"

// Command roles are the four fixed leadership positions filled per guard
// shift. The labels match the printed forms verbatim.
const (
	RoleInspections = "JEFE DE INSPECCIONES"
	RoleService     = "JEFE DE SERVICIO"
	RoleGuard       = "JEFE DE GUARDIA"
	RoleReserve     = "JEFE DE RESERVA"
)

// CommandRoles lists the four roles in presentation order.
var CommandRoles = []string{RoleInspections, RoleService, RoleGuard, RoleReserve}

// KnownRanks lists rank words recognized as a leading prefix of an
// officer line, longest first so "COMANDANTE GENERAL" wins over
// "COMANDANTE". Anything else maps to RankOther.
var KnownRanks = []string{
	"COMANDANTE GENERAL",
	"COMANDANTE MAYOR",
	"COMANDANTE",
	"SUBCOMANDANTE",
	"CAPITÁN",
	"CAPITAN",
	"TENIENTE PRIMERO",
	"TENIENTE",
	"SUBTENIENTE",
	"SARGENTO PRIMERO",
	"SARGENTO",
	"CABO PRIMERO",
	"CABO",
	"BOMBERO",
}

// RankOther is the fallback rank when no known rank word prefixes the name.
const RankOther = "OTRO"

// Officer is one command-staff entry on a schedule.
//
// ID is either a real personnel id, a synthetic "roster-<date>-<role>" id
// when filled from the roster, or "empty-<role>" when the slot is unfilled.
type Officer struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Rank string `json:"rank"`
	Name string `json:"name"`
}

// Assignment is one deployment instruction within a Service.
//
// Personnel is free text, not a personnel reference. Details carries any
// free-text lines that did not map to a structured field.
type Assignment struct {
	ID                 string   `json:"id"`
	Location           string   `json:"location"`
	Time               string   `json:"time"`
	ImplementationTime string   `json:"implementationTime,omitempty"`
	Personnel          string   `json:"personnel"`
	UnitID             string   `json:"unitId,omitempty"`
	Details            []string `json:"details,omitempty"`
	InService          *bool    `json:"inService,omitempty"`
	ServiceEnded       *bool    `json:"serviceEnded,omitempty"`
}

// NormalizeStatus enforces the status pair invariant:
// ServiceEnded=true implies InService=true, and InService=false
// implies ServiceEnded=false.
func (a *Assignment) NormalizeStatus() {
	if a.ServiceEnded != nil && *a.ServiceEnded {
		t := true
		a.InService = &t
	}
	if a.InService != nil && !*a.InService {
		f := false
		a.ServiceEnded = &f
	}
}

// Service is one planned duty or coverage task for a guard shift.
//
// Hidden services sort last and are excluded from default views; the flag
// doubles as a soft-delete signal.
type Service struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Novelty     string       `json:"novelty,omitempty"`
	Hidden      bool         `json:"hidden,omitempty"`
	Assignments []Assignment `json:"assignments"`
}

// Schedule is the guard schedule for one day.
//
// Date is a display string ("5 DE AGOSTO DE 2025"), not a calendar value;
// the printed forms require the locale phrasing verbatim. The roster uses
// a separate YYYY-MM-DD machine key, and the two are never unified.
type Schedule struct {
	Date         string    `json:"date"`
	CommandStaff []Officer `json:"commandStaff"`
	Services     []Service `json:"services"`
	SportsEvents []Service `json:"sportsEvents"`
}

// Validate checks structural requirements on an imported schedule.
// Service ids must be unique across both lists; the importer re-keys
// synthesized services to guarantee this.
func (s *Schedule) Validate() error {
	seen := make(map[string]bool)
	for _, list := range [][]Service{s.Services, s.SportsEvents} {
		for _, svc := range list {
			if svc.ID == "" {
				return fmt.Errorf("service %q has no id", svc.Title)
			}
			if seen[svc.ID] {
				return fmt.Errorf("duplicate service id %q", svc.ID)
			}
			seen[svc.ID] = true
			for _, a := range svc.Assignments {
				if a.ID == "" {
					return fmt.Errorf("assignment in service %q has no id", svc.Title)
				}
			}
		}
	}
	return nil
}
