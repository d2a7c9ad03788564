package model

import "fmt"

// UnitStatus is the operational status of a fire unit.
type UnitStatus string

const (
	// StatusInService means the unit is available for dispatch.
	StatusInService UnitStatus = "Para Servicio"
	// StatusOutOfService means the unit cannot be dispatched.
	StatusOutOfService UnitStatus = "Fuera de Servicio"
	// StatusReserve means the unit is held back as reserve.
	StatusReserve UnitStatus = "Reserva"
	// StatusOnLoan means the unit is lent to another station.
	StatusOnLoan UnitStatus = "A Préstamo"
)

// FireUnit is one vehicle or apparatus row in a unit report.
//
// OutOfServiceReason is populated only when Status is Fuera de Servicio;
// OfficerInCharge and POC only when it is not. An out-of-service unit has
// no acting officer.
type FireUnit struct {
	ID                 string     `json:"id"`
	Type               string     `json:"type"`
	Status             UnitStatus `json:"status"`
	OutOfServiceReason string     `json:"outOfServiceReason,omitempty"`
	OfficerInCharge    string     `json:"officerInCharge,omitempty"`
	POC                string     `json:"poc,omitempty"`
	PersonnelCount     *int       `json:"personnelCount"`
}

// Validate checks the status exclusivity invariant.
func (u *FireUnit) Validate() error {
	if u.ID == "" || u.Type == "" {
		return fmt.Errorf("unit needs both id and type (got id=%q type=%q)", u.ID, u.Type)
	}
	if u.Status == StatusOutOfService {
		if u.OfficerInCharge != "" || u.POC != "" {
			return fmt.Errorf("unit %s: out-of-service unit cannot have officer or poc", u.ID)
		}
	} else if u.OutOfServiceReason != "" {
		return fmt.Errorf("unit %s: outOfServiceReason set on in-service unit", u.ID)
	}
	return nil
}

// UnitGroup is one station (or detachment, brigade, office) with its units.
type UnitGroup struct {
	Name    string     `json:"name"`
	Units   []FireUnit `json:"units"`
	Crew    []string   `json:"crew,omitempty"`
	Standby []string   `json:"standby,omitempty"`
}

// Zone is an organizational grouping of stations used for report layout.
type Zone struct {
	Name   string      `json:"name"`
	Groups []UnitGroup `json:"groups"`
}

// UnitReportData is the zoned unit-status tree for one report date.
type UnitReportData struct {
	ReportDate string `json:"reportDate"`
	Zones      []Zone `json:"zones"`
}

// Validate checks every unit in the report.
func (r *UnitReportData) Validate() error {
	for _, z := range r.Zones {
		for _, g := range z.Groups {
			for i := range g.Units {
				if err := g.Units[i].Validate(); err != nil {
					return fmt.Errorf("zone %s, station %s: %w", z.Name, g.Name, err)
				}
			}
		}
	}
	return nil
}
