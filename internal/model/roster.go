package model

// RosterEntry holds the names filling the four command roles on one date.
// Fields are independent; an empty field means the slot is unassigned.
type RosterEntry struct {
	Inspections string `json:"inspections,omitempty"`
	Service     string `json:"service,omitempty"`
	Guard       string `json:"guard,omitempty"`
	Reserve     string `json:"reserve,omitempty"`
}

// Roster maps YYYY-MM-DD keys to role assignments. Entries are created or
// overwritten by merge-import and never deleted automatically.
type Roster map[string]RosterEntry

// SetRole writes a name into the entry for date under the given command
// role label, creating the entry if absent. Unknown labels are ignored.
func (r Roster) SetRole(date, role, name string) {
	entry := r[date]
	switch role {
	case RoleInspections:
		entry.Inspections = name
	case RoleService:
		entry.Service = name
	case RoleGuard:
		entry.Guard = name
	case RoleReserve:
		entry.Reserve = name
	default:
		return
	}
	r[date] = entry
}

// Merge copies every entry from other into r, overwriting only the fields
// the incoming entry actually fills.
func (r Roster) Merge(other Roster) {
	for date, in := range other {
		entry := r[date]
		if in.Inspections != "" {
			entry.Inspections = in.Inspections
		}
		if in.Service != "" {
			entry.Service = in.Service
		}
		if in.Guard != "" {
			entry.Guard = in.Guard
		}
		if in.Reserve != "" {
			entry.Reserve = in.Reserve
		}
		r[date] = entry
	}
}
