package model

import (
	"strings"
	"testing"
)

func TestNormalizeStatusEndedImpliesInService(t *testing.T) {
	ended := true
	a := Assignment{ServiceEnded: &ended}
	a.NormalizeStatus()
	if a.InService == nil || !*a.InService {
		t.Error("ServiceEnded=true must force InService=true")
	}
}

func TestNormalizeStatusNotInServiceClearsEnded(t *testing.T) {
	f, ended := false, true
	a := Assignment{InService: &f, ServiceEnded: &ended}
	a.NormalizeStatus()
	// The ended flag first promotes InService, so the pair normalizes to
	// in-service and ended.
	if a.InService == nil || !*a.InService {
		t.Errorf("Unexpected pair: inService=%v serviceEnded=%v", a.InService, a.ServiceEnded)
	}

	b := Assignment{InService: &f}
	b.NormalizeStatus()
	if b.ServiceEnded == nil || *b.ServiceEnded {
		t.Error("InService=false must force ServiceEnded=false")
	}
}

func TestScheduleValidateDuplicateServiceIDs(t *testing.T) {
	s := Schedule{
		Services:     []Service{{ID: "svc-1", Title: "A"}},
		SportsEvents: []Service{{ID: "svc-1", Title: "B"}},
	}
	err := s.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("Expected duplicate id error, got %v", err)
	}
}

func TestScheduleValidateOK(t *testing.T) {
	s := Schedule{
		Services: []Service{
			{ID: "svc-1", Title: "A", Assignments: []Assignment{{ID: "asg-1"}}},
		},
		SportsEvents: []Service{{ID: "svc-2", Title: "B"}},
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Expected valid schedule, got %v", err)
	}
}

func TestFireUnitValidateExclusivity(t *testing.T) {
	bad := FireUnit{ID: "IV-1", Type: "Autobomba", Status: StatusOutOfService, OfficerInCharge: "X"}
	if err := bad.Validate(); err == nil {
		t.Error("Out-of-service unit with officer must fail validation")
	}

	bad = FireUnit{ID: "IV-1", Type: "Autobomba", Status: StatusInService, OutOfServiceReason: "rota"}
	if err := bad.Validate(); err == nil {
		t.Error("In-service unit with reason must fail validation")
	}

	good := FireUnit{ID: "IV-1", Type: "Autobomba", Status: StatusOutOfService, OutOfServiceReason: "rota"}
	if err := good.Validate(); err != nil {
		t.Errorf("Expected valid unit, got %v", err)
	}
}

func TestIDGenUnique(t *testing.T) {
	g := NewIDGen()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.Next("svc")
		if seen[id] {
			t.Fatalf("Duplicate id %s", id)
		}
		seen[id] = true
	}

	// Separate generators must not collide either.
	other := NewIDGen()
	if other.Next("svc") == g.Next("svc") {
		t.Error("Ids from distinct generators collided")
	}
}
