package intake

import "testing"

func TestParseIncidentType(t *testing.T) {
	tests := []struct {
		in   string
		want IncidentType
	}{
		{"vehicle_incident", VehicleIncident},
		{"vehicle incident", VehicleIncident},
		{"workplace_incident", WorkplaceIncident},
		{"general_condition", GeneralCondition},
		{"", GeneralCondition},
		{"alien_abduction", GeneralCondition},
	}
	for _, tt := range tests {
		if got := ParseIncidentType(tt.in); got != tt.want {
			t.Errorf("ParseIncidentType(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSectionsFor_SharedFirstSection(t *testing.T) {
	for _, typ := range []IncidentType{VehicleIncident, WorkplaceIncident, GeneralCondition} {
		defs := SectionsFor(typ)
		if len(defs) != 6 {
			t.Errorf("%s: expected 6 sections, got %d", typ, len(defs))
		}
		if defs[0].Key != "patient-identification" {
			t.Errorf("%s: expected patient-identification first, got %s", typ, defs[0].Key)
		}
		if !defs[0].Required {
			t.Errorf("%s: first section must be required", typ)
		}
		for _, d := range defs[1:] {
			if d.Required {
				t.Errorf("%s: section %s should be optional", typ, d.Key)
			}
		}
	}
}

func TestSectionsFor_DistinctLists(t *testing.T) {
	vehicle := SectionsFor(VehicleIncident)
	general := SectionsFor(GeneralCondition)
	if vehicle[1].Key == general[1].Key {
		t.Errorf("expected type-specific sections to differ, both have %s", vehicle[1].Key)
	}
}

func TestSectionsFor_ReturnsCopy(t *testing.T) {
	defs := SectionsFor(GeneralCondition)
	defs[0].Key = "tampered"
	if SectionsFor(GeneralCondition)[0].Key != "patient-identification" {
		t.Error("SectionsFor must return an independent copy")
	}
}
