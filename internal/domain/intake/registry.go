package intake

// IncidentType is the closed set of classifiers that select an intake form
// configuration. Anything a caller sends that does not parse lands on
// GeneralCondition so that an unknown classifier never blocks intake.
type IncidentType int

const (
	GeneralCondition IncidentType = iota
	VehicleIncident
	WorkplaceIncident
)

func (t IncidentType) String() string {
	switch t {
	case VehicleIncident:
		return "vehicle_incident"
	case WorkplaceIncident:
		return "workplace_incident"
	default:
		return "general_condition"
	}
}

// ParseIncidentType maps a classifier string to an IncidentType, falling back
// to GeneralCondition for anything unrecognized.
func ParseIncidentType(s string) IncidentType {
	switch s {
	case "vehicle_incident", "vehicle incident":
		return VehicleIncident
	case "workplace_incident", "workplace incident":
		return WorkplaceIncident
	default:
		return GeneralCondition
	}
}

// SectionDef describes one section of the intake wizard for a given incident
// type.
type SectionDef struct {
	Key      string `json:"key"`
	Required bool   `json:"required"`
	Label    string `json:"label"`
}

var patientIdentification = SectionDef{Key: "patient-identification", Required: true, Label: "Patient Identification"}

var sectionLists = map[IncidentType][]SectionDef{
	VehicleIncident: {
		patientIdentification,
		{Key: "accident-details", Label: "Accident Details"},
		{Key: "vehicle-damage", Label: "Vehicle Damage"},
		{Key: "injury-assessment", Label: "Injury Assessment"},
		{Key: "insurance-information", Label: "Insurance Information"},
		{Key: "prior-conditions", Label: "Prior Conditions"},
	},
	WorkplaceIncident: {
		patientIdentification,
		{Key: "incident-details", Label: "Incident Details"},
		{Key: "employer-information", Label: "Employer Information"},
		{Key: "job-duties", Label: "Job Duties"},
		{Key: "injury-assessment", Label: "Injury Assessment"},
		{Key: "workers-comp-claim", Label: "Workers' Compensation Claim"},
	},
	GeneralCondition: {
		patientIdentification,
		{Key: "condition-history", Label: "Condition History"},
		{Key: "symptom-assessment", Label: "Symptom Assessment"},
		{Key: "medications", Label: "Current Medications"},
		{Key: "lifestyle-factors", Label: "Lifestyle Factors"},
		{Key: "prior-treatment", Label: "Prior Treatment"},
	},
}

// SectionsFor returns the ordered section list for an incident type. The
// returned slice is a copy; callers may annotate it freely.
func SectionsFor(t IncidentType) []SectionDef {
	defs, ok := sectionLists[t]
	if !ok {
		defs = sectionLists[GeneralCondition]
	}
	out := make([]SectionDef, len(defs))
	copy(out, defs)
	return out
}
