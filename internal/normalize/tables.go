package normalize

// Canonical enumerations and their source-vocabulary lookup tables. Keys are
// matched after lowercasing and hyphen/space flattening, so one entry covers
// "Per Diem", "per-diem", and "PER  DIEM".

// Canonical job types.
const (
	JobTypeFullTime = "Full-Time"
	JobTypePartTime = "Part-Time"
	JobTypePerDiem  = "Per Diem"
	JobTypeContract = "Contract"
	JobTypeTravel   = "Travel"
)

var jobTypeTable = map[string]string{
	"full time":  JobTypeFullTime,
	"ft":         JobTypeFullTime,
	"regular":    JobTypeFullTime,
	"permanent":  JobTypeFullTime,
	"part time":  JobTypePartTime,
	"pt":         JobTypePartTime,
	"per diem":   JobTypePerDiem,
	"prn":        JobTypePerDiem, // deprecated synonym, still common upstream
	"as needed":  JobTypePerDiem,
	"pool":       JobTypePerDiem,
	"contract":   JobTypeContract,
	"temporary":  JobTypeContract,
	"temp":       JobTypeContract,
	"locum":      JobTypeContract,
	"seasonal":   JobTypeContract,
	"travel":     JobTypeTravel,
	"traveler":   JobTypeTravel,
	"travel rn":  JobTypeTravel,
}

// Canonical shift types.
const (
	ShiftDay      = "Day"
	ShiftNight    = "Night"
	ShiftEvening  = "Evening"
	ShiftRotating = "Rotating"
	ShiftWeekend  = "Weekend"
)

var shiftTable = map[string]string{
	"day":           ShiftDay,
	"days":          ShiftDay,
	"day shift":     ShiftDay,
	"7a 7p":         ShiftDay,
	"first":         ShiftDay,
	"night":         ShiftNight,
	"nights":        ShiftNight,
	"night shift":   ShiftNight,
	"noc":           ShiftNight,
	"overnight":     ShiftNight,
	"7p 7a":         ShiftNight,
	"third":         ShiftNight,
	"evening":       ShiftEvening,
	"evenings":      ShiftEvening,
	"swing":         ShiftEvening,
	"second":        ShiftEvening,
	"rotating":      ShiftRotating,
	"rotation":      ShiftRotating,
	"variable":      ShiftRotating,
	"varied":        ShiftRotating,
	"weekend":       ShiftWeekend,
	"weekends":      ShiftWeekend,
	"weekends only": ShiftWeekend,
	"baylor":        ShiftWeekend,
}

// Canonical specialties.
const (
	SpecialtyICU       = "ICU"
	SpecialtyEmergency = "Emergency"
	SpecialtyMedSurg   = "Med-Surg"
	SpecialtyOR        = "Operating Room"
	SpecialtyLD        = "Labor & Delivery"
	SpecialtyPeds      = "Pediatrics"
	SpecialtyOncology  = "Oncology"
	SpecialtyTelemetry = "Telemetry"
	SpecialtyPsych     = "Psychiatric"
	SpecialtyHomeCare  = "Home Health"

	// SpecialtyGeneral is the catch-all. It also absorbs the legacy
	// "All Specialties" tag and every unrecognized value, which conflates
	// genuinely distinct categories (a data-quality wart, kept for
	// compatibility with the existing board).
	SpecialtyGeneral = "General Nursing"
)

var specialtyTable = map[string]string{
	"icu":                  SpecialtyICU,
	"intensive care":       SpecialtyICU,
	"intensive care unit":  SpecialtyICU,
	"critical care":        SpecialtyICU,
	"er":                   SpecialtyEmergency,
	"ed":                   SpecialtyEmergency,
	"emergency":            SpecialtyEmergency,
	"emergency room":       SpecialtyEmergency,
	"emergency department": SpecialtyEmergency,
	"med surg":             SpecialtyMedSurg,
	"medical surgical":     SpecialtyMedSurg,
	"medsurg":              SpecialtyMedSurg,
	"or":                   SpecialtyOR,
	"operating room":       SpecialtyOR,
	"perioperative":        SpecialtyOR,
	"surgical services":    SpecialtyOR,
	"surgery":              SpecialtyOR,
	"l&d":                  SpecialtyLD,
	"labor and delivery":   SpecialtyLD,
	"labor & delivery":     SpecialtyLD,
	"obstetrics":           SpecialtyLD,
	"ob":                   SpecialtyLD,
	"peds":                 SpecialtyPeds,
	"pediatric":            SpecialtyPeds,
	"pediatrics":           SpecialtyPeds,
	"oncology":             SpecialtyOncology,
	"hematology oncology":  SpecialtyOncology,
	"heme onc":             SpecialtyOncology,
	"telemetry":            SpecialtyTelemetry,
	"tele":                 SpecialtyTelemetry,
	"pcu":                  SpecialtyTelemetry,
	"progressive care":     SpecialtyTelemetry,
	"psych":                SpecialtyPsych,
	"psychiatric":          SpecialtyPsych,
	"behavioral health":    SpecialtyPsych,
	"mental health":        SpecialtyPsych,
	"home health":          SpecialtyHomeCare,
	"home care":            SpecialtyHomeCare,
	"hospice":              SpecialtyHomeCare,
	"all specialties":      SpecialtyGeneral, // legacy tag
	"general":              SpecialtyGeneral,
	"general nursing":      SpecialtyGeneral,
}

// Canonical experience levels.
const (
	ExperienceEntry  = "Entry Level"
	ExperienceMid    = "Mid Level"
	ExperienceSenior = "Senior Level"
)

var experienceTable = map[string]string{
	"entry":          ExperienceEntry,
	"entry level":    ExperienceEntry,
	"new grad":       ExperienceEntry,
	"new graduate":   ExperienceEntry,
	"graduate nurse": ExperienceEntry,
	"junior":         ExperienceEntry,
	"mid":            ExperienceMid,
	"mid level":      ExperienceMid,
	"intermediate":   ExperienceMid,
	"experienced":    ExperienceMid,
	"senior":         ExperienceSenior,
	"senior level":   ExperienceSenior,
	"lead":           ExperienceSenior,
	"charge":         ExperienceSenior,
}

// stateCodes maps lowercase full state names to their 2-letter codes.
// Codes themselves are validated against stateCodeSet.
var stateCodes = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT",
	"delaware": "DE", "florida": "FL", "georgia": "GA", "hawaii": "HI",
	"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
	"maryland": "MD", "massachusetts": "MA", "michigan": "MI",
	"minnesota": "MN", "mississippi": "MS", "missouri": "MO",
	"montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND",
	"ohio": "OH", "oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA",
	"rhode island": "RI", "south carolina": "SC", "south dakota": "SD",
	"tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY",
	"district of columbia": "DC", "washington dc": "DC", "puerto rico": "PR",
}

var stateCodeSet = func() map[string]bool {
	set := make(map[string]bool, len(stateCodes))
	for _, code := range stateCodes {
		set[code] = true
	}
	return set
}()
