// Package normalize maps raw career-site vocabulary onto the board's
// canonical enumerations. Lookups flatten case, hyphens, and spacing, so
// "Per-Diem", "per diem" and "PRN" all land on the same canonical value.
// Normalization never fails a record: unknowns fall back to documented
// defaults.
package normalize

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"github.com/nursewire/nursewire/internal/model"
)

// Normalize produces a fully canonical record from a classified raw job.
// The raw input is never mutated.
func Normalize(job model.RawJob, emp model.Employer) model.NormalizedPosting {
	city, state, zip, remote := ParseLocation(firstField(job.Fields, "location", "city"))
	if !remote {
		remote = looksRemote(job.Title)
	}
	if state == "" {
		if s := NormalizeState(firstField(job.Fields, "state")); s != "" {
			state = s
		}
	}
	if zip == "" {
		zip = firstField(job.Fields, "zip", "zipcode")
	}

	salary := ParseSalary(firstField(job.Fields, "salary", "pay", "payrange"))

	rec := model.NormalizedPosting{
		Title:         strings.TrimSpace(job.Title),
		Description:   strings.TrimSpace(job.Description),
		SourceURL:     job.DetailURL,
		EmployerName:  emp.Name,
		EmployerSlug:  emp.Slug,
		CareerPageURL: emp.CareerPageURL,

		City:     city,
		State:    state,
		ZipCode:  zip,
		IsRemote: remote,

		JobType:         NormalizeJobType(firstField(job.Fields, "jobtype", "employmenttype")),
		ShiftType:       NormalizeShift(firstField(job.Fields, "shift", "shifttype", "schedule")),
		Specialty:       NormalizeSpecialty(firstField(job.Fields, "specialty", "department")),
		ExperienceLevel: NormalizeExperience(firstField(job.Fields, "experience", "experiencelevel")),

		SalaryMin:       salary.Min,
		SalaryMax:       salary.Max,
		SalaryType:      salary.Type,
		SalaryMinHourly: salary.MinHourly,
		SalaryMaxHourly: salary.MaxHourly,
		SalaryMinAnnual: salary.MinAnnual,
		SalaryMaxAnnual: salary.MaxAnnual,

		ExpiresDate: parseExpiry(firstField(job.Fields, "expires", "expireson", "expiresdate", "closingdate")),
	}

	rec.Slug = Slug(rec.Title, rec.City, rec.State, emp.Slug, rec.SourceURL)
	rec.MetaDescription = metaDescription(rec)
	rec.Keywords = keywords(rec)
	return rec
}

// NormalizeJobType maps a raw employment-type string to the canonical job
// type. Unknown values default to Full-Time, the overwhelmingly most common
// arrangement on the sources in scope.
func NormalizeJobType(raw string) string {
	if v, ok := jobTypeTable[flatten(raw)]; ok {
		return v
	}
	return JobTypeFullTime
}

// NormalizeShift maps a raw shift string to the canonical shift type, or
// empty when unknown (shift is optional).
func NormalizeShift(raw string) string {
	return shiftTable[flatten(raw)]
}

// NormalizeSpecialty maps a raw specialty or department to the canonical
// specialty. Unknown values fall back to General Nursing rather than
// failing the record.
func NormalizeSpecialty(raw string) string {
	if v, ok := specialtyTable[flatten(raw)]; ok {
		return v
	}
	return SpecialtyGeneral
}

// NormalizeExperience maps a raw experience string to the canonical level,
// or empty when unknown (experience is optional).
func NormalizeExperience(raw string) string {
	flat := flatten(raw)
	if v, ok := experienceTable[flat]; ok {
		return v
	}
	// Ranges like "3-5 years" arrive flattened to "3 5 years".
	if m := yearsRegex.FindStringSubmatch(flat); m != nil {
		switch {
		case m[1] == "0" || m[1] == "1":
			return ExperienceEntry
		case m[1] == "2" || m[1] == "3" || m[1] == "4":
			return ExperienceMid
		default:
			return ExperienceSenior
		}
	}
	return ""
}

var yearsRegex = regexp.MustCompile(`^(\d+)(?:\s*\d*)?\+?\s*(?:years?|yrs?)`)

// NormalizeState returns the 2-letter code for a state name or code, or
// empty when unrecognized.
func NormalizeState(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if code := strings.ToUpper(trimmed); stateCodeSet[code] {
		return code
	}
	return stateCodes[strings.ToLower(strings.Join(strings.Fields(trimmed), " "))]
}

var zipRegex = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)

// ParseLocation splits a raw location string ("Austin, TX 78701",
// "Portland, Oregon", "Remote") into city, state code, zip, and a remote
// flag. Unparseable parts are returned empty, never an error.
func ParseLocation(raw string) (city, state, zip string, remote bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", "", "", false
	}
	if looksRemote(trimmed) {
		return "", "", "", true
	}

	if m := zipRegex.FindStringSubmatch(trimmed); m != nil {
		zip = m[1]
		trimmed = strings.TrimSpace(zipRegex.ReplaceAllString(trimmed, ""))
	}

	parts := strings.Split(trimmed, ",")
	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		state = NormalizeState(strings.TrimSpace(strings.Join(parts[1:], " ")))
	}
	return city, state, zip, false
}

func looksRemote(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "remote") || strings.Contains(lower, "work from home") || strings.Contains(lower, "telehealth")
}

var slugStripRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives the posting's unique URL-safe slug from title, location, and
// employer, suffixed with a short hash of the source URL so two otherwise
// identical postings never collide.
func Slug(title, city, state, employerSlug, sourceURL string) string {
	base := strings.ToLower(strings.Join(strings.Fields(
		fmt.Sprintf("%s %s %s %s", title, city, state, employerSlug)), " "))
	base = strings.Trim(slugStripRegex.ReplaceAllString(base, "-"), "-")

	h := fnv.New32a()
	h.Write([]byte(sourceURL))
	return fmt.Sprintf("%s-%08x", base, h.Sum32())
}

const metaDescriptionLen = 155

// metaDescription builds the search-snippet line for the posting.
func metaDescription(rec model.NormalizedPosting) string {
	where := "Remote"
	if !rec.IsRemote {
		switch {
		case rec.City != "" && rec.State != "":
			where = rec.City + ", " + rec.State
		case rec.City != "":
			where = rec.City
		case rec.State != "":
			where = rec.State
		default:
			where = rec.EmployerName
		}
	}
	head := fmt.Sprintf("%s RN position in %s at %s. ", rec.Specialty, where, rec.EmployerName)
	return head + truncateAtWord(rec.Description, metaDescriptionLen-len(head))
}

// keywords assembles the deduplicated keyword list for the posting page.
func keywords(rec model.NormalizedPosting) []string {
	candidates := []string{
		"registered nurse",
		"rn jobs",
		strings.ToLower(rec.Specialty) + " rn",
		strings.ToLower(rec.JobType),
		strings.ToLower(rec.EmployerName),
	}
	if rec.IsRemote {
		candidates = append(candidates, "remote nursing jobs")
	} else if rec.City != "" && rec.State != "" {
		candidates = append(candidates, strings.ToLower(rec.City+" "+rec.State)+" nursing jobs")
	}

	seen := make(map[string]bool)
	var out []string
	for _, k := range candidates {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func truncateAtWord(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

var expiryLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// parseExpiry parses an explicit source expiry date. Unparseable values are
// dropped: the calculated expiry window takes over.
func parseExpiry(raw string) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t
		}
	}
	return nil
}

// flatten lowercases and squeezes hyphens/slashes/whitespace so lookup keys
// tolerate source formatting variants.
func flatten(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("-", " ", "/", " ", ".", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// firstField returns the first present, non-empty field among keys.
func firstField(fields map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := fields[k]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
