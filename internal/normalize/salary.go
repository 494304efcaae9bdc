package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// HoursPerYear is the fixed constant for deriving annual figures from
// hourly ones and back: 40 hours × 52 weeks.
const HoursPerYear = 2080

// Salary type values as persisted.
const (
	SalaryHourly = "hourly"
	SalaryAnnual = "annual"
)

// Salary holds a parsed raw range plus both derived unit representations.
type Salary struct {
	Min       *float64
	Max       *float64
	Type      string
	MinHourly *float64
	MaxHourly *float64
	MinAnnual *float64
	MaxAnnual *float64
}

var salaryAmountRegex = regexp.MustCompile(`\$?\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`)

// ParseSalary extracts a salary range and unit from a raw pay string like
// "$32.50 - $45.00 per hour" or "$68,000 to $82,000 annually". An empty or
// unparseable string yields a zero Salary; salary is always optional.
func ParseSalary(raw string) Salary {
	var s Salary
	if strings.TrimSpace(raw) == "" {
		return s
	}

	matches := salaryAmountRegex.FindAllStringSubmatch(raw, 2)
	if len(matches) == 0 {
		return s
	}

	min, err := strconv.ParseFloat(strings.ReplaceAll(matches[0][1], ",", ""), 64)
	if err != nil {
		return s
	}
	max := min
	if len(matches) > 1 {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(matches[1][1], ",", ""), 64); err == nil && v >= min {
			max = v
		}
	}

	s.Min = &min
	s.Max = &max
	s.Type = detectSalaryType(raw, max)
	s.derive()
	return s
}

// NewSalary builds a Salary from already-separated values, for sources that
// provide structured min/max fields.
func NewSalary(min, max float64, salaryType string) Salary {
	s := Salary{Min: &min, Max: &max, Type: salaryType}
	s.derive()
	return s
}

// detectSalaryType reads the unit from the raw text, falling back to a
// magnitude heuristic: no one posts an hourly rate above $500 or an annual
// salary below it.
func detectSalaryType(raw string, max float64) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "hour") || strings.Contains(lower, "/hr") || strings.Contains(lower, " hr"):
		return SalaryHourly
	case strings.Contains(lower, "year") || strings.Contains(lower, "annual") || strings.Contains(lower, "/yr"):
		return SalaryAnnual
	case max < 500:
		return SalaryHourly
	default:
		return SalaryAnnual
	}
}

// derive fills both unit representations from the raw range so downstream
// consumers never reconvert. Hourly figures are rounded to cents.
func (s *Salary) derive() {
	if s.Min == nil || s.Max == nil {
		return
	}
	switch s.Type {
	case SalaryHourly:
		s.MinHourly = s.Min
		s.MaxHourly = s.Max
		s.MinAnnual = ptr(*s.Min * HoursPerYear)
		s.MaxAnnual = ptr(*s.Max * HoursPerYear)
	case SalaryAnnual:
		s.MinAnnual = s.Min
		s.MaxAnnual = s.Max
		s.MinHourly = ptr(roundCents(*s.Min / HoursPerYear))
		s.MaxHourly = ptr(roundCents(*s.Max / HoursPerYear))
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr(v float64) *float64 { return &v }
