package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSalary(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantMin  float64
		wantMax  float64
		wantType string
		empty    bool
	}{
		{name: "hourly range with unit", raw: "$32.50 - $45.00 per hour", wantMin: 32.50, wantMax: 45.00, wantType: SalaryHourly},
		{name: "annual range with unit", raw: "$68,000 to $82,000 annually", wantMin: 68000, wantMax: 82000, wantType: SalaryAnnual},
		{name: "single hourly figure", raw: "$38/hr", wantMin: 38, wantMax: 38, wantType: SalaryHourly},
		{name: "no unit small magnitude is hourly", raw: "42.00 - 55.00", wantMin: 42, wantMax: 55, wantType: SalaryHourly},
		{name: "no unit large magnitude is annual", raw: "$75,000 - $90,000", wantMin: 75000, wantMax: 90000, wantType: SalaryAnnual},
		{name: "empty", raw: "", empty: true},
		{name: "no figures", raw: "Competitive pay", empty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSalary(tt.raw)
			if tt.empty {
				assert.Nil(t, got.Min)
				assert.Nil(t, got.Max)
				assert.Empty(t, got.Type)
				return
			}
			require.NotNil(t, got.Min)
			require.NotNil(t, got.Max)
			assert.Equal(t, tt.wantMin, *got.Min)
			assert.Equal(t, tt.wantMax, *got.Max)
			assert.Equal(t, tt.wantType, got.Type)
		})
	}
}

func TestSalary_DeriveHourlyToAnnual(t *testing.T) {
	s := NewSalary(40, 50, SalaryHourly)

	require.NotNil(t, s.MinAnnual)
	require.NotNil(t, s.MaxAnnual)
	assert.Equal(t, float64(40*HoursPerYear), *s.MinAnnual)
	assert.Equal(t, float64(50*HoursPerYear), *s.MaxAnnual)
	assert.Equal(t, 40.0, *s.MinHourly)
	assert.Equal(t, 50.0, *s.MaxHourly)
}

func TestSalary_DeriveAnnualToHourly(t *testing.T) {
	s := NewSalary(83200, 104000, SalaryAnnual)

	require.NotNil(t, s.MinHourly)
	require.NotNil(t, s.MaxHourly)
	assert.Equal(t, 40.0, *s.MinHourly)
	assert.Equal(t, 50.0, *s.MaxHourly)
}

func TestSalary_HourlyAnnualRoundTrip(t *testing.T) {
	// Hourly → annual → hourly is exact for cent-precision rates.
	for _, rate := range []float64{22.75, 35.00, 48.33, 61.50} {
		annual := NewSalary(rate, rate, SalaryHourly)
		back := NewSalary(*annual.MinAnnual, *annual.MaxAnnual, SalaryAnnual)
		assert.InDelta(t, rate, *back.MinHourly, 0.01, "rate %.2f did not survive the round trip", rate)
	}
}
