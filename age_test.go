package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
}

func TestCalculateAge(t *testing.T) {
	dob := DateOfBirth{Day: 15, Month: 6, Year: 1990}

	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"before birthday", date(2024, time.January, 1), 33},
		{"day before birthday", date(2024, time.June, 14), 33},
		{"on birthday", date(2024, time.June, 15), 34},
		{"after birthday", date(2024, time.December, 31), 34},
		{"birth year", date(1990, time.June, 15), 0},
		{"before birth", date(1989, time.January, 1), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculateAge(dob, tc.today))
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year, month, want int
	}{
		{2024, 2, 29},
		{2023, 2, 28},
		{1900, 2, 28},
		{2000, 2, 29},
		{2024, 4, 30},
		{2024, 12, 31},
		{2024, 13, 31},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DaysInMonth(tc.year, tc.month), "%d-%02d", tc.year, tc.month)
	}
}

func TestClampDay(t *testing.T) {
	assert.Equal(t, DateOfBirth{Day: 28, Month: 2, Year: 2023}, ClampDay(DateOfBirth{Day: 31, Month: 2, Year: 2023}))
	assert.Equal(t, DateOfBirth{Day: 30, Month: 4, Year: 2024}, ClampDay(DateOfBirth{Day: 31, Month: 4, Year: 2024}))
	assert.Equal(t, DateOfBirth{Day: 1, Month: 5, Year: 2024}, ClampDay(DateOfBirth{Day: 0, Month: 5, Year: 2024}))
}

func TestClampDay_Idempotent(t *testing.T) {
	tests := []DateOfBirth{
		{Day: 31, Month: 2, Year: 2023},
		{Day: 30, Month: 2, Year: 2024},
		{Day: 31, Month: 11, Year: 1990},
		{Day: 0, Month: 7, Year: 1990},
		{Day: -5, Month: 1, Year: 1990},
		{Day: 99, Month: 12, Year: 1990},
		{Day: 15, Month: 6, Year: 1990},
	}
	for _, dob := range tests {
		once := ClampDay(dob)
		assert.Equal(t, once, ClampDay(once), "ClampDay(%v)", dob)
		assert.GreaterOrEqual(t, once.Day, 1)
		assert.LessOrEqual(t, once.Day, DaysInMonth(once.Year, once.Month))
	}
}

func TestCustomerUpdateDOB(t *testing.T) {
	today := date(2024, time.January, 1)
	c := CustomerInfo{DOB: DateOfBirth{Day: 29, Month: 2, Year: 2000}}

	// Leap day survives until the year changes to a common year
	c.RefreshAge(today)
	assert.Equal(t, 29, c.DOB.Day)
	assert.Equal(t, 23, c.Age)

	year := 2001
	require.NoError(t, c.UpdateDOB(DOBPatch{Year: &year}, today))
	assert.Equal(t, DateOfBirth{Day: 28, Month: 2, Year: 2001}, c.DOB)
	assert.Equal(t, 22, c.Age)

	day, month := 15, 6
	require.NoError(t, c.UpdateDOB(DOBPatch{Day: &day, Month: &month}, today))
	assert.Equal(t, DateOfBirth{Day: 15, Month: 6, Year: 2001}, c.DOB)
	assert.Equal(t, 22, c.Age)
}

func TestCustomerUpdateDOB_RejectsOutOfRange(t *testing.T) {
	today := date(2024, time.January, 1)
	intp := func(v int) *int { return &v }

	tests := []struct {
		name  string
		patch DOBPatch
		field string
	}{
		{"month 13", DOBPatch{Day: intp(15), Month: intp(13), Year: intp(1990)}, "dob.month"},
		{"month zero", DOBPatch{Month: intp(0)}, "dob.month"},
		{"day zero", DOBPatch{Day: intp(0)}, "dob.day"},
		{"day 32", DOBPatch{Day: intp(32)}, "dob.day"},
		{"future year", DOBPatch{Year: intp(2030)}, "dob.year"},
		{"ancient year", DOBPatch{Year: intp(1800)}, "dob.year"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := CustomerInfo{DOB: DateOfBirth{Day: 15, Month: 6, Year: 1990}}
			c.RefreshAge(today)
			before := c

			err := c.UpdateDOB(tc.patch, today)
			var verr ValidationError
			if assert.ErrorAs(t, err, &verr) {
				assert.Equal(t, tc.field, verr.Field)
			}
			assert.Equal(t, before, c)
		})
	}
}

func TestValidateDOB(t *testing.T) {
	assert.NoError(t, validateDOB(29, 2, 2024, 2024))

	tests := []struct {
		name             string
		day, month, year int
		field            string
	}{
		{"month too high", 1, 13, 1990, "dob.month"},
		{"month zero", 1, 0, 1990, "dob.month"},
		{"future year", 1, 1, 2025, "dob.year"},
		{"ancient year", 1, 1, 1899, "dob.year"},
		{"no leap day", 29, 2, 2023, "dob.day"},
		{"day zero", 0, 3, 1990, "dob.day"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateDOB(tc.day, tc.month, tc.year, 2024)
			var verr ValidationError
			if assert.ErrorAs(t, err, &verr) {
				assert.Equal(t, tc.field, verr.Field)
			}
		})
	}
}
