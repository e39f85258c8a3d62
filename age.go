package main

import (
	"fmt"
	"time"
)

// DaysInMonth returns the number of days in the given month (1-12) of the given year
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 31
	}
	// Day 0 of the next month is the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay coerces the day into the valid range for the date's month and year
func ClampDay(dob DateOfBirth) DateOfBirth {
	maxDays := DaysInMonth(dob.Year, dob.Month)
	if dob.Day > maxDays {
		dob.Day = maxDays
	}
	if dob.Day < 1 {
		dob.Day = 1
	}
	return dob
}

// CalculateAge returns the number of complete years between dob and today, never negative
func CalculateAge(dob DateOfBirth, today time.Time) int {
	age := today.Year() - dob.Year
	month := int(today.Month())
	if month < dob.Month || (month == dob.Month && today.Day() < dob.Day) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// DOBPatch is a partial date of birth edit; nil fields are left unchanged
type DOBPatch struct {
	Day   *int `json:"day,omitempty"`
	Month *int `json:"month,omitempty"`
	Year  *int `json:"year,omitempty"`
}

// UpdateDOB applies a date of birth edit, clamps the day and recalculates the age.
// An out-of-range month or year, or a day outside 1-31, is rejected and nothing changes.
func (c *CustomerInfo) UpdateDOB(patch DOBPatch, today time.Time) error {
	dob := c.DOB
	if patch.Day != nil {
		dob.Day = *patch.Day
	}
	if patch.Month != nil {
		dob.Month = *patch.Month
	}
	if patch.Year != nil {
		dob.Year = *patch.Year
	}
	if dob.Day < 1 || dob.Day > 31 {
		return ValidationError{Field: "dob.day", Message: fmt.Sprintf("Day must be between 1 and 31 (got %d)", dob.Day)}
	}
	dob = ClampDay(dob)
	if err := validateDOB(dob.Day, dob.Month, dob.Year, today.Year()); err != nil {
		return err
	}
	c.DOB = dob
	c.Age = CalculateAge(c.DOB, today)
	return nil
}

// RefreshAge recalculates the age against today without changing the date of birth
func (c *CustomerInfo) RefreshAge(today time.Time) {
	c.DOB = ClampDay(c.DOB)
	c.Age = CalculateAge(c.DOB, today)
}

// validateDOB checks a date of birth entered as separate fields
func validateDOB(day, month, year, currentYear int) error {
	if month < 1 || month > 12 {
		return ValidationError{Field: "dob.month", Message: fmt.Sprintf("Month must be between 1 and 12 (got %d)", month)}
	}
	if year < 1900 || year > currentYear {
		return ValidationError{Field: "dob.year", Message: fmt.Sprintf("Year must be between 1900 and %d (got %d)", currentYear, year)}
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return ValidationError{Field: "dob.day", Message: fmt.Sprintf("Day must be between 1 and %d (got %d)", DaysInMonth(year, month), day)}
	}
	return nil
}
