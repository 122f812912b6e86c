package models

import (
	"encoding/json"
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// Timestamp returns t in UTC truncated to the precision Postgres keeps, so
// that a locally built record compares equal to its remote echo.
func Timestamp(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Microsecond)
}

// Today formats now as a calendar date.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// AgeFromBirthDate is the difference between the current year and the birth
// year. Birthdays later in the year are not taken into account.
func AgeFromBirthDate(birthDate string, now time.Time) int {
	if len(birthDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(birthDate[:4])
	if err != nil {
		return 0
	}
	age := now.Year() - year
	if age < 0 {
		return 0
	}
	return age
}
