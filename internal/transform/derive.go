package transform

import (
	"math"
	"time"
)

// DateLayout is the calendar format accepted for derived age features.
const DateLayout = "2006-01-02"

// AgeInYears converts a date string into an age feature: days elapsed until
// today divided by 365, rounded to two decimals. An unparseable or empty
// date yields 0.0 rather than an error; records without the date then carry
// a zero age, which is lossy but keeps them scoreable. Callers that want
// the fallback visible should log it (see Pipeline.applyDerivations).
func AgeInYears(date string) float64 {
	return ageInYearsAt(date, time.Now())
}

func ageInYearsAt(date string, now time.Time) float64 {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0.0
	}
	days := now.Sub(parsed).Hours() / 24
	return math.Round(days/365*100) / 100
}
