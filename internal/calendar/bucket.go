package calendar

import (
	"fmt"
	"time"

	"github.com/abhisek/goalpath/internal/model"
)

// BucketKey maps a date to the canonical key of the period containing it.
//
//   - Daily:   the date itself, "2024-01-10"
//   - Weekly:  the Monday starting its ISO week, "2024-01-08"
//   - Monthly: year and month, "2024-01"
//
// All keys are zero-padded. Once and unknown frequencies have no buckets
// and return "".
func BucketKey(d Date, freq model.Frequency) string {
	switch freq {
	case model.FrequencyDaily:
		return d.String()
	case model.FrequencyWeekly:
		return WeekStart(d).String()
	case model.FrequencyMonthly:
		return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
	default:
		return ""
	}
}

// PreviousAnchor returns a date inside the period before the one containing d.
// Monthly subtraction is calendar-aware (see Date.AddMonths). Once and
// unknown frequencies return d unchanged.
func PreviousAnchor(d Date, freq model.Frequency) Date {
	switch freq {
	case model.FrequencyDaily:
		return d.AddDays(-1)
	case model.FrequencyWeekly:
		return d.AddDays(-7)
	case model.FrequencyMonthly:
		return d.AddMonths(-1)
	default:
		return d
	}
}

// WeekStart returns the Monday of the ISO week containing d.
func WeekStart(d Date) Date {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday belongs to the week that started six days earlier.
	}
	return d.AddDays(-offset)
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b Date) bool {
	return a.Year == b.Year && a.Month == b.Month
}
