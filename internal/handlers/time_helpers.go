package handlers

import (
	"time"

	"github.com/BruksfildServices01/storefront/internal/timezone"
)

// parseDateIn reads a YYYY-MM-DD filter as midnight in the store timezone.
func parseDateIn(tz, dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		timezone.Location(tz),
	)
}

// dateRange turns optional from/to dates into an inclusive day range,
// returned in UTC to match stored timestamps.
func dateRange(tz, fromStr, toStr string) (from, to *time.Time) {
	if fromStr != "" {
		if t, err := parseDateIn(tz, fromStr); err == nil {
			t = t.UTC()
			from = &t
		}
	}
	if toStr != "" {
		if t, err := parseDateIn(tz, toStr); err == nil {
			end := t.AddDate(0, 0, 1).UTC()
			to = &end
		}
	}
	return from, to
}
