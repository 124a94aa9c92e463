package expiry

import (
	"fmt"
	"strings"
	"time"

	appErrors "github.com/pradiptars/clan-storage-bot/pkg/errors"
)

// dateFormats are tried in this fixed order; the first match wins.
var dateFormats = []string{
	"2006-01-02", // 2024-01-15
	"02/01/2006", // 15/01/2024
	"02-01-2006", // 15-01-2024
	"2006/01/02", // 2024/01/15
	"02.01.2006", // 15.01.2024
	"02 01 2006", // 15 01 2024
}

// ParseDateInput parses a user-supplied creation date. The time-of-day
// component is filled from now rather than zeroed, and the result carries
// now's location. Calendar dates after today (in now's location) are
// rejected.
func ParseDateInput(raw string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, appErrors.New(appErrors.ErrInvalidDate.Code, "date input is empty")
	}

	var parsed time.Time
	matched := false
	for _, layout := range dateFormats {
		if p, err := time.ParseInLocation(layout, trimmed, now.Location()); err == nil {
			parsed = p
			matched = true
			break
		}
	}

	if !matched {
		return time.Time{}, appErrors.New(appErrors.ErrInvalidDate.Code, fmt.Sprintf("unrecognized date format: %q", trimmed))
	}

	result := time.Date(
		parsed.Year(), parsed.Month(), parsed.Day(),
		now.Hour(), now.Minute(), now.Second(), 0,
		now.Location(),
	)

	ry, rm, rd := result.Date()
	ny, nm, nd := now.Date()
	resultDay := time.Date(ry, rm, rd, 0, 0, 0, 0, now.Location())
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, now.Location())
	if resultDay.After(today) {
		return time.Time{}, appErrors.New(appErrors.ErrFutureDate.Code, fmt.Sprintf("creation date %s is in the future", result.Format("2006-01-02")))
	}

	return result, nil
}
