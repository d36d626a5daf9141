package medicine

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	maxNameLen         = 200
	maxManufacturerLen = 100
	maxBatchNumberLen  = 50
	maxLocationLen     = 200

	calendarDateLayout = "2006-01-02"
)

var calendarDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// clip trims surrounding whitespace and truncates to max runes.
// Oversize free-text fields are shortened, never rejected.
func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > max {
		return string(r[:max])
	}
	return s
}

// parseCalendarDate parses a strict YYYY-MM-DD date.
func parseCalendarDate(s string) (time.Time, error) {
	if !calendarDateRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("%w: date %q is not in YYYY-MM-DD format", ErrValidation, s)
	}
	t, err := time.Parse(calendarDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not a valid calendar date", ErrValidation, s)
	}
	return t, nil
}

// pastExpiry reports whether now falls strictly after the expiration
// date (a medicine remains claimable through its expiry day).
func pastExpiry(expirationDate string, now time.Time) (bool, error) {
	exp, err := parseCalendarDate(expirationDate)
	if err != nil {
		return false, err
	}
	today := now.UTC().Truncate(24 * time.Hour)
	return today.After(exp), nil
}

// requireFields returns a Validation error naming the first empty field.
func requireFields(fields map[string]string, order ...string) error {
	for _, name := range order {
		if strings.TrimSpace(fields[name]) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, name)
		}
	}
	return nil
}
