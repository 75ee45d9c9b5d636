package api

import (
	"fmt"
	"regexp"
	"time"
)

// dateRE matches the declared YYYY-MM-DD schema (§4.6: "regex-validated
// dates"). Calendar validity (no Feb 30) is then checked by time.Parse.
var dateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func parseDate(field, raw string) (time.Time, error) {
	if !dateRE.MatchString(raw) {
		return time.Time{}, fmt.Errorf("%s must match YYYY-MM-DD", field)
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s is not a valid calendar date", field)
	}
	return t, nil
}

func parseOptionalDate(field, raw string) (time.Time, bool, error) {
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := parseDate(field, raw)
	return t, true, err
}

// requireNonEmpty enforces the declared-schema requirement that a string
// field be present; ApiPlane never accepts a free-dict body, so every
// accepted field is named and validated explicitly like this one.
func requireNonEmpty(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v", field, allowed)
}
