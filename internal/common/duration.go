package common

import (
	"fmt"
	"strings"
	"time"

	iso8601 "github.com/senseyeio/duration"
)

// ParseDuration accepts Go duration strings ("15s") and ISO 8601
// durations ("PT15S").
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)

	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed, nil
	}

	isoDuration, err := iso8601.ParseISO8601(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format: %s. Expect ISO 8601 or duration string", value)
	}

	referenceTime := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	return isoDuration.Shift(referenceTime).Sub(referenceTime), nil
}

// FormatDurationRemaining renders d as "1 day, 2 hours, 3 minutes".
// Seconds are only shown for durations under an hour.
func FormatDurationRemaining(d time.Duration) string {
	if d <= 0 {
		return "0 seconds"
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	parts = appendUnit(parts, days, "day")
	parts = appendUnit(parts, hours, "hour")
	parts = appendUnit(parts, minutes, "minute")
	if d < time.Hour {
		parts = appendUnit(parts, seconds, "second")
	}

	if len(parts) == 0 {
		return "less than a second"
	}
	return strings.Join(parts, ", ")
}

func appendUnit(parts []string, value int, unit string) []string {
	switch {
	case value == 1:
		return append(parts, "1 "+unit)
	case value > 1:
		return append(parts, fmt.Sprintf("%d %ss", value, unit))
	}
	return parts
}

// FormatExpiry describes when expiry happens relative to now.
func FormatExpiry(expiry time.Time, now time.Time) string {
	if expiry.IsZero() {
		return "no expiry"
	}
	remaining := expiry.Sub(now)
	if remaining <= 0 {
		return fmt.Sprintf("expired %s ago", FormatDurationRemaining(-remaining))
	}
	return fmt.Sprintf("expires in %s", FormatDurationRemaining(remaining))
}
