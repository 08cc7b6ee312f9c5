// Package timezone resolves the floating timestamps returned by the Volkern
// scheduling API. The API emits slot times like "2026-02-20T09:00:00.000Z"
// where the trailing "Z" is a placeholder: the wall-clock reading means
// 09:00 in the tenant's configured business timezone, not 09:00 UTC.
package timezone

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// offsetSuffix matches a trailing UTC marker or numeric offset on an ISO
// timestamp ("Z", "+01:00", "-05:00").
var offsetSuffix = regexp.MustCompile(`(Z|[+-]\d{2}:\d{2})$`)

// naiveLayouts are the accepted forms of a timestamp once the offset marker
// has been stripped.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ResolveAbsoluteInstant anchors a floating ISO timestamp to the tenant's
// timezone and returns the absolute instant it denotes.
//
// The tenant offset is looked up at the naive reading interpreted as UTC,
// which is close enough to classify daylight saving in almost all cases.
// Within a few hours of a DST transition the lookup can land on the wrong
// side of the switch and pick the other offset; the upstream API gives no
// way to disambiguate, so that approximation is kept as is.
func ResolveAbsoluteInstant(floatingISO, tenantTimezone string) (time.Time, error) {
	loc, err := time.LoadLocation(tenantTimezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("timezone: load %q: %w", tenantTimezone, err)
	}

	naive := offsetSuffix.ReplaceAllString(strings.TrimSpace(floatingISO), "")
	approx, err := parseNaiveAsUTC(naive)
	if err != nil {
		return time.Time{}, fmt.Errorf("timezone: parse %q: %w", floatingISO, err)
	}

	// The offset the tenant zone observes around that calendar time.
	_, offsetSeconds := approx.In(loc).Zone()

	// Re-anchor: the naive reading is wall-clock time at that offset, so
	// the absolute instant sits offsetSeconds earlier than naive-as-UTC.
	return approx.Add(-time.Duration(offsetSeconds) * time.Second), nil
}

// FormatWallClock renders the instant as a 24-hour HH:MM wall-clock reading
// in the given timezone. Purely presentational.
func FormatWallClock(t time.Time, tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("timezone: load %q: %w", tz, err)
	}
	return t.In(loc).Format("15:04"), nil
}

func parseNaiveAsUTC(naive string) (time.Time, error) {
	var lastErr error
	for _, layout := range naiveLayouts {
		t, err := time.ParseInLocation(layout, naive, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
