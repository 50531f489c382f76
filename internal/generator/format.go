package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// NotAvailable is shown for missing timestamps
const NotAvailable = "n/a"

// FormatTime renders a raw feed timestamp in UTC. Empty input gives "n/a",
// unparsable input is returned as is.
func FormatTime(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return NotAvailable
	}
	t, ok := parseTime(raw)
	if !ok {
		return raw
	}
	t = t.UTC()
	// hour is not zero-padded, time.Format has no verb for that
	return fmt.Sprintf("%d/%d/%d %d:%02d:%02d UTC", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// parseTime accepts anything dateparse understands, zone-less values are taken as UTC
func parseTime(raw string) (t time.Time, ok bool) {
	defer func() {
		// dateparse can panic on some malformed inputs
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseIn(strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
