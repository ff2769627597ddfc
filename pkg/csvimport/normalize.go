package csvimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

// directDateLayouts are tried before the month-first regex fallbacks.
var directDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	isoDateLayout,
	"01/02/2006",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/06",
	"01-02-06",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// dateFallbacks hold submatch positions for year, month and day.
var dateFallbacks = []struct {
	re               *regexp.Regexp
	year, month, day int
}{
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), 3, 1, 2},
	{regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), 1, 2, 3},
	{regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), 3, 1, 2},
}

// NormalizeDate converts raw into YYYY-MM-DD.
// Values that cannot be interpreted are returned unchanged.
func NormalizeDate(raw string) string {
	value := strings.TrimSpace(raw)
	for _, layout := range directDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(isoDateLayout)
		}
	}

	for _, fb := range dateFallbacks {
		m := fb.re.FindStringSubmatch(value)
		if m == nil {
			continue
		}
		candidate := m[fb.year] + "-" + padTwo(m[fb.month]) + "-" + padTwo(m[fb.day])
		if t, err := time.Parse(isoDateLayout, candidate); err == nil {
			return t.Format(isoDateLayout)
		}
		break
	}

	return raw
}

var nonClockRe = regexp.MustCompile(`[^0-9:]`)

// NormalizeTime converts raw into zero-padded 24-hour HH:MM.
// When no hour/minute pair can be split out, the digits-and-colons residue
// is returned. A "pm" marker moves hours below 12 into the afternoon;
// "am" is not interpreted, so "12am" stays "12".
func NormalizeTime(raw string) string {
	stripped := nonClockRe.ReplaceAllString(raw, "")
	parts := strings.Split(stripped, ":")
	if len(parts) < 2 {
		return stripped
	}

	hour := padTwo(parts[0])
	minute := padTwo(parts[1])

	if strings.Contains(strings.ToLower(raw), "pm") {
		if h, err := strconv.Atoi(hour); err == nil && h < 12 {
			hour = fmt.Sprintf("%02d", h+12)
		}
	}

	return hour + ":" + minute
}

func padTwo(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}

// IsISODate reports whether s is a valid calendar date in YYYY-MM-DD form.
func IsISODate(s string) bool {
	_, err := time.Parse(isoDateLayout, s)
	return err == nil
}

// IsClockTime reports whether s is a valid 24-hour HH:MM time.
func IsClockTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
