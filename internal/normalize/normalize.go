package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseCurrency converts a pt-BR currency cell into a float64. Strings
// carrying both separators treat "." as thousands and "," as the decimal
// point ("R$ 1.234,56" -> 1234.56); a lone "," is the decimal point.
// Empty or unparseable input yields 0.
func ParseCurrency(raw string) float64 {
	if raw == "" {
		return 0
	}
	clean := strings.TrimSpace(strings.ReplaceAll(raw, "R$", ""))
	switch {
	case strings.Contains(clean, ",") && strings.Contains(clean, "."):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case strings.Contains(clean, ","):
		clean = strings.Replace(clean, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseDate parses the date formats seen in the feeds: ISO "2006-01-02",
// "D/M/YYYY" (also "." or "-" separated, and "YYYY/M/D" when the first part
// has four digits), with an optional space-separated time component that is
// discarded. The result is always anchored at 12:00:00 local time so that
// later date-string bucketing cannot roll over a day under negative UTC
// offsets. ok is false for empty or unparseable input; callers must treat
// that as "absent", never substitute a sentinel date.
func ParseDate(raw string) (time.Time, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return time.Time{}, false
	}
	// Drop a trailing time component ("02/01/2024 15:04:05").
	if i := strings.IndexByte(clean, ' '); i > 0 {
		clean = clean[:i]
	}

	if isoDate.MatchString(clean) {
		year, _ := strconv.Atoi(clean[0:4])
		month, _ := strconv.Atoi(clean[5:7])
		day, _ := strconv.Atoi(clean[8:10])
		return atNoon(year, month, day)
	}

	if parts := strings.FieldsFunc(clean, isDateSep); len(parts) == 3 {
		p0, err0 := strconv.Atoi(parts[0])
		p1, err1 := strconv.Atoi(parts[1])
		p2, err2 := strconv.Atoi(parts[2])
		if err0 == nil && err1 == nil && err2 == nil {
			if len(parts[0]) == 4 {
				return atNoon(p0, p1, p2)
			}
			return atNoon(p2, p1, p0)
		}
	}

	// Last resort: a lenient RFC3339 parse, noon-anchored like the rest.
	if t, err := time.Parse(time.RFC3339, clean); err == nil {
		return atNoon(t.Year(), int(t.Month()), t.Day())
	}
	return time.Time{}, false
}

func isDateSep(r rune) bool {
	return r == '/' || r == '.' || r == '-'
}

func atNoon(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.Local), true
}

// UnitName returns the canonical form of a branch name used for map keys and
// equality checks. Empty input stays empty, which callers read as "no unit".
func UnitName(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Status returns the canonical form of a status cell.
func Status(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
