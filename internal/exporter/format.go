package exporter

import (
	"strconv"
	"strings"
	"time"
)

const dateLayout = "02/01/2006"

// formatDate renders a date in the dd/mm/yyyy form used across the feeds.
// Zero dates render as an empty cell.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// formatCurrency renders a value in pt-BR currency notation: thousands
// separated by dots, decimals by a comma, e.g. 1234.5 -> "R$ 1.234,50".
func formatCurrency(v float64) string {
	return "R$ " + formatNumber(v)
}

// formatNumber renders a float with pt-BR separators and two decimals.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, decPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(decPart)
	return b.String()
}
