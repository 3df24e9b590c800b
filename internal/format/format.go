package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// FormatGB formats a memory amount in GB with exactly two decimal places.
// Negative values are shown as-is: they flag an inconsistent report.
func FormatGB(gb float64) string {
	return fmt.Sprintf("%.2f", gb)
}

// FormatNumber formats an integer with locale-style comma separators.
// Example: 12345678 → "12,345,678".
// Uses strconv.FormatInt directly to avoid abs64 overflow for math.MinInt64.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		// s starts with "-"; strip it, insert commas, restore sign.
		return "-" + insertCommas(s[1:])
	}
	return insertCommas(s)
}

// FormatPercent formats part/whole as a percentage with one decimal place.
// A zero whole yields "---".
func FormatPercent(part, whole int) string {
	if whole == 0 {
		return "---"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(whole))
}

// FormatDuration formats an interval compactly, e.g. "45s", "2m" or "1m30s".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Round(time.Second).Seconds()))
	}
	m := int(d / time.Minute)
	s := int((d % time.Minute).Round(time.Second).Seconds())
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm%ds", m, s)
}

// PadRight left-justifies s in a field of width terminal cells. Values
// wider than the field are kept whole, like a %-Ns verb.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Truncate cuts s to at most width terminal cells.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "")
}

// insertCommas inserts comma separators into a digit string every 3 digits from the right.
func insertCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var buf strings.Builder
	lead := n % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
