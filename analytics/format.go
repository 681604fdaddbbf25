package analytics

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatDuration renders seconds as "45s", "3m 20s" or "2h 5m".
func FormatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", int(math.Round(seconds)))
	}
	minutes := int(math.Floor(seconds / 60))
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, int(math.Round(math.Mod(seconds, 60))))
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// DAUMAURatio is daily over monthly active users as a percentage, or "N/A"
// without monthly activity.
func DAUMAURatio(s Summary) string {
	if s.MAU <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", float64(s.DAU)/float64(s.MAU)*100)
}

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}
