package health

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/health-cli/internal/model"
)

var printer = message.NewPrinter(language.English)

// FormatMRR renders MRR compactly: "$12.3k" from one thousand up, "$850" below.
func FormatMRR(mrr float64) string {
	if mrr >= 1000 {
		return fmt.Sprintf("$%.1fk", mrr/1000)
	}
	return fmt.Sprintf("$%s", trimFloat(mrr))
}

// FormatCurrency renders a dollar amount with thousands separators.
func FormatCurrency(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatTrendDelta renders a signed one-decimal trend, "+2.5" or "-1.0".
func FormatTrendDelta(delta float64) string {
	if delta > 0 {
		return fmt.Sprintf("+%.1f", delta)
	}
	return fmt.Sprintf("%.1f", delta)
}

// FormatRenewal renders the time until renewal: "—" for none, "Expired", "Today",
// "1 day", days up to a month, weeks up to a quarter, then months.
func FormatRenewal(d *model.Date, now time.Time) string {
	if d == nil {
		return "—"
	}
	days := DaysUntil(*d, now)
	switch {
	case days < 0:
		return "Expired"
	case days == 0:
		return "Today"
	case days == 1:
		return "1 day"
	case days <= 30:
		return fmt.Sprintf("%dd", days)
	case days <= 90:
		return fmt.Sprintf("%dw", int(math.Ceil(float64(days)/7)))
	default:
		return fmt.Sprintf("%dmo", int(math.Ceil(float64(days)/30)))
	}
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
