package reason

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var grouped = message.NewPrinter(language.English)

// FormatValue renders an original-scale value for display. Strings pass
// through unchanged. Magnitudes of a million or more collapse to whole
// millions ("5 juta", remainder dropped); a thousand or more render as a
// thousands-grouped integer; anything smaller keeps two decimals.
func FormatValue(v any) string {
	var f float64
	switch value := v.(type) {
	case string:
		return value
	case float64:
		f = value
	case float32:
		f = float64(value)
	case int:
		f = float64(value)
	case int64:
		f = float64(value)
	case bool:
		if value {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", v)
	}

	switch abs := math.Abs(f); {
	case abs >= 1_000_000:
		return fmt.Sprintf("%d juta", int64(f/1_000_000))
	case abs >= 1_000:
		return grouped.Sprintf("%d", int64(f))
	default:
		return fmt.Sprintf("%.2f", f)
	}
}
