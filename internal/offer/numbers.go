package offer

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber converts a loosely-typed extraction value into a float. It
// tolerates Polish-locale formatting with thousands separators and decimal
// commas ("1 234,56", "1.234,56") and numeric strings with currency suffixes
// ("1200 zł"). The return is nil, never zero or NaN, when the value cannot be
// parsed, so callers can distinguish "zero" from "unparseable".
func ParseNumber(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return finite(val)
	case float32:
		return finite(float64(val))
	case int:
		return finite(float64(val))
	case int64:
		return finite(float64(val))
	case string:
		return parseNumberString(val)
	default:
		return nil
	}
}

func parseNumberString(s string) *float64 {
	// Keep only digits, separators and the sign.
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return nil
	}

	// With a decimal comma present, every dot is a grouping separator.
	// Without one, only the last dot can be the decimal point.
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		if strings.Count(cleaned, ",") > 1 {
			return nil
		}
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else if n := strings.Count(cleaned, "."); n > 1 {
		last := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
