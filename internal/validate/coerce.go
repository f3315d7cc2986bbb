package validate

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// toFloat converts an untrusted model value to a float64. Strings tolerate
// thousands spaces and decimal commas ("1 234,56"). NaN and infinities count
// as absent, as does anything that is not a number at all.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case float32:
		return toFloat(float64(t))
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return toFloat(f)
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(t), " ", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return toFloat(f)
	default:
		return 0, false
	}
}

// toString converts an untrusted model value to a trimmed string.
// Numbers are stringified; empty results count as absent.
func toString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return strings.TrimSpace(t.String()), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// clamp01 bounds v to [0, 1].
func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
