// Package enrich adds derived metadata to validated invoice rows: parsed
// weight candidates from product names, KG-row normalization, and stable row
// identifiers.
package enrich

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	weightPattern    = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*(kg|g|ml|l)\b`)
	multipackPattern = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*[x]\s*(\d+(?:[.,]\d+)?)\s*(kg|g|ml|l)\b`)
)

// WeightParse holds the parsed size details from a product name.
type WeightParse struct {
	WeightKg        *float64
	SizeToken       *string
	ParseConfidence *float64
}

// ParseWeight extracts the first supported size token from a product name and
// converts it to kilograms. Multipacks ("4x100G") take precedence over plain
// tokens. Liquids assume 1kg/L density.
func ParseWeight(productName string) WeightParse {
	if m := multipackPattern.FindStringSubmatch(productName); m != nil {
		packs, err1 := parseDecimal(m[1])
		unitValue, err2 := parseDecimal(m[2])
		if err1 != nil || err2 != nil {
			return WeightParse{}
		}
		total := packs * unitValue
		if !isPositiveFinite(total) {
			return WeightParse{}
		}
		return weightResult(total, m[3], m[0])
	}

	m := weightPattern.FindStringSubmatch(productName)
	if m == nil {
		return WeightParse{}
	}
	value, err := parseDecimal(m[1])
	if err != nil || !isPositiveFinite(value) {
		return WeightParse{}
	}
	return weightResult(value, m[2], m[0])
}

func weightResult(value float64, unit, token string) WeightParse {
	var kg float64
	switch strings.ToLower(unit) {
	case "kg", "l":
		kg = value
	default: // g, ml
		kg = value / 1000.0
	}

	normalizedToken := strings.ToUpper(strings.ReplaceAll(token, " ", ""))
	confidence := 0.98
	return WeightParse{
		WeightKg:        &kg,
		SizeToken:       &normalizedToken,
		ParseConfidence: &confidence,
	}
}

func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func isPositiveFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
