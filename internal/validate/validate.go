// Package validate converts untrusted model output into internally consistent
// invoice records, enforcing arithmetic and range invariants and computing
// per-row confidence scores. Row-level defects are absorbed here by dropping
// the row; only invoice-level problems surface as typed errors.
package validate

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/invoxhq/invox/internal/types"
)

const (
	// mathMismatchCeiling caps confidence for rows whose quantity*unit_price
	// diverges from total_price beyond the math tolerance. The row is kept,
	// only down-scored.
	mathMismatchCeiling = 0.6

	// Soft plausibility bounds. Values outside take a mild penalty, never
	// rejection: weighed goods and bulk orders legitimately sit outside.
	quantitySoftMin  = 0.01
	quantitySoftMax  = 1000
	unitPriceSoftMin = 0.01
	unitPriceSoftMax = 100000

	// invoiceTotalTolerance is the generous invoice-level divergence between
	// the row sum and the declared total before a warning is logged. Taxes,
	// discounts and rounding make a hard failure inappropriate.
	invoiceTotalTolerance = 0.20

	epsilon = 1e-9
)

// Params carries every tunable the validator needs. All state is explicit:
// the validator reads no ambient configuration.
type Params struct {
	// AllowedCurrencies is the closed set of acceptable currency codes,
	// upper-case. A document currency outside this set is a hard failure.
	AllowedCurrencies []string

	// Categories is the closed enumeration for category suggestions.
	// Values that match no member (case-insensitive) normalize to null.
	Categories []string

	// MathTolerance is the relative divergence allowed between
	// quantity*unit_price and total_price before the confidence ceiling
	// applies. Zero means "use the default" (0.05).
	MathTolerance float64

	Logger *slog.Logger
}

func (p Params) mathTolerance() float64 {
	if p.MathTolerance <= 0 {
		return 0.05
	}
	return p.MathTolerance
}

func (p Params) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// NormalizeAndValidate produces a fully normalized invoice from raw model
// output, or a typed failure. Partial results are never returned.
//
// Error taxonomy: *IntegrityError when the raw input had at least one row but
// none survived normalization; *CurrencyError when the document currency is
// not in the allowed set.
func NormalizeAndValidate(raw types.RawInvoice, p Params) (*types.Invoice, error) {
	logger := p.logger()

	currency, err := normalizeCurrency(raw.Currency, p.AllowedCurrencies)
	if err != nil {
		return nil, err
	}

	products := make([]types.Product, 0, len(raw.Products))
	dropped := 0
	for _, rp := range raw.Products {
		prod, ok := normalizeRow(rp, p.Categories)
		if !ok {
			dropped++
			continue
		}
		prod.ConfidenceScore = scoreRow(prod, p.mathTolerance())
		products = append(products, prod)
	}

	if dropped > 0 {
		logger.Warn("dropped malformed product rows", "dropped", dropped, "kept", len(products))
		if len(products) == 0 {
			return nil, &IntegrityError{DroppedRows: dropped}
		}
	}

	totalAmount, _ := toFloat(raw.TotalAmount)

	inv := &types.Invoice{
		Supplier:      optString(raw.Supplier),
		InvoiceNumber: optString(raw.InvoiceNumber),
		Date:          optString(raw.Date),
		TotalAmount:   totalAmount,
		Currency:      currency,
		Products:      products,
	}

	checkInvoiceTotal(inv, logger)
	logger.Info("extraction validated",
		"products", len(inv.Products),
		"dropped", dropped,
		"overall_confidence", overallConfidence(inv))

	return inv, nil
}

// normalizeRow applies field coercion and the row drop rules. A row is
// dropped, never raised on, when quantity or unit_price is absent or
// non-positive, or when total_price is present but negative. An absent
// total_price is recomputed from quantity*unit_price.
func normalizeRow(rp types.RawProduct, categories []string) (types.Product, bool) {
	quantity, qok := toFloat(rp.Quantity)
	unitPrice, uok := toFloat(rp.UnitPrice)
	if !qok || !uok || quantity <= 0 || unitPrice <= 0 {
		return types.Product{}, false
	}

	totalPrice, tok := toFloat(rp.TotalPrice)
	if tok && totalPrice < 0 {
		return types.Product{}, false
	}
	if !tok {
		totalPrice = quantity * unitPrice
	}

	name, _ := toString(rp.Name)

	prod := types.Product{
		Name:               name,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		TotalPrice:         totalPrice,
		CategorySuggestion: normalizeCategory(rp.CategorySuggestion, categories),
	}

	if code, ok := toString(rp.RawCode); ok {
		prod.RawCode = &code
	}

	if uom, ok := toString(rp.UOM); ok {
		upper := strings.ToUpper(uom)
		prod.UOM = &upper
	}

	// Model-supplied confidence is clamped on the way in, but the caller
	// recomputes the score from observable factors so revalidation stays
	// idempotent regardless of what the model claimed.
	if clamped := clampOptionalConfidence(rp.ConfidenceScore); clamped != nil {
		prod.ConfidenceScore = *clamped
	}

	return prod, true
}

// scoreRow computes the multi-factor confidence score in [0,1]. All factors
// are penalties <= 1, so a strictly worse row never scores higher than an
// otherwise identical cleaner one.
func scoreRow(prod types.Product, mathTolerance float64) float64 {
	score := 1.0

	relDiff := mathDivergence(prod)
	mathValid := relDiff <= mathTolerance
	if !mathValid {
		score *= math.Max(0, 1.0-relDiff*5.0)
	}

	if len(strings.TrimSpace(prod.Name)) < 3 {
		score *= 0.7
	}
	if prod.RawCode == nil {
		score *= 0.95
	}
	if prod.Quantity > quantitySoftMax || prod.Quantity < quantitySoftMin {
		score *= 0.8
	}
	if prod.UnitPrice > unitPriceSoftMax || prod.UnitPrice < unitPriceSoftMin {
		score *= 0.8
	}

	score = clamp01(score)
	if !mathValid && score > mathMismatchCeiling {
		score = mathMismatchCeiling
	}
	return score
}

// mathDivergence returns the relative difference between the expected line
// total and the extracted one.
func mathDivergence(prod types.Product) float64 {
	expected := prod.Quantity * prod.UnitPrice
	denom := math.Max(math.Max(expected, prod.TotalPrice), epsilon)
	return math.Abs(expected-prod.TotalPrice) / denom
}

func normalizeCurrency(v any, allowed []string) (string, error) {
	s, _ := toString(v)
	upper := strings.ToUpper(s)
	for _, a := range allowed {
		if upper == strings.ToUpper(a) {
			return upper, nil
		}
	}
	sorted := append([]string(nil), allowed...)
	sort.Strings(sorted)
	return "", &CurrencyError{Currency: s, Allowed: sorted}
}

// normalizeCategory maps a suggestion onto the configured enumeration,
// returning the canonical member. Comparison trims whitespace and ignores
// case; anything else becomes null.
func normalizeCategory(v any, categories []string) *string {
	s, ok := toString(v)
	if !ok {
		return nil
	}
	for _, c := range categories {
		if strings.EqualFold(s, c) {
			canonical := c
			return &canonical
		}
	}
	return nil
}

func clampOptionalConfidence(v any) *float64 {
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	clamped := clamp01(f)
	return &clamped
}

func optString(v any) *string {
	if s, ok := toString(v); ok {
		return &s
	}
	return nil
}

// checkInvoiceTotal compares the row sum against the declared invoice total.
// Divergence beyond the tolerance is logged, never fatal.
func checkInvoiceTotal(inv *types.Invoice, logger *slog.Logger) {
	if len(inv.Products) == 0 || inv.TotalAmount <= 0 {
		return
	}
	var sum float64
	for _, prod := range inv.Products {
		sum += prod.TotalPrice
	}
	if math.Abs(sum-inv.TotalAmount) > inv.TotalAmount*invoiceTotalTolerance {
		logger.Warn("row sum diverges from invoice total",
			"row_sum", sum,
			"total_amount", inv.TotalAmount,
			"tolerance", invoiceTotalTolerance)
	}
}

// overallConfidence is the average row confidence damped by missing
// document-level fields. Observability only.
func overallConfidence(inv *types.Invoice) float64 {
	if len(inv.Products) == 0 {
		return 1.0
	}
	var sum float64
	for _, prod := range inv.Products {
		sum += prod.ConfidenceScore
	}
	avg := sum / float64(len(inv.Products))

	completeness := 1.0
	if inv.Supplier == nil {
		completeness *= 0.95
	}
	if inv.InvoiceNumber == nil {
		completeness *= 0.95
	}
	if inv.Date == nil {
		completeness *= 0.90
	}
	return avg * completeness
}
