// Package pricing computes landed-cost pricing for extracted invoice rows and
// coordinates the preview/import flow against a product repository.
package pricing

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Margin tiers applied to the landed EUR cost. Fixed by the import flow's
// Excel-parity contract; changing them silently breaks reconciliation.
var (
	tier50  = decimal.NewFromFloat(1.5)
	tier70  = decimal.NewFromFloat(1.7)
	tier100 = decimal.NewFromFloat(2.0)
)

// Input validation failures, mapped to stable row error codes by ErrorCode.
var (
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidLineTotal     = errors.New("line total cannot be negative")
	ErrInvalidWeight        = errors.New("weight_kg must be positive")
	ErrInvalidFxRate        = errors.New("fx rate must be positive")
	ErrInvalidTransportRate = errors.New("transport rate must be positive")
	ErrNotFinite            = errors.New("input must be finite")
)

// Result holds the computed pricing for a single invoice row, rounded to four
// decimals.
type Result struct {
	BasePriceEUR decimal.Decimal `json:"base_price_eur"`
	TransportEUR decimal.Decimal `json:"transport_eur"`
	Price50      decimal.Decimal `json:"price_50"`
	Price70      decimal.Decimal `json:"price_70"`
	Price100     decimal.Decimal `json:"price_100"`
}

// Compute derives per-unit EUR pricing from a row's local-currency line total,
// quantity and weight.
//
//	base      = (lineTotal / quantity) / fxRate
//	transport = weightKg * transportRatePerKg
//	priceN    = (base + transport) * tierN
func Compute(lineTotal, quantity, weightKg, fxRate, transportRatePerKg float64) (Result, error) {
	for _, v := range []float64{lineTotal, quantity, weightKg, fxRate, transportRatePerKg} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Result{}, ErrNotFinite
		}
	}
	switch {
	case quantity <= 0:
		return Result{}, ErrInvalidQuantity
	case lineTotal < 0:
		return Result{}, ErrInvalidLineTotal
	case weightKg <= 0:
		return Result{}, ErrInvalidWeight
	case fxRate <= 0:
		return Result{}, ErrInvalidFxRate
	case transportRatePerKg <= 0:
		return Result{}, ErrInvalidTransportRate
	}

	base := decimal.NewFromFloat(lineTotal).
		Div(decimal.NewFromFloat(quantity)).
		Div(decimal.NewFromFloat(fxRate))
	transport := decimal.NewFromFloat(weightKg).Mul(decimal.NewFromFloat(transportRatePerKg))
	landed := base.Add(transport)

	return Result{
		BasePriceEUR: base.Round(4),
		TransportEUR: transport.Round(4),
		Price50:      landed.Mul(tier50).Round(4),
		Price70:      landed.Mul(tier70).Round(4),
		Price100:     landed.Mul(tier100).Round(4),
	}, nil
}

// ErrorCode maps a Compute failure to a stable, client-visible row code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return "INVALID_QUANTITY"
	case errors.Is(err, ErrInvalidLineTotal):
		return "INVALID_LINE_TOTAL"
	case errors.Is(err, ErrInvalidWeight):
		return "INVALID_WEIGHT"
	case errors.Is(err, ErrInvalidFxRate):
		return "INVALID_FX_RATE"
	case errors.Is(err, ErrInvalidTransportRate):
		return "INVALID_TRANSPORT_RATE"
	default:
		return "COMPUTATION_ERROR"
	}
}
