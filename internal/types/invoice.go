// Package types provides shared value types used across multiple packages.
// This package has no dependencies on other invox packages to avoid import cycles.
package types

// PositionedToken is a unit of extracted text with coordinates on a source page.
// X is the horizontal offset of the token's left edge, Top the vertical offset
// of its upper edge, both in source coordinate units (PDF points).
type PositionedToken struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Top  float64 `json:"top"`
}

// RawProduct is a single line item as returned by the model.
// Every field is untyped because model output is never trusted: numbers may
// arrive as strings, strings as numbers, and any field may be missing.
type RawProduct struct {
	RawCode            any `json:"raw_code"`
	Name               any `json:"name"`
	Quantity           any `json:"quantity"`
	UnitPrice          any `json:"unit_price"`
	TotalPrice         any `json:"total_price"`
	UOM                any `json:"uom"`
	CategorySuggestion any `json:"category_suggestion"`
	ConfidenceScore    any `json:"confidence_score"`
}

// RawInvoice is the loosely-typed document-level payload from the model.
type RawInvoice struct {
	Supplier      any          `json:"supplier"`
	InvoiceNumber any          `json:"invoice_number"`
	Date          any          `json:"date"`
	TotalAmount   any          `json:"total_amount"`
	Currency      any          `json:"currency"`
	Products      []RawProduct `json:"products"`
}

// Product is a validated invoice line item. Constructed only by the validate
// package; Quantity and UnitPrice are strictly positive for every instance.
type Product struct {
	RawCode            *string  `json:"raw_code"`
	Name               string   `json:"name"`
	Quantity           float64  `json:"quantity"`
	UnitPrice          float64  `json:"unit_price"`
	TotalPrice         float64  `json:"total_price"`
	UOM                *string  `json:"uom"`
	CategorySuggestion *string  `json:"category_suggestion"`
	ConfidenceScore    float64  `json:"confidence_score"`
	RowID              string   `json:"row_id,omitempty"`
	WeightKgCandidate  *float64 `json:"weight_kg_candidate"`
	SizeToken          *string  `json:"size_token"`
	ParseConfidence    *float64 `json:"parse_confidence"`
}

// Invoice is a fully normalized extraction result.
type Invoice struct {
	Supplier      *string   `json:"supplier"`
	InvoiceNumber *string   `json:"invoice_number"`
	Date          *string   `json:"date"`
	TotalAmount   float64   `json:"total_amount"`
	Currency      string    `json:"currency"`
	Products      []Product `json:"products"`
}

// CacheStatus reports how the extraction cache participated in a pipeline run.
type CacheStatus string

const (
	CacheHit  CacheStatus = "hit"
	CacheMiss CacheStatus = "miss"
	CacheOff  CacheStatus = "off"
)
