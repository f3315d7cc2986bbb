package pricing

import (
	"log/slog"
	"regexp"
	"time"
)

var liquidHintPattern = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*(l|ml)\b`)

// Row is one invoice line submitted for preview or import.
type Row struct {
	RowID     string   `json:"row_id"`
	Name      string   `json:"name"`
	Barcode   string   `json:"barcode,omitempty"`
	Quantity  float64  `json:"quantity"`
	LineTotal float64  `json:"line_total"`
	WeightKg  *float64 `json:"weight_kg"`
}

// Meta carries the document-level fields the import flow attributes rows to.
type Meta struct {
	Supplier      string `json:"supplier,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
}

// Constants reports the pricing constants in effect, echoed to clients so
// previews are reproducible.
type Constants struct {
	FxLeiToEUR         float64 `json:"fx_lei_to_eur"`
	TransportRatePerKg float64 `json:"transport_rate_per_kg"`
}

// RowStatus classifies the outcome for a single row.
type RowStatus string

const (
	RowOK         RowStatus = "ok"
	RowNeedsInput RowStatus = "needs_input"
	RowError      RowStatus = "error"
)

// MatchCandidate points at an existing product a row would update.
type MatchCandidate struct {
	Strategy  string `json:"strategy"`
	ProductID string `json:"product_id"`
}

// RowResult is the outcome for one previewed or imported row.
type RowResult struct {
	RowID           string          `json:"row_id"`
	Status          RowStatus       `json:"status"`
	Messages        []string        `json:"messages"`
	Warnings        []string        `json:"warnings"`
	Computed        *Result         `json:"computed,omitempty"`
	MatchCandidate  *MatchCandidate `json:"match_candidate,omitempty"`
	Action          string          `json:"action,omitempty"`
	ProductID       string          `json:"product_id,omitempty"`
	StockMovementID string          `json:"stock_movement_id,omitempty"`
}

// Summary aggregates row outcomes.
type Summary struct {
	OKCount         int `json:"ok_count"`
	NeedsInputCount int `json:"needs_input_count"`
	ErrorCount      int `json:"error_count"`
	CreatedCount    int `json:"created_count,omitempty"`
	UpdatedCount    int `json:"updated_count,omitempty"`
	StockInCount    int `json:"stock_in_count,omitempty"`
}

// PreviewResponse is the full preview-pricing payload.
type PreviewResponse struct {
	PricingConstants Constants   `json:"pricing_constants"`
	Rows             []RowResult `json:"rows"`
	Summary          Summary     `json:"summary"`
}

// ImportResponse is the import write-path payload.
type ImportResponse struct {
	ImportID     string      `json:"import_id"`
	ImportStatus string      `json:"import_status"`
	Rows         []RowResult `json:"rows"`
	Summary      Summary     `json:"summary"`
}

// Service coordinates preview pricing and the import write path.
type Service struct {
	fxLeiToEUR         float64
	transportRatePerKg float64
	repo               Repository
	logger             *slog.Logger

	now func() time.Time
}

// NewService creates a pricing service. repo may be nil, in which case match
// lookups resolve to "no match" and imports create nothing.
func NewService(fxLeiToEUR, transportRatePerKg float64, repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fxLeiToEUR:         fxLeiToEUR,
		transportRatePerKg: transportRatePerKg,
		repo:               repo,
		logger:             logger,
		now:                time.Now,
	}
}

// Constants returns the pricing constants in effect.
func (s *Service) Constants() Constants {
	return Constants{FxLeiToEUR: s.fxLeiToEUR, TransportRatePerKg: s.transportRatePerKg}
}

// Preview computes pricing for every row without writing anything.
// Rows missing a weight come back as needs_input; computation failures come
// back as per-row errors. The preview itself never fails.
func (s *Service) Preview(rows []Row) PreviewResponse {
	results := make([]RowResult, 0, len(rows))
	var summary Summary

	for _, row := range rows {
		res := s.priceRow(row)
		if res.Status == RowOK {
			if match, code := s.findMatch(row.Barcode, row.Name); code != "" {
				res.Status = RowError
				res.Messages = append(res.Messages, code)
			} else if match != nil {
				res.MatchCandidate = match
			}
		}
		switch res.Status {
		case RowOK:
			summary.OKCount++
		case RowNeedsInput:
			summary.NeedsInputCount++
		case RowError:
			summary.ErrorCount++
		}
		results = append(results, res)
	}

	return PreviewResponse{
		PricingConstants: s.Constants(),
		Rows:             results,
		Summary:          summary,
	}
}

// Import executes the write path: price, match, upsert, record stock-in.
// Row failures never abort the batch; the response classifies the overall
// outcome as completed, partial_failed or failed.
func (s *Service) Import(meta Meta, rows []Row) ImportResponse {
	results := make([]RowResult, 0, len(rows))
	var summary Summary

	for _, row := range rows {
		res := s.priceRow(row)
		if res.Status != RowOK {
			// The write path has no "come back later": a missing weight is an error.
			res.Status = RowError
			summary.ErrorCount++
			results = append(results, res)
			continue
		}

		match, code := s.findMatch(row.Barcode, row.Name)
		if code != "" {
			res.Status = RowError
			res.Messages = append(res.Messages, code)
			summary.ErrorCount++
			results = append(results, res)
			continue
		}

		if s.repo != nil {
			upsert := UpsertProduct{
				Name:     row.Name,
				Barcode:  row.Barcode,
				Supplier: meta.Supplier,
				Price:    res.Computed.BasePriceEUR.InexactFloat64(),
				Price50:  res.Computed.Price50.InexactFloat64(),
				Price70:  res.Computed.Price70.InexactFloat64(),
				Price100: res.Computed.Price100.InexactFloat64(),
				Markup:   70,
			}

			if match == nil {
				rec := s.repo.CreateProduct(upsert)
				res.Action = "created"
				res.ProductID = rec.ProductID
				summary.CreatedCount++
			} else {
				rec, err := s.repo.UpdateProduct(match.ProductID, upsert)
				if err != nil {
					res.Status = RowError
					res.Messages = append(res.Messages, "COMPUTATION_ERROR")
					summary.ErrorCount++
					results = append(results, res)
					continue
				}
				res.Action = "updated"
				res.ProductID = rec.ProductID
				summary.UpdatedCount++
			}

			res.StockMovementID = s.repo.AddStockMovementIn(
				res.ProductID, row.Quantity, "invoice_import", meta.InvoiceNumber)
			summary.StockInCount++
		}

		summary.OKCount++
		results = append(results, res)
	}

	status := "completed"
	switch {
	case len(results) > 0 && summary.ErrorCount == len(results):
		status = "failed"
	case summary.ErrorCount > 0:
		status = "partial_failed"
	}

	return ImportResponse{
		ImportID:     "imp_" + s.now().UTC().Format("20060102_150405"),
		ImportStatus: status,
		Rows:         results,
		Summary:      summary,
	}
}

// priceRow computes pricing for a single row and classifies the result.
func (s *Service) priceRow(row Row) RowResult {
	res := RowResult{
		RowID:    row.RowID,
		Status:   RowOK,
		Messages: []string{},
		Warnings: rowWarnings(row.Name),
	}

	if row.WeightKg == nil {
		res.Status = RowNeedsInput
		res.Messages = append(res.Messages, "MISSING_WEIGHT")
		return res
	}

	computed, err := Compute(row.LineTotal, row.Quantity, *row.WeightKg, s.fxLeiToEUR, s.transportRatePerKg)
	if err != nil {
		res.Status = RowError
		res.Messages = append(res.Messages, ErrorCode(err))
		return res
	}
	res.Computed = &computed
	return res
}

func (s *Service) findMatch(barcode, name string) (*MatchCandidate, string) {
	if s.repo == nil {
		return nil, ""
	}

	if barcode != "" {
		if rec, ok := s.repo.FindProductByBarcode(barcode); ok {
			return &MatchCandidate{Strategy: "barcode", ProductID: rec.ProductID}, ""
		}
	}

	candidates := s.repo.FindProductsByNormalizedName(NormalizeName(name))
	switch len(candidates) {
	case 0:
		return nil, ""
	case 1:
		return &MatchCandidate{Strategy: "normalized_name", ProductID: candidates[0].ProductID}, ""
	default:
		return nil, "AMBIGUOUS_NAME_MATCH"
	}
}

// rowWarnings flags assumptions a human should double-check, like the
// 1kg/L density used for liquid size tokens.
func rowWarnings(name string) []string {
	if liquidHintPattern.MatchString(name) {
		return []string{"LIQUID_DENSITY_ASSUMPTION"}
	}
	return []string{}
}
