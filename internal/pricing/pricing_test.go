package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeExcelParity(t *testing.T) {
	// 217.15 lei over 5 units at 19.5 lei/EUR, 200g at 2.5 EUR/kg transport.
	res, err := Compute(217.15, 5, 0.2, 19.5, 2.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantBase := decimal.RequireFromString("2.2272")   // (217.15/5)/19.5
	wantTransport := decimal.RequireFromString("0.5") // 0.2*2.5
	if !res.BasePriceEUR.Equal(wantBase) {
		t.Errorf("base = %s, want %s", res.BasePriceEUR, wantBase)
	}
	if !res.TransportEUR.Equal(wantTransport) {
		t.Errorf("transport = %s, want %s", res.TransportEUR, wantTransport)
	}

	landed := wantBase.Add(wantTransport)
	if want := landed.Mul(decimal.RequireFromString("1.5")).Round(4); !res.Price50.Equal(want) {
		t.Errorf("price_50 = %s, want %s", res.Price50, want)
	}
	if want := landed.Mul(decimal.RequireFromString("2.0")).Round(4); !res.Price100.Equal(want) {
		t.Errorf("price_100 = %s, want %s", res.Price100, want)
	}
}

func TestComputeValidation(t *testing.T) {
	tests := []struct {
		name                                        string
		lineTotal, quantity, weight, fx, transport  float64
		wantErr                                     error
	}{
		{"zero quantity", 100, 0, 1, 19.5, 2.5, ErrInvalidQuantity},
		{"negative line total", -1, 1, 1, 19.5, 2.5, ErrInvalidLineTotal},
		{"zero weight", 100, 1, 0, 19.5, 2.5, ErrInvalidWeight},
		{"zero fx", 100, 1, 1, 0, 2.5, ErrInvalidFxRate},
		{"zero transport rate", 100, 1, 1, 19.5, 0, ErrInvalidTransportRate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(tc.lineTotal, tc.quantity, tc.weight, tc.fx, tc.transport)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestErrorCodeMapping(t *testing.T) {
	if got := ErrorCode(ErrInvalidWeight); got != "INVALID_WEIGHT" {
		t.Errorf("got %q", got)
	}
	if got := ErrorCode(errors.New("boom")); got != "COMPUTATION_ERROR" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  200G Unt/Ciocolata  JLC ", "200g unt ciocolata jlc"},
		{"LAPTE-1L (2.5%)", "lapte 1l 2 5"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPreviewStatuses(t *testing.T) {
	svc := NewService(19.5, 2.5, nil, nil)
	weight := 0.2

	resp := svc.Preview([]Row{
		{RowID: "r_1", Name: "UNT 200G", Quantity: 5, LineTotal: 217.15, WeightKg: &weight},
		{RowID: "r_2", Name: "SUC 1L", Quantity: 2, LineTotal: 30},
		{RowID: "r_3", Name: "X", Quantity: 0, LineTotal: 10, WeightKg: &weight},
	})

	if resp.Summary.OKCount != 1 || resp.Summary.NeedsInputCount != 1 || resp.Summary.ErrorCount != 1 {
		t.Fatalf("summary = %+v", resp.Summary)
	}
	if resp.Rows[0].Computed == nil {
		t.Error("ok row should carry computed pricing")
	}
	if resp.Rows[1].Status != RowNeedsInput || resp.Rows[1].Messages[0] != "MISSING_WEIGHT" {
		t.Errorf("row 2 = %+v", resp.Rows[1])
	}
	if resp.Rows[1].Warnings[0] != "LIQUID_DENSITY_ASSUMPTION" {
		t.Errorf("liter token should warn about density: %+v", resp.Rows[1].Warnings)
	}
	if resp.Rows[2].Messages[0] != "INVALID_QUANTITY" {
		t.Errorf("row 3 = %+v", resp.Rows[2])
	}
	if resp.PricingConstants.FxLeiToEUR != 19.5 {
		t.Errorf("constants = %+v", resp.PricingConstants)
	}
}

func TestPreviewMatchCandidates(t *testing.T) {
	repo := NewMemoryRepository()
	existing := repo.CreateProduct(UpsertProduct{Name: "UNT 200G", Barcode: "4840167001399"})
	svc := NewService(19.5, 2.5, repo, nil)
	weight := 0.2

	t.Run("barcode match", func(t *testing.T) {
		resp := svc.Preview([]Row{{
			RowID: "r_1", Name: "other name", Barcode: "4840167001399",
			Quantity: 1, LineTotal: 10, WeightKg: &weight,
		}})
		mc := resp.Rows[0].MatchCandidate
		if mc == nil || mc.Strategy != "barcode" || mc.ProductID != existing.ProductID {
			t.Errorf("match = %+v", mc)
		}
	})

	t.Run("normalized name match", func(t *testing.T) {
		resp := svc.Preview([]Row{{
			RowID: "r_1", Name: "unt  200g", Quantity: 1, LineTotal: 10, WeightKg: &weight,
		}})
		mc := resp.Rows[0].MatchCandidate
		if mc == nil || mc.Strategy != "normalized_name" {
			t.Errorf("match = %+v", mc)
		}
	})

	t.Run("ambiguous name is an error", func(t *testing.T) {
		repo.CreateProduct(UpsertProduct{Name: "UNT  200G"}) // same normalized name
		resp := svc.Preview([]Row{{
			RowID: "r_1", Name: "unt 200g", Quantity: 1, LineTotal: 10, WeightKg: &weight,
		}})
		if resp.Rows[0].Status != RowError || resp.Rows[0].Messages[0] != "AMBIGUOUS_NAME_MATCH" {
			t.Errorf("row = %+v", resp.Rows[0])
		}
	})
}

func TestImportWritePath(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(19.5, 2.5, repo, nil)
	weight := 0.2
	meta := Meta{Supplier: "METRO", InvoiceNumber: "94"}

	first := svc.Import(meta, []Row{
		{RowID: "r_1", Name: "UNT 200G", Barcode: "123", Quantity: 5, LineTotal: 217.15, WeightKg: &weight},
		{RowID: "r_2", Name: "NO WEIGHT", Quantity: 1, LineTotal: 10},
	})

	if first.ImportStatus != "partial_failed" {
		t.Errorf("status = %q", first.ImportStatus)
	}
	if first.Summary.CreatedCount != 1 || first.Summary.StockInCount != 1 || first.Summary.ErrorCount != 1 {
		t.Errorf("summary = %+v", first.Summary)
	}
	created := first.Rows[0]
	if created.Action != "created" || created.ProductID == "" || created.StockMovementID == "" {
		t.Errorf("row = %+v", created)
	}
	if mov, ok := repo.Movement(created.StockMovementID); !ok || mov.Quantity != 5 || mov.InvoiceNumber != "94" {
		t.Errorf("movement = %+v ok=%v", mov, ok)
	}

	// Re-import of the same barcode updates instead of duplicating.
	second := svc.Import(meta, []Row{
		{RowID: "r_1", Name: "UNT 200G NEW", Barcode: "123", Quantity: 2, LineTotal: 100, WeightKg: &weight},
	})
	if second.ImportStatus != "completed" {
		t.Errorf("status = %q", second.ImportStatus)
	}
	if second.Rows[0].Action != "updated" || second.Rows[0].ProductID != created.ProductID {
		t.Errorf("row = %+v", second.Rows[0])
	}
}
