package enrich

import (
	"strings"
	"testing"

	"github.com/invoxhq/invox/internal/types"
)

func TestParseWeight(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKg    float64
		wantToken string
	}{
		{"grams", "200G UNT CIOCOLATA JLC", 0.2, "200G"},
		{"kilograms", "FAINA 2KG EXTRA", 2.0, "2KG"},
		{"liters assume density", "APA MINERALA 1,5L", 1.5, "1,5L"},
		{"milliliters", "SUC 330ML", 0.33, "330ML"},
		{"decimal comma grams", "CASCAVAL 0,5 KG", 0.5, "0,5KG"},
		{"multipack", "IAURT 4x100G SET", 0.4, "4X100G"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseWeight(tc.input)
			if got.WeightKg == nil {
				t.Fatalf("expected weight for %q", tc.input)
			}
			if diff := *got.WeightKg - tc.wantKg; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("weight = %v, want %v", *got.WeightKg, tc.wantKg)
			}
			if got.SizeToken == nil || *got.SizeToken != tc.wantToken {
				t.Errorf("token = %v, want %q", got.SizeToken, tc.wantToken)
			}
			if got.ParseConfidence == nil || *got.ParseConfidence != 0.98 {
				t.Errorf("parse confidence = %v, want 0.98", got.ParseConfidence)
			}
		})
	}
}

func TestParseWeightNoMatch(t *testing.T) {
	for _, input := range []string{"UNT TARANESC", "PRODUS X200GBRAND", ""} {
		if got := ParseWeight(input); got.WeightKg != nil {
			t.Errorf("expected no weight for %q, got %v", input, *got.WeightKg)
		}
	}
}

func TestNormalizeKgWeighedRows(t *testing.T) {
	kg := "KG"
	inv := &types.Invoice{Products: []types.Product{
		{Name: "BANANE", UOM: &kg, Quantity: 2.35, UnitPrice: 31.0, TotalPrice: 72.85},
		{Name: "PAINE", Quantity: 3, UnitPrice: 5, TotalPrice: 15},
	}}

	NormalizeKgWeighedRows(inv)

	weighed := inv.Products[0]
	if weighed.WeightKgCandidate == nil || *weighed.WeightKgCandidate != 2.35 {
		t.Errorf("measured weight = %v, want 2.35", weighed.WeightKgCandidate)
	}
	if weighed.Quantity != 1.0 {
		t.Errorf("quantity = %v, want 1", weighed.Quantity)
	}
	if weighed.UnitPrice != 72.85 {
		t.Errorf("unit price = %v, want line total", weighed.UnitPrice)
	}

	plain := inv.Products[1]
	if plain.Quantity != 3 || plain.WeightKgCandidate != nil {
		t.Error("non-KG row must be untouched")
	}
}

func TestAddRowMetadata(t *testing.T) {
	code := "4840167001399"
	inv := &types.Invoice{Products: []types.Product{
		{RawCode: &code, Name: "200G UNT CIOCOLATA JLC", Quantity: 5, TotalPrice: 217.15},
		{Name: "SERVETELE UMEDE", Quantity: 1, TotalPrice: 12},
	}}

	AddRowMetadata(inv)

	first := inv.Products[0]
	if !strings.HasPrefix(first.RowID, "r_") || len(first.RowID) != 14 {
		t.Errorf("row id format: %q", first.RowID)
	}
	if first.WeightKgCandidate == nil || *first.WeightKgCandidate != 0.2 {
		t.Errorf("weight candidate = %v, want 0.2", first.WeightKgCandidate)
	}
	if inv.Products[1].WeightKgCandidate != nil {
		t.Error("name without size token should have no weight candidate")
	}
	if first.RowID == inv.Products[1].RowID {
		t.Error("row ids must differ")
	}
}

func TestRowIDStability(t *testing.T) {
	build := func() *types.Invoice {
		return &types.Invoice{Products: []types.Product{
			{Name: "UNT 200G", Quantity: 5, TotalPrice: 217.15},
		}}
	}

	a, b := build(), build()
	AddRowMetadata(a)
	AddRowMetadata(b)
	if a.Products[0].RowID != b.Products[0].RowID {
		t.Errorf("row ids not stable: %q vs %q", a.Products[0].RowID, b.Products[0].RowID)
	}
}

func TestAddRowMetadataKeepsMeasuredKgWeight(t *testing.T) {
	kg := "KG"
	measured := 2.35
	inv := &types.Invoice{Products: []types.Product{
		{Name: "BANANE 1KG", UOM: &kg, Quantity: 1, TotalPrice: 72.85, WeightKgCandidate: &measured},
	}}

	AddRowMetadata(inv)

	prod := inv.Products[0]
	if prod.WeightKgCandidate == nil || *prod.WeightKgCandidate != 2.35 {
		t.Errorf("measured weight must win over name parsing, got %v", prod.WeightKgCandidate)
	}
	if prod.SizeToken != nil {
		t.Error("size token must be cleared for measured KG rows")
	}
}
