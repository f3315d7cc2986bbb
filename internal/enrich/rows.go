package enrich

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/invoxhq/invox/internal/types"
)

// NormalizeKgWeighedRows rewrites weighed KG rows to import semantics.
//
// For rows where uom == "KG" the extracted quantity is the measured weight in
// kilograms, not a unit count. That weight moves to WeightKgCandidate, the
// quantity becomes 1 (one weighed item per line) and the unit price becomes
// the line's end price.
func NormalizeKgWeighedRows(inv *types.Invoice) {
	for i := range inv.Products {
		prod := &inv.Products[i]
		if prod.UOM == nil || strings.ToUpper(strings.TrimSpace(*prod.UOM)) != "KG" {
			continue
		}

		measured := prod.Quantity
		prod.WeightKgCandidate = &measured
		prod.Quantity = 1.0
		prod.UnitPrice = prod.TotalPrice
		prod.SizeToken = nil
		prod.ParseConfidence = nil
	}
}

// AddRowMetadata assigns stable row IDs and fills weight candidates parsed
// from product names. Rows already carrying a measured KG weight keep it.
func AddRowMetadata(inv *types.Invoice) {
	for i := range inv.Products {
		prod := &inv.Products[i]
		prod.RowID = rowID(i, prod)

		if prod.UOM != nil &&
			strings.ToUpper(strings.TrimSpace(*prod.UOM)) == "KG" &&
			prod.WeightKgCandidate != nil {
			prod.SizeToken = nil
			prod.ParseConfidence = nil
			continue
		}

		parsed := ParseWeight(prod.Name)
		prod.WeightKgCandidate = parsed.WeightKg
		prod.SizeToken = parsed.SizeToken
		prod.ParseConfidence = parsed.ParseConfidence
	}
}

// rowID derives a stable identifier from the row's position and identifying
// fields, so re-extracting the same document yields the same IDs.
func rowID(idx int, prod *types.Product) string {
	code := ""
	if prod.RawCode != nil {
		code = *prod.RawCode
	}
	raw := fmt.Sprintf("%d|%s|%s|%v|%v", idx, code, prod.Name, prod.Quantity, prod.TotalPrice)
	sum := sha1.Sum([]byte(raw))
	return "r_" + hex.EncodeToString(sum[:])[:12]
}
