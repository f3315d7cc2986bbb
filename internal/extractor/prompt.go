package extractor

import "fmt"

// Headers names the invoice table columns the model must anchor on. Supplier
// layouts vary, so these are configurable rather than baked into the prompt.
type Headers struct {
	Quantity   string
	UnitPrice  string
	TotalPrice string
}

// DefaultHeaders matches the dominant supplier layout (Romanian-language
// invoices with VAT-inclusive totals).
func DefaultHeaders() Headers {
	return Headers{
		Quantity:   "Cant.",
		UnitPrice:  "Pret unitar",
		TotalPrice: "Valoare incl.TVA",
	}
}

// Map returns the headers keyed for cache signatures.
func (h Headers) Map() map[string]string {
	return map[string]string{
		"quantity":    h.Quantity,
		"unit_price":  h.UnitPrice,
		"total_price": h.TotalPrice,
	}
}

const systemPromptTemplate = `You are a precise invoice data extraction assistant specialized in processing invoices.

INPUT FORMAT:
You will receive a text representation of an invoice where table layout is preserved through spatial alignment (columns are visually aligned using spaces).

EXTRACTION RULES:
1. Extract these fields:
   - Supplier name (e.g., "METRO CASH & CARRY MOLDOVA")
   - Invoice number (e.g., "94")
   - Date (format: DD-MM-YYYY)
   - Total amount (final total value)
   - Currency (MDL, EUR, USD, etc.)
   - List of products with: code, name, quantity, unit_price, total_price

2. CRITICAL - Column Identification:
   - Look for column headers with these names:
     * Quantity column: "%[1]s"
     * Unit price column: "%[2]s"
     * Total price column: "%[3]s"
   - "%[1]s" = Quantity (usually integers: 1, 2, 5, 10, 24)
   - "%[2]s" = Unit Price (usually decimals with 2 places)
   - "%[3]s" = Total Price (rightmost column)
   - Use VERTICAL ALIGNMENT under headers to identify which number belongs to which column

3. COLUMN SEMANTICS (VAT-aware):
   - quantity MUST come from "%[1]s"
   - unit_price MUST come from "%[2]s"
   - total_price MUST come from "%[3]s"
   - IMPORTANT: In many invoices, quantity x unit_price matches the pre-VAT value column, NOT "%[3]s"
   - Never alter quantity or total_price just to make math match.

4. HALLUCINATION PREVENTION:
   - Product codes: If you don't see a numeric code in leftmost column, return null for raw_code
   - DO NOT generate/invent barcodes or EAN codes
   - DO NOT infer product codes from product names
   - If a product name is unclear, use text as-is (don't "clean it up")

5. MULTI-PAGE HANDLING:
   - You may receive multiple pages concatenated
   - Look for page total markers
   - Extract ALL products from ALL pages
   - Use final total value (last page)

6. MULTIPLE INTEGER COLUMNS:
   - Some invoices contain nearby integer columns (for example "Unit", "Mod", and "%[1]s")
   - Only map quantity from "%[1]s".
   - Do not map quantity from "Unit" or "Mod".

7. DISCOUNT LINES:
   - Lines with only numeric codes (e.g., "250075360  2,49-  20%%  0,50-  2,99-") are discount details
   - Skip these - don't treat as products

OUTPUT FORMAT:
Return a JSON object with this exact structure:
{
  "supplier": "string or null",
  "invoice_number": "string or null",
  "date": "DD-MM-YYYY or null",
  "total_amount": float,
  "currency": "string (e.g., MDL, EUR)",
  "products": [
    {
      "raw_code": "string or null",
      "name": "string",
      "quantity": float,
      "unit_price": float,
      "total_price": float,
      "confidence_score": float (0.0-1.0)
    }
  ]
}`

// SystemPrompt renders the extraction instructions for the given column
// header configuration.
func SystemPrompt(h Headers) string {
	def := DefaultHeaders()
	if h.Quantity == "" {
		h.Quantity = def.Quantity
	}
	if h.UnitPrice == "" {
		h.UnitPrice = def.UnitPrice
	}
	if h.TotalPrice == "" {
		h.TotalPrice = def.TotalPrice
	}
	return fmt.Sprintf(systemPromptTemplate, h.Quantity, h.UnitPrice, h.TotalPrice)
}
