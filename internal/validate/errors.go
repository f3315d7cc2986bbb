package validate

import "fmt"

// IntegrityError reports that every structurally plausible row in the model
// output failed normalization. It is distinguishable from an invoice that
// legitimately has zero line items, which is not an error.
type IntegrityError struct {
	DroppedRows int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("model returned %d malformed product rows and no usable ones", e.DroppedRows)
}

// CurrencyError reports a document-level currency outside the allowed set.
// This fails the whole result: currency ambiguity corrupts every downstream
// computation.
type CurrencyError struct {
	Currency string
	Allowed  []string
}

func (e *CurrencyError) Error() string {
	return fmt.Sprintf("invalid currency %q (allowed: %v)", e.Currency, e.Allowed)
}
