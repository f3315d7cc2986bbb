package pricing

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// ProductRecord is the persisted product shape the import flow matches against.
type ProductRecord struct {
	ProductID      string
	Barcode        string
	Name           string
	NormalizedName string
	Supplier       string
}

// UpsertProduct is the payload for create/update product operations.
type UpsertProduct struct {
	Name     string
	Barcode  string
	Supplier string
	Price    float64
	Price50  float64
	Price70  float64
	Price100 float64
	Markup   int
}

// Repository abstracts the persistence operations the import flow needs.
// Business-record persistence proper is out of scope; production deployments
// plug their own implementation, tests and the MVP use MemoryRepository.
type Repository interface {
	FindProductByBarcode(barcode string) (*ProductRecord, bool)
	FindProductsByNormalizedName(normalizedName string) []ProductRecord
	CreateProduct(data UpsertProduct) ProductRecord
	UpdateProduct(productID string, data UpsertProduct) (ProductRecord, error)
	AddStockMovementIn(productID string, quantity float64, source, invoiceNumber string) string
}

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeName canonicalizes a product name for fallback matching:
// lower-case, non-alphanumerics collapsed to single spaces.
func NormalizeName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(nonAlnumPattern.ReplaceAllString(lowered, " ")), " ")
}

// StockMovement records an inbound stock change from an import.
type StockMovement struct {
	ProductID     string
	Quantity      float64
	Source        string
	InvoiceNumber string
}

// MemoryRepository is a thread-safe in-memory Repository.
type MemoryRepository struct {
	mu          sync.Mutex
	products    map[string]ProductRecord
	byBarcode   map[string]string
	movements   map[string]StockMovement
	movementSeq int
	productSeq  int
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{}
	r.Reset()
	return r
}

// Reset clears all state.
func (r *MemoryRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = make(map[string]ProductRecord)
	r.byBarcode = make(map[string]string)
	r.movements = make(map[string]StockMovement)
	r.productSeq = 1
	r.movementSeq = 1
}

func (r *MemoryRepository) FindProductByBarcode(barcode string) (*ProductRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byBarcode[barcode]
	if !ok {
		return nil, false
	}
	rec, ok := r.products[id]
	if !ok {
		return nil, false
	}
	return &rec, true
}

func (r *MemoryRepository) FindProductsByNormalizedName(normalizedName string) []ProductRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ProductRecord
	for _, rec := range r.products {
		if rec.NormalizedName == normalizedName {
			out = append(out, rec)
		}
	}
	return out
}

func (r *MemoryRepository) CreateProduct(data UpsertProduct) ProductRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := ProductRecord{
		ProductID:      fmt.Sprintf("prod_%d", r.productSeq),
		Barcode:        data.Barcode,
		Name:           data.Name,
		NormalizedName: NormalizeName(data.Name),
		Supplier:       data.Supplier,
	}
	r.productSeq++
	r.products[rec.ProductID] = rec
	if data.Barcode != "" {
		r.byBarcode[data.Barcode] = rec.ProductID
	}
	return rec
}

func (r *MemoryRepository) UpdateProduct(productID string, data UpsertProduct) (ProductRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[productID]; !ok {
		return ProductRecord{}, fmt.Errorf("unknown product id %q", productID)
	}
	rec := ProductRecord{
		ProductID:      productID,
		Barcode:        data.Barcode,
		Name:           data.Name,
		NormalizedName: NormalizeName(data.Name),
		Supplier:       data.Supplier,
	}
	r.products[productID] = rec
	if data.Barcode != "" {
		r.byBarcode[data.Barcode] = productID
	}
	return rec, nil
}

func (r *MemoryRepository) AddStockMovementIn(productID string, quantity float64, source, invoiceNumber string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := fmt.Sprintf("mov_%d", r.movementSeq)
	r.movementSeq++
	r.movements[id] = StockMovement{
		ProductID:     productID,
		Quantity:      quantity,
		Source:        source,
		InvoiceNumber: invoiceNumber,
	}
	return id
}

// Movement returns a recorded stock movement by id.
func (r *MemoryRepository) Movement(id string) (StockMovement, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movements[id]
	return m, ok
}
