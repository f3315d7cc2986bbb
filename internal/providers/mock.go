package providers

import (
	"context"
	"sync/atomic"
	"time"
)

const MockName = "mock"

// mockInvoiceJSON mirrors a real extraction payload so the rest of the
// pipeline (validation, enrichment, caching) exercises its full path even
// without an API key.
const mockInvoiceJSON = `{
  "supplier": "MOCK SUPPLIER",
  "invoice_number": "MOCK-001",
  "date": "02-02-2026",
  "total_amount": 8142.84,
  "currency": "MDL",
  "products": [
    {
      "raw_code": "4840167001399",
      "name": "200G UNT CIOCOLATA JLC",
      "quantity": 5.0,
      "unit_price": 43.43,
      "total_price": 217.15,
      "confidence_score": 0.95
    },
    {
      "raw_code": "4840167002500",
      "name": "CIOCOLATA ALBA 70% 200G",
      "quantity": 4.0,
      "unit_price": 41.58,
      "total_price": 166.32,
      "confidence_score": 0.95
    }
  ]
}`

// MockClient returns a canned invoice for every request. Used when mock mode
// is enabled in config and in tests.
type MockClient struct {
	// Response overrides the default payload when non-empty.
	Response string

	// Err, when set, is returned from every call.
	Err error

	// Delay simulates provider latency.
	Delay time.Duration

	// calls is atomic: one client instance serves concurrent requests.
	calls atomic.Int64
}

// Name returns the client identifier.
func (m *MockClient) Name() string { return MockName }

// Calls reports how many requests the client has served.
func (m *MockClient) Calls() int { return int(m.calls.Load()) }

// Chat returns the canned response.
func (m *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	m.calls.Add(1)
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}

	content := m.Response
	if content == "" {
		content = mockInvoiceJSON
	}

	model := req.Model
	if model == "" {
		model = "mock-model"
	}

	return &ChatResult{
		Content:       content,
		TotalTokens:   0,
		ExecutionTime: m.Delay,
		Provider:      MockName,
		ModelUsed:     model,
		RequestID:     req.RequestID,
		Attempts:      1,
	}, nil
}
