package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/invoxhq/invox/internal/config"
	"github.com/invoxhq/invox/internal/metrics"
	"github.com/invoxhq/invox/internal/pricing"
	"github.com/invoxhq/invox/internal/server/endpoints"
)

// newTestServer builds a server in mock mode backed by a temp config file.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	content := "llm:\n  mock: true\n"
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cm, err := config.NewManager(configFile)
	if err != nil {
		t.Fatalf("config manager: %v", err)
	}

	s, err := New(Config{ConfigManager: cm})
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	return s
}

// minimalPDF builds a one-page PDF with an empty content stream and a valid
// xref table. Enough to exercise the intake path end to end.
func minimalPDF(t *testing.T) []byte {
	t.Helper()

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, 5)
	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << >> >>\nendobj\n")
	offsets[4] = b.Len()
	b.WriteString("4 0 obj\n<< /Length 0 >>\nstream\nendstream\nendobj\n")

	start := b.Len()
	b.WriteString("xref\n0 5\n0000000000 65535 f \n")
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size 5 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", start)
	return b.Bytes()
}

func multipartPDF(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, writer.FormDataContentType()
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s = %d", path, resp.StatusCode)
		}
	}
}

func TestExtractEndpoint(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	t.Run("mock extraction succeeds", func(t *testing.T) {
		body, contentType := multipartPDF(t, "invoice.pdf", minimalPDF(t))
		resp, err := http.Post(ts.URL+"/api/extract", contentType, body)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if got := resp.Header.Get("X-Extract-Cache"); got != "miss" {
			t.Errorf("X-Extract-Cache = %q", got)
		}
		if resp.Header.Get("X-Extract-File-Hash") == "" {
			t.Error("missing X-Extract-File-Hash header")
		}

		var out endpoints.ExtractResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
		if out.Invoice == nil || len(out.Invoice.Products) != 2 {
			t.Fatalf("invoice = %+v", out.Invoice)
		}
		if out.Invoice.Currency != "MDL" {
			t.Errorf("currency = %q", out.Invoice.Currency)
		}
	})

	t.Run("second upload hits cache", func(t *testing.T) {
		body, contentType := multipartPDF(t, "invoice.pdf", minimalPDF(t))
		resp, err := http.Post(ts.URL+"/api/extract", contentType, body)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if got := resp.Header.Get("X-Extract-Cache"); got != "hit" {
			t.Errorf("X-Extract-Cache = %q", got)
		}
	})

	t.Run("rejects non-pdf payload", func(t *testing.T) {
		body, contentType := multipartPDF(t, "invoice.pdf", []byte("not a pdf"))
		resp, err := http.Post(ts.URL+"/api/extract", contentType, body)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d", resp.StatusCode)
		}
		var errResp endpoints.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			t.Fatal(err)
		}
		if errResp.Code != "INVALID_PDF" {
			t.Errorf("code = %q", errResp.Code)
		}
	})

	t.Run("rejects non-pdf filename", func(t *testing.T) {
		body, contentType := multipartPDF(t, "invoice.docx", minimalPDF(t))
		resp, err := http.Post(ts.URL+"/api/extract", contentType, body)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("rejects missing file field", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/extract", "multipart/form-data; boundary=x", bytes.NewReader(nil))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})
}

func TestPricingEndpoints(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	t.Run("constants", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/pricing/constants")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var constants pricing.Constants
		if err := json.NewDecoder(resp.Body).Decode(&constants); err != nil {
			t.Fatal(err)
		}
		if constants.FxLeiToEUR != 19.5 {
			t.Errorf("fx = %v", constants.FxLeiToEUR)
		}
	})

	t.Run("preview", func(t *testing.T) {
		weight := 0.2
		req := endpoints.PricingRequest{
			Rows: []pricing.Row{
				{RowID: "r_1", Name: "UNT 200G", Quantity: 5, LineTotal: 217.15, WeightKg: &weight},
			},
		}
		payload, _ := json.Marshal(req)

		resp, err := http.Post(ts.URL+"/api/invoices/preview-pricing", "application/json", bytes.NewReader(payload))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var preview pricing.PreviewResponse
		if err := json.NewDecoder(resp.Body).Decode(&preview); err != nil {
			t.Fatal(err)
		}
		if preview.Summary.OKCount != 1 {
			t.Errorf("summary = %+v", preview.Summary)
		}
	})

	t.Run("import then re-preview matches product", func(t *testing.T) {
		weight := 0.2
		req := endpoints.PricingRequest{
			Meta: pricing.Meta{Supplier: "METRO", InvoiceNumber: "94"},
			Rows: []pricing.Row{
				{RowID: "r_1", Name: "CIOCOLATA ALBA", Barcode: "4840167002500", Quantity: 4, LineTotal: 166.32, WeightKg: &weight},
			},
		}
		payload, _ := json.Marshal(req)

		resp, err := http.Post(ts.URL+"/api/invoices/import", "application/json", bytes.NewReader(payload))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var imported pricing.ImportResponse
		if err := json.NewDecoder(resp.Body).Decode(&imported); err != nil {
			t.Fatal(err)
		}
		if imported.ImportStatus != "completed" || imported.Rows[0].Action != "created" {
			t.Fatalf("import = %+v", imported)
		}

		resp2, err := http.Post(ts.URL+"/api/invoices/preview-pricing", "application/json", bytes.NewReader(payload))
		if err != nil {
			t.Fatal(err)
		}
		defer resp2.Body.Close()
		var preview pricing.PreviewResponse
		if err := json.NewDecoder(resp2.Body).Decode(&preview); err != nil {
			t.Fatal(err)
		}
		if mc := preview.Rows[0].MatchCandidate; mc == nil || mc.Strategy != "barcode" {
			t.Errorf("match = %+v", mc)
		}
	})

	t.Run("empty rows rejected", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/invoices/preview-pricing", "application/json", bytes.NewReader([]byte(`{"rows":[]}`)))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})
}

func TestMetricsAndConfigEndpoints(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	// Drive one extraction so metrics have content.
	body, contentType := multipartPDF(t, "invoice.pdf", minimalPDF(t))
	resp, err := http.Post(ts.URL+"/api/extract", contentType, body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	t.Run("metrics summary", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/metrics/summary")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var summary metrics.Summary
		if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
			t.Fatal(err)
		}
		if summary.Extractions != 1 {
			t.Errorf("extractions = %d", summary.Extractions)
		}
	})

	t.Run("config is redacted", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/config")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var cfg map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
			t.Fatal(err)
		}
		llm, ok := cfg["LLM"].(map[string]any)
		if !ok {
			t.Fatalf("config shape = %v", cfg)
		}
		key, _ := llm["APIKey"].(string)
		if key != "${OPENAI_API_KEY}" && key != "[redacted]" && key != "" {
			t.Errorf("api key leaked: %q", key)
		}
	})
}
