// Package pipeline orchestrates a full extraction run: PDF intake, grid
// building, model extraction, validation, enrichment, and result caching.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/invoxhq/invox/internal/cache"
	"github.com/invoxhq/invox/internal/enrich"
	"github.com/invoxhq/invox/internal/extractor"
	"github.com/invoxhq/invox/internal/grid"
	"github.com/invoxhq/invox/internal/home"
	"github.com/invoxhq/invox/internal/ingest"
	"github.com/invoxhq/invox/internal/metrics"
	"github.com/invoxhq/invox/internal/types"
	"github.com/invoxhq/invox/internal/validate"
)

// Settings are the per-run knobs, resolved from config at request time so
// hot-reloaded values take effect without a restart.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Headers     extractor.Headers

	ScaleFactor float64
	TolerancePx float64

	AllowedCurrencies []string
	Categories        []string
	MathTolerance     float64

	MaxPDFSizeMB int

	CacheEnabled    bool
	CacheTTL        time.Duration
	CacheMaxEntries int

	Mock bool
}

// Outcome is the result of a pipeline run.
type Outcome struct {
	Invoice     *types.Invoice    `json:"invoice"`
	ContentHash string            `json:"content_hash"`
	CacheStatus types.CacheStatus `json:"cache_status"`

	PageCount int `json:"page_count"`
	GridChars int `json:"grid_chars"`

	Provider      string        `json:"provider,omitempty"`
	ModelUsed     string        `json:"model_used,omitempty"`
	TotalTokens   int           `json:"total_tokens,omitempty"`
	ExecutionTime time.Duration `json:"execution_time,omitempty"`
}

// Pipeline wires the extraction stages together.
type Pipeline struct {
	extractor *extractor.Extractor
	cache     *cache.Cache
	recorder  *metrics.Recorder
	logger    *slog.Logger
	home      *home.Dir
}

// New creates a pipeline.
func New(ex *extractor.Extractor, c *cache.Cache, rec *metrics.Recorder, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{extractor: ex, cache: c, recorder: rec, logger: logger}
}

// SetArtifactDir enables persistence of grid text and extraction results
// under the invox home directory, keyed by content hash.
func (p *Pipeline) SetArtifactDir(h *home.Dir) {
	p.home = h
}

// Process runs the full extraction pipeline on raw PDF bytes.
//
// Failed runs are never cached: a cached failure would pin a transient model
// error to a document until its entry expires.
func (p *Pipeline) Process(ctx context.Context, data []byte, s Settings) (*Outcome, error) {
	doc, err := ingest.FromBytes(data, s.MaxPDFSizeMB)
	if err != nil {
		return nil, err
	}
	return p.ProcessDocument(ctx, doc, s)
}

// ProcessDocument runs the pipeline on an already-parsed document.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc *ingest.Document, s Settings) (*Outcome, error) {
	outcome := &Outcome{
		ContentHash: doc.ContentHash,
		PageCount:   doc.PageCount,
		CacheStatus: types.CacheOff,
	}

	var key string
	if s.CacheEnabled {
		p.cache.Configure(s.CacheTTL, s.CacheMaxEntries)
		key = cache.Key(doc.ContentHash, signature(s))

		if payload, ok := p.cache.Get(key); ok {
			var inv types.Invoice
			if err := json.Unmarshal(payload, &inv); err == nil {
				p.recorder.RecordCacheHit()
				p.logger.Info("extraction served from cache",
					"content_hash", doc.ContentHash[:12],
					"hit_count", p.cache.HitCount(key))
				outcome.Invoice = &inv
				outcome.CacheStatus = types.CacheHit
				return outcome, nil
			}
			// Undecodable payload: treat as miss and overwrite below.
			p.logger.Warn("dropping corrupt cache entry", "key", key)
		}
		p.recorder.RecordCacheMiss()
		outcome.CacheStatus = types.CacheMiss
	}

	gridText := buildGridText(doc, s)
	outcome.GridChars = len(gridText)
	p.saveGrid(doc.ContentHash, gridText)

	res, err := p.extractor.Extract(ctx, gridText, extractor.Options{
		Model:       s.Model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		Timeout:     s.Timeout,
		Headers:     s.Headers,
	})
	if err != nil {
		p.recordFailure(doc.ContentHash, s.Model, "extraction", err)
		return nil, err
	}

	invoice, err := validate.NormalizeAndValidate(res.Invoice, validate.Params{
		AllowedCurrencies: s.AllowedCurrencies,
		Categories:        s.Categories,
		MathTolerance:     s.MathTolerance,
		Logger:            p.logger,
	})
	if err != nil {
		p.recordFailure(doc.ContentHash, res.ModelUsed, failureType(err), err)
		return nil, err
	}

	enrich.NormalizeKgWeighedRows(invoice)
	enrich.AddRowMetadata(invoice)
	p.saveResult(doc.ContentHash, invoice)

	if s.CacheEnabled {
		p.cacheResult(key, doc.ContentHash, invoice)
	}

	p.recorder.Record(metrics.Metric{
		Provider:         res.Provider,
		Model:            res.ModelUsed,
		ContentHash:      doc.ContentHash,
		RequestID:        res.RequestID,
		PromptTokens:     res.PromptTokens,
		CompletionTokens: res.CompletionTokens,
		TotalTokens:      res.TotalTokens,
		ExecutionSeconds: res.ExecutionTime.Seconds(),
		Success:          true,
	})

	outcome.Invoice = invoice
	outcome.Provider = res.Provider
	outcome.ModelUsed = res.ModelUsed
	outcome.TotalTokens = res.TotalTokens
	outcome.ExecutionTime = res.ExecutionTime
	return outcome, nil
}

// buildGridText renders every page grid and joins them with page markers so
// the model can track page boundaries and running totals.
func buildGridText(doc *ingest.Document, s Settings) string {
	var b strings.Builder
	for i, tokens := range doc.Pages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- Page %d ---\n", i+1)
		b.WriteString(grid.Build(tokens, s.TolerancePx, s.ScaleFactor))
	}
	return b.String()
}

// signature captures every setting that changes extraction output.
func signature(s Settings) cache.Signature {
	return cache.Signature{
		Model:         s.Model,
		Temperature:   s.Temperature,
		MaxTokens:     s.MaxTokens,
		ScaleFactor:   s.ScaleFactor,
		TolerancePx:   s.TolerancePx,
		ColumnHeaders: s.Headers.Map(),
		Mock:          s.Mock,
	}
}

// cacheResult stores a validated result for future lookups. Caching is an
// optimization, never a correctness dependency: a serialization failure is
// logged and the write skipped, the run still succeeds.
func (p *Pipeline) cacheResult(key, contentHash string, invoice *types.Invoice) {
	payload, err := json.Marshal(invoice)
	if err != nil {
		p.logger.Warn("failed to serialize result for cache, skipping write",
			"content_hash", contentHash[:12],
			"error", err)
		return
	}
	p.cache.Set(key, payload)
}

// saveGrid and saveResult are best-effort debug artifacts; a write failure
// never fails the run.

func (p *Pipeline) saveGrid(contentHash, gridText string) {
	if p.home == nil {
		return
	}
	if err := os.WriteFile(p.home.GridPath(contentHash), []byte(gridText), 0o644); err != nil {
		p.logger.Warn("failed to save text grid", "content_hash", contentHash[:12], "error", err)
	}
}

func (p *Pipeline) saveResult(contentHash string, invoice *types.Invoice) {
	if p.home == nil {
		return
	}
	payload, err := json.MarshalIndent(invoice, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(p.home.ResultPath(contentHash), payload, 0o644); err != nil {
		p.logger.Warn("failed to save extraction result", "content_hash", contentHash[:12], "error", err)
	}
}

func (p *Pipeline) recordFailure(contentHash, model, errType string, err error) {
	p.recorder.Record(metrics.Metric{
		Model:       model,
		ContentHash: contentHash,
		Success:     false,
		ErrorType:   errType,
	})
	p.logger.Error("extraction failed",
		"content_hash", contentHash[:12],
		"error_type", errType,
		"error", err)
}

func failureType(err error) string {
	var integrityErr *validate.IntegrityError
	var currencyErr *validate.CurrencyError
	switch {
	case errors.As(err, &integrityErr):
		return "integrity"
	case errors.As(err, &currencyErr):
		return "currency"
	default:
		return "validation"
	}
}
