package endpoints

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invoxhq/invox/internal/api"
	"github.com/invoxhq/invox/internal/ingest"
	"github.com/invoxhq/invox/internal/svcctx"
	"github.com/invoxhq/invox/internal/types"
	"github.com/invoxhq/invox/internal/validate"
)

// ExtractResponse is the response for an extraction request.
type ExtractResponse struct {
	Invoice     *types.Invoice    `json:"invoice"`
	ContentHash string            `json:"content_hash"`
	CacheStatus types.CacheStatus `json:"cache_status"`
	PageCount   int               `json:"page_count"`
	ModelUsed   string            `json:"model_used,omitempty"`
	TotalTokens int               `json:"total_tokens,omitempty"`
}

// ExtractEndpoint handles POST /api/extract.
// It accepts a multipart PDF upload and returns normalized line items.
type ExtractEndpoint struct{}

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/extract", e.handler
}

func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc := svcctx.ServicesFrom(r.Context())
	if svc == nil || svc.Pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline not initialized")
		return
	}

	settings := svc.ConfigManager.Get().PipelineSettings()

	// Bound the multipart parse by the configured PDF limit plus form overhead.
	maxBytes := int64(settings.MaxPDFSizeMB+1) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload field 'file'")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF files are supported")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	out, err := svc.Pipeline.Process(r.Context(), data, settings)
	if err != nil {
		writeExtractError(w, err)
		return
	}

	w.Header().Set("X-Extract-Cache", string(out.CacheStatus))
	w.Header().Set("X-Extract-File-Hash", out.ContentHash[:12])

	writeJSON(w, http.StatusOK, ExtractResponse{
		Invoice:     out.Invoice,
		ContentHash: out.ContentHash,
		CacheStatus: out.CacheStatus,
		PageCount:   out.PageCount,
		ModelUsed:   out.ModelUsed,
		TotalTokens: out.TotalTokens,
	})
}

// writeExtractError maps pipeline errors onto stable status codes:
// bad uploads are 400/413, model output the validator rejected wholesale is
// 422, and everything else is a 500.
func writeExtractError(w http.ResponseWriter, err error) {
	var integrityErr *validate.IntegrityError
	var currencyErr *validate.CurrencyError

	switch {
	case errors.Is(err, ingest.ErrTooLarge):
		writeErrorCode(w, http.StatusRequestEntityTooLarge, "PDF_TOO_LARGE", err.Error())
	case errors.Is(err, ingest.ErrNotPDF):
		writeErrorCode(w, http.StatusBadRequest, "INVALID_PDF", err.Error())
	case errors.As(err, &currencyErr):
		writeErrorCode(w, http.StatusBadRequest, "INVALID_CURRENCY", err.Error())
	case errors.As(err, &integrityErr):
		writeErrorCode(w, http.StatusUnprocessableEntity, "EXTRACTION_INTEGRITY", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("processing failed: %v", err))
	}
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <invoice.pdf>",
		Short: "Extract line items from an invoice PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ExtractResponse
			if err := client.PostFile(cmd.Context(), "/api/extract", "file", args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
