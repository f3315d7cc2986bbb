package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/invoxhq/invox/internal/api"
	"github.com/invoxhq/invox/internal/pricing"
	"github.com/invoxhq/invox/internal/svcctx"
)

// PricingRequest is the body for preview and import requests.
type PricingRequest struct {
	Meta pricing.Meta  `json:"meta"`
	Rows []pricing.Row `json:"rows"`
}

// pricingService builds a service with the rates currently in config, so
// hot-reloaded constants apply without a restart.
func pricingService(r *http.Request) (*pricing.Service, bool) {
	svc := svcctx.ServicesFrom(r.Context())
	if svc == nil || svc.ConfigManager == nil {
		return nil, false
	}
	cfg := svc.ConfigManager.Get()
	return pricing.NewService(
		cfg.Pricing.FxLeiToEUR,
		cfg.Pricing.TransportRatePerKg,
		svc.PricingRepo,
		svc.Logger,
	), true
}

// PreviewPricingEndpoint handles POST /api/invoices/preview-pricing.
type PreviewPricingEndpoint struct{}

func (e *PreviewPricingEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/invoices/preview-pricing", e.handler
}

func (e *PreviewPricingEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc, ok := pricingService(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "pricing not initialized")
		return
	}

	var req PricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "rows must not be empty")
		return
	}

	writeJSON(w, http.StatusOK, svc.Preview(req.Rows))
}

func (e *PreviewPricingEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "preview-pricing <rows.json>",
		Short: "Preview landed-cost pricing for invoice rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			var req PricingRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("invalid request file: %w", err)
			}

			client := api.NewClient(getServerURL())
			var resp pricing.PreviewResponse
			if err := client.Post(cmd.Context(), "/api/invoices/preview-pricing", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ImportInvoiceEndpoint handles POST /api/invoices/import.
type ImportInvoiceEndpoint struct{}

func (e *ImportInvoiceEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/invoices/import", e.handler
}

func (e *ImportInvoiceEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc, ok := pricingService(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "pricing not initialized")
		return
	}

	var req PricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "rows must not be empty")
		return
	}

	writeJSON(w, http.StatusOK, svc.Import(req.Meta, req.Rows))
}

func (e *ImportInvoiceEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <rows.json>",
		Short: "Import invoice rows into the product catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			var req PricingRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("invalid request file: %w", err)
			}

			client := api.NewClient(getServerURL())
			var resp pricing.ImportResponse
			if err := client.Post(cmd.Context(), "/api/invoices/import", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// PricingConstantsEndpoint handles GET /api/pricing/constants.
type PricingConstantsEndpoint struct{}

func (e *PricingConstantsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/pricing/constants", e.handler
}

func (e *PricingConstantsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc, ok := pricingService(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "pricing not initialized")
		return
	}
	writeJSON(w, http.StatusOK, svc.Constants())
}

func (e *PricingConstantsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "constants",
		Short: "Show pricing constants in effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp pricing.Constants
			if err := client.Get(cmd.Context(), "/api/pricing/constants", &resp); err != nil {
				return err
			}
			fmt.Printf("FX (lei/EUR):        %.4f\n", resp.FxLeiToEUR)
			fmt.Printf("Transport (EUR/kg):  %.4f\n", resp.TransportRatePerKg)
			return nil
		},
	}
}
