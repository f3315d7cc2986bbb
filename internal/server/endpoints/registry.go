// Package endpoints defines the HTTP API surface; each endpoint also exposes
// a CLI command that calls the running server.
package endpoints

import (
	"github.com/invoxhq/invox/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},

		// Extraction
		&ExtractEndpoint{},

		// Pricing
		&PreviewPricingEndpoint{},
		&ImportInvoiceEndpoint{},
		&PricingConstantsEndpoint{},

		// Observability
		&MetricsSummaryEndpoint{},
		&ConfigEndpoint{},

		// API docs
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},
	}
}
