package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/invoxhq/invox/internal/api"
	"github.com/invoxhq/invox/internal/metrics"
	"github.com/invoxhq/invox/internal/svcctx"
)

// MetricsSummaryEndpoint handles GET /api/metrics/summary.
type MetricsSummaryEndpoint struct{}

func (e *MetricsSummaryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/metrics/summary", e.handler
}

func (e *MetricsSummaryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	recorder := svcctx.RecorderFrom(r.Context())
	if recorder == nil {
		writeError(w, http.StatusServiceUnavailable, "metrics recorder not initialized")
		return
	}
	writeJSON(w, http.StatusOK, recorder.Summary())
}

func (e *MetricsSummaryEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show extraction usage metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp metrics.Summary
			if err := client.Get(cmd.Context(), "/api/metrics/summary", &resp); err != nil {
				return err
			}

			fmt.Printf("Metrics Summary\n")
			fmt.Printf("===============\n")
			fmt.Printf("  Extractions:  %d\n", resp.Extractions)
			fmt.Printf("  Failures:     %d\n", resp.Failures)
			fmt.Printf("  Cache hits:   %d\n", resp.CacheHits)
			fmt.Printf("  Cache misses: %d\n", resp.CacheMisses)
			fmt.Println()
			fmt.Printf("  Total tokens: %d\n", resp.TotalTokens)
			fmt.Printf("  Avg time:     %.2fs\n", resp.AvgExecutionSeconds)
			return nil
		},
	}
}
