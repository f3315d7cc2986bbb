package endpoints

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invoxhq/invox/internal/api"
	"github.com/invoxhq/invox/internal/config"
	"github.com/invoxhq/invox/internal/svcctx"
)

// ConfigEndpoint handles GET /api/config.
// The API key is redacted; everything else is reported as currently loaded,
// including hot-reloaded values.
type ConfigEndpoint struct{}

func (e *ConfigEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/config", e.handler
}

func (e *ConfigEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cm := svcctx.ConfigManagerFrom(r.Context())
	if cm == nil {
		writeError(w, http.StatusServiceUnavailable, "config manager not initialized")
		return
	}

	cfg := *cm.Get()
	cfg.LLM.APIKey = redactKey(cfg.LLM.APIKey)
	writeJSON(w, http.StatusOK, cfg)
}

// redactKey keeps ${ENV_VAR} placeholders visible but hides literal secrets.
func redactKey(key string) string {
	if key == "" || strings.HasPrefix(key, "${") {
		return key
	}
	return "[redacted]"
}

func (e *ConfigEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the server's effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp config.Config
			if err := client.Get(cmd.Context(), "/api/config", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
