package diag

import (
	"net/http"
	"time"

	"github.com/museum-space/betlemi10-api/internal/common"
	"github.com/museum-space/betlemi10-api/internal/config"
)

// Handler reports a configuration summary with masked credentials.
// Diagnostic only; never mounted in production.
type Handler struct {
	Cfg *config.Config
}

// Summary renders the environment configuration with credentials masked.
func (h Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.Cfg == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "diagnostics unavailable", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"environment":     h.Cfg.AppEnv,
		"public_base_url": h.Cfg.PublicBaseURL,
		"currency":        h.Cfg.CurrencyCode,
		"locale":          h.Cfg.Locale,
		"cors_origins":    h.Cfg.CORSAllowedOrigins,
		"unipay": map[string]any{
			"base_url":           h.Cfg.UniPayBaseURL,
			"merchant_id":        Mask(h.Cfg.UniPayMerchantID),
			"api_key":            Mask(h.Cfg.UniPayAPIKey),
			"webhook_secret_set": h.Cfg.UniPayWebhookSecret != "",
			"timeout":            h.Cfg.UniPayTimeout.String(),
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Mask hides the middle of a credential, keeping just enough of the
// ends to confirm which value is deployed.
func Mask(value string) string {
	switch {
	case value == "":
		return "NOT_SET"
	case len(value) <= 10:
		return "***"
	default:
		return value[:4] + "***" + value[len(value)-4:]
	}
}
