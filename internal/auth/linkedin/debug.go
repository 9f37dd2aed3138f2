package linkedin

import (
	"encoding/json"
	"net/http"

	"github.com/wanderdate/wanderdate/internal/auth/oauthflow"
	"github.com/wanderdate/wanderdate/internal/config"
)

// HandleDebug reports which OAuth settings are present without revealing
// their values. Useful when a deployment's callback URL does not match the
// one registered with LinkedIn.
func HandleDebug(cfg *config.Config) http.HandlerFunc {
	present := func(v string) string {
		if v == "" {
			return "missing"
		}
		return "set"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "LinkedIn OAuth Configuration",
			"config": map[string]string{
				"clientId":     oauthflow.Redact(cfg.LinkedIn.ClientID),
				"clientSecret": present(cfg.LinkedIn.ClientSecret),
				"callbackUrl":  cfg.LinkedIn.CallbackURL,
				"frontendUrl":  cfg.FrontendURL,
				"environment":  cfg.Environment,
			},
			"instructions": map[string]string{
				"step1": "Check the callback URL uses HTTPS in production",
				"step2": "Verify this exact URL is registered in the LinkedIn developer console",
				"step3": "Make sure all environment variables are set in the deployment",
			},
		})
	}
}
