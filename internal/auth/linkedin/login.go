package linkedin

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/wanderdate/wanderdate/internal/auth/oauthflow"
)

// HandleLogin starts the LinkedIn verification flow by redirecting the
// browser to LinkedIn's consent screen.
func HandleLogin(guard *oauthflow.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := guard.Begin()
		if err != nil {
			log.Printf("❌ linkedin oauth not configured: %v", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "LinkedIn OAuth not configured",
				"message": "Server configuration error. Please contact administrator.",
			})
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	}
}
