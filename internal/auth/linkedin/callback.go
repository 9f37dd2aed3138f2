package linkedin

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/wanderdate/wanderdate/internal/auth/oauthflow"
	"github.com/wanderdate/wanderdate/internal/logging"
)

// frontendLandingPath is where the browser lands after verification, success
// or failure.
const frontendLandingPath = "/social-presence"

// HandleCallback processes the OAuth redirect from LinkedIn and sends the
// browser back to the frontend with either a session token or a
// machine-readable error code.
func HandleCallback(guard *oauthflow.Guard, frontendURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		cb := oauthflow.Callback{
			Code:             q.Get("code"),
			State:            q.Get("state"),
			ErrorParam:       q.Get("error"),
			ErrorDescription: q.Get("error_description"),
		}

		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()[:8]
		}
		ctx := logging.WithRequestID(r.Context(), reqID)

		result, err := guard.HandleCallback(ctx, cb)
		if err != nil {
			redirect(w, r, frontendURL, url.Values{"error": {string(oauthflow.ErrorCode(err))}})
			return
		}

		params := url.Values{"linkedin_verified": {"true"}}
		if result.Duplicate {
			// Double-fired browser redirect: report success without a
			// fresh token rather than surfacing an error.
			params.Set("duplicate", "true")
		} else {
			params.Set("token", result.SessionToken)
		}
		redirect(w, r, frontendURL, params)
	}
}

func redirect(w http.ResponseWriter, r *http.Request, frontendURL string, params url.Values) {
	http.Redirect(w, r, frontendURL+frontendLandingPath+"?"+params.Encode(), http.StatusFound)
}
