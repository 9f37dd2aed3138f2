// Package linkedin binds the authorization-code exchange guard to LinkedIn's
// OAuth 2.0 / OpenID Connect endpoints and exposes the HTTP handlers for the
// verification flow.
package linkedin

import (
	"github.com/wanderdate/wanderdate/internal/auth/oauthflow"
	"github.com/wanderdate/wanderdate/internal/config"
	"github.com/wanderdate/wanderdate/internal/providers/catalog"
	"golang.org/x/oauth2"
)

const ProviderID = "linkedin"

// OAuthConfig builds the oauth2 client configuration for LinkedIn. LinkedIn
// expects client credentials in the request body, not basic auth.
func OAuthConfig(cfg config.LinkedIn, provider catalog.Provider) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Scopes:       provider.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   provider.AuthURL,
			TokenURL:  provider.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// NewGuard wires the exchange guard for LinkedIn verification.
func NewGuard(cfg *config.Config, provider catalog.Provider, users oauthflow.UserStore, signer oauthflow.SessionSigner) *oauthflow.Guard {
	return oauthflow.NewGuard(oauthflow.Options{
		Provider:    ProviderID,
		OAuth:       OAuthConfig(cfg.LinkedIn, provider),
		UserInfoURL: provider.UserInfoURL,
		PKCE:        cfg.LinkedIn.PKCE,
		Production:  cfg.IsProduction(),
		Users:       users,
		Signer:      signer,
	})
}
