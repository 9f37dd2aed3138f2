// Package oauthflow implements the authorization-code exchange guard: it
// enforces exactly-once consumption of provider-issued authorization codes,
// binds each callback to its originating request via an unguessable state
// value (plus an optional PKCE verifier), and converts a successful exchange
// into a local user record and session token.
package oauthflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/wanderdate/wanderdate/internal/logging"
	"github.com/wanderdate/wanderdate/internal/util"
	"golang.org/x/oauth2"
)

const (
	// Pending-state and used-code entries live about as long as the
	// provider's own code expiry.
	DefaultPendingTTL  = 60 * time.Second
	DefaultUsedCodeTTL = 60 * time.Second

	// Outbound calls to the provider are bounded; there are no retries.
	defaultHTTPTimeout = 10 * time.Second
)

// Identity is the verified external identity returned by the provider's
// profile endpoint.
type Identity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// User is the guard's view of a local user record.
type User struct {
	ID    uint
	Email string
}

// UserStore is the user-storage collaborator. The guard never deletes user
// records and never touches fields outside identity verification.
type UserStore interface {
	// FindVerificationTarget returns the user with the given email, or
	// (nil, nil) when no such user exists. Matching is exact and
	// case-sensitive.
	FindVerificationTarget(ctx context.Context, email string) (*User, error)
	// CreateVerifiedUser creates a new user with identity-verification
	// fields set and approval/onboarding defaulted to false.
	CreateVerifiedUser(ctx context.Context, ident Identity) (*User, error)
	// MarkIdentityVerified updates only the identity-verification fields
	// of an existing user.
	MarkIdentityVerified(ctx context.Context, userID uint, subject string) error
}

// SessionSigner mints application session tokens.
type SessionSigner interface {
	Sign(userID uint, email string, verified bool) (string, error)
}

// Callback carries the query parameters of a provider redirect.
type Callback struct {
	Code             string
	State            string
	ErrorParam       string
	ErrorDescription string
}

// Result is the terminal outcome of a successful (or idempotent-duplicate)
// callback.
type Result struct {
	// Duplicate is set when the code was already consumed. The caller
	// must present this as success, not failure: it almost always means
	// the browser fired the redirect twice.
	Duplicate    bool
	UserID       uint
	Email        string
	SessionToken string
}

// Guard runs the authorization-code exchange flow for one provider.
type Guard struct {
	provider    string
	oauth       *oauth2.Config
	userInfoURL string
	pkce        bool
	production  bool

	pending PendingStore
	used    UsedCodeStore
	users   UserStore
	signer  SessionSigner
	client  *http.Client
}

// Options configures a Guard.
type Options struct {
	Provider    string
	OAuth       *oauth2.Config
	UserInfoURL string
	PKCE        bool
	Production  bool
	Pending     PendingStore
	UsedCodes   UsedCodeStore
	Users       UserStore
	Signer      SessionSigner
	// HTTPClient overrides the outbound client; defaults to one with a
	// bounded timeout.
	HTTPClient *http.Client
}

// NewGuard wires a Guard from its collaborators.
func NewGuard(opts Options) *Guard {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	pending := opts.Pending
	if pending == nil {
		pending = NewMemoryPendingStore(DefaultPendingTTL)
	}
	used := opts.UsedCodes
	if used == nil {
		used = NewMemoryUsedCodeStore(DefaultUsedCodeTTL)
	}
	return &Guard{
		provider:    opts.Provider,
		oauth:       opts.OAuth,
		userInfoURL: opts.UserInfoURL,
		pkce:        opts.PKCE,
		production:  opts.Production,
		pending:     pending,
		used:        used,
		users:       opts.Users,
		signer:      opts.Signer,
		client:      client,
	}
}

// Begin starts a new authorization flow and returns the provider consent
// URL. One pending-state entry is created per call.
func (g *Guard) Begin() (string, error) {
	if g.oauth.ClientID == "" || g.oauth.RedirectURL == "" {
		return "", flowErr(CodeServerConfig, g.provider+" oauth client id or callback url unset")
	}
	if g.production && !strings.HasPrefix(g.oauth.RedirectURL, "https://") {
		return "", flowErr(CodeServerConfig, "production callback url must use https")
	}

	state := NewState()
	var opts []oauth2.AuthCodeOption
	if g.pkce {
		verifier := oauth2.GenerateVerifier()
		g.pending.Put(state, verifier)
		opts = append(opts, oauth2.S256ChallengeOption(verifier))
	} else {
		g.pending.Put(state, "")
	}

	log.Printf("✅ [%s] initiating oauth flow (state %s...)", g.provider, state[:10])
	return g.oauth.AuthCodeURL(state, opts...), nil
}

// HandleCallback runs the callback pipeline: provider error, missing code,
// state binding, replay check, token exchange, profile fetch, identity
// resolution, session issuance. Every failure is terminal; the user restarts
// from Begin.
func (g *Guard) HandleCallback(ctx context.Context, cb Callback) (*Result, error) {
	reqID := logging.GetRequestID(ctx)

	if cb.ErrorParam != "" {
		log.Printf("❌ [%s][%s] provider reported error: %s (%s)", g.provider, reqID, cb.ErrorParam, cb.ErrorDescription)
		return nil, flowErr(CodeProviderDenied, "provider error: "+cb.ErrorParam)
	}

	if cb.Code == "" {
		return nil, flowErr(CodeMissingCode, "no authorization code in callback")
	}

	verifier, ok := g.pending.Take(cb.State)
	if !ok {
		log.Printf("❌ [%s][%s] unknown or expired state", g.provider, reqID)
		return nil, flowErr(CodeInvalidState, "state not found or expired")
	}

	// Record the code before the network round-trip so a concurrent
	// duplicate callback is rejected even while the exchange is in flight.
	if !g.used.MarkIfNew(cb.Code) {
		log.Printf("⚠️  [%s][%s] authorization code already used: %s...", g.provider, reqID, cb.Code[:min(10, len(cb.Code))])
		return &Result{Duplicate: true}, nil
	}

	if g.oauth.ClientID == "" || g.oauth.ClientSecret == "" || g.oauth.RedirectURL == "" {
		return nil, flowErr(CodeServerConfig, g.provider+" oauth credentials not configured")
	}

	token, err := g.exchange(ctx, cb.Code, verifier)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ [%s][%s] access token received", g.provider, reqID)

	profile, err := g.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}
	if profile.Email == "" {
		log.Printf("❌ [%s][%s] no email in provider profile", g.provider, reqID)
		return nil, flowErr(CodeNoEmail, "provider profile has no email")
	}
	log.Printf("✅ [%s][%s] profile received for %s", g.provider, reqID, profile.Email)

	user, err := g.resolveUser(ctx, profile)
	if err != nil {
		return nil, flowErrWrap(CodeOAuthFailed, "user store failure", err)
	}

	session, err := g.signer.Sign(user.ID, user.Email, true)
	if err != nil {
		return nil, flowErrWrap(CodeOAuthFailed, "session signing failure", err)
	}

	log.Printf("🎉 [%s][%s] verification complete for user %d", g.provider, reqID, user.ID)
	return &Result{UserID: user.ID, Email: user.Email, SessionToken: session}, nil
}

func (g *Guard) timeout() time.Duration {
	if g.client.Timeout > 0 {
		return g.client.Timeout
	}
	return defaultHTTPTimeout
}

// exchange performs the single outbound token request. The redirect URI sent
// here is the same configured value used by Begin, byte for byte.
func (g *Guard) exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout())
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)

	var opts []oauth2.AuthCodeOption
	if g.pkce && verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	token, err := g.oauth.Exchange(ctx, code, opts...)
	if err != nil {
		// The full error may include the provider's error body; never
		// the client secret or a token.
		log.Printf("❌ [%s] token exchange failed: %s", g.provider, util.TruncateLog(err.Error(), 512))
		return nil, flowErrWrap(CodeExchangeFailed, "token exchange failed", err)
	}
	if token.AccessToken == "" {
		return nil, flowErr(CodeExchangeFailed, "no access token in provider response")
	}
	return token, nil
}

type providerProfile struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

func (g *Guard) fetchProfile(ctx context.Context, token *oauth2.Token) (*providerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, flowErrWrap(CodeOAuthFailed, "build profile request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, flowErrWrap(CodeOAuthFailed, "profile fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, flowErr(CodeOAuthFailed, fmt.Sprintf("profile endpoint returned %d: %s", resp.StatusCode, util.TruncateBytes(body)))
	}

	var profile providerProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, flowErrWrap(CodeOAuthFailed, "decode profile response", err)
	}
	return &profile, nil
}

func (g *Guard) resolveUser(ctx context.Context, profile *providerProfile) (*User, error) {
	existing, err := g.users.FindVerificationTarget(ctx, profile.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := g.users.MarkIdentityVerified(ctx, existing.ID, profile.Subject); err != nil {
			return nil, err
		}
		log.Printf("✅ [%s] updated existing user %d", g.provider, existing.ID)
		return existing, nil
	}

	created, err := g.users.CreateVerifiedUser(ctx, Identity{
		Provider: g.provider,
		Subject:  profile.Subject,
		Email:    profile.Email,
		Name:     profile.Name,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ [%s] created new user %d", g.provider, created.ID)
	return created, nil
}
