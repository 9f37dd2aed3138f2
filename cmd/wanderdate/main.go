package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/wanderdate/wanderdate/internal/api/handlers"
	"github.com/wanderdate/wanderdate/internal/api/middleware"
	"github.com/wanderdate/wanderdate/internal/auth/linkedin"
	"github.com/wanderdate/wanderdate/internal/auth/oauthflow"
	"github.com/wanderdate/wanderdate/internal/auth/session"
	"github.com/wanderdate/wanderdate/internal/config"
	"github.com/wanderdate/wanderdate/internal/db"
	"github.com/wanderdate/wanderdate/internal/providers/catalog"
	"github.com/wanderdate/wanderdate/internal/spotify"
	"github.com/wanderdate/wanderdate/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	providerCatalog, err := catalog.Load(cfg.ProvidersConfig)
	if err != nil {
		log.Fatalf("Failed to load provider catalog: %v", err)
	}
	if !providerCatalog.Enabled(linkedin.ProviderID) {
		log.Fatalf("Provider %q is disabled in the catalog", linkedin.ProviderID)
	}
	linkedinProvider, _ := providerCatalog.Get(linkedin.ProviderID)
	log.Printf("✅ Identity providers loaded: %v", providerCatalog.IDs())

	userStore := users.NewStore(database)
	signer := session.NewSigner(cfg.JWTSecret)

	// Expired pending-state and used-code entries are swept out of band;
	// lookups also treat expired entries as not found.
	pending := oauthflow.NewMemoryPendingStore(oauthflow.DefaultPendingTTL)
	usedCodes := oauthflow.NewMemoryUsedCodeStore(oauthflow.DefaultUsedCodeTTL)
	stopSweep := oauthflow.StartSweeper(30*time.Second, pending, usedCodes)
	defer stopSweep()

	guard := oauthflow.NewGuard(oauthflow.Options{
		Provider:    linkedin.ProviderID,
		OAuth:       linkedin.OAuthConfig(cfg.LinkedIn, linkedinProvider),
		UserInfoURL: linkedinProvider.UserInfoURL,
		PKCE:        cfg.LinkedIn.PKCE,
		Production:  cfg.IsProduction(),
		Pending:     pending,
		UsedCodes:   usedCodes,
		Users:       userStore,
		Signer:      signer,
	})

	spotifyClient := spotify.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, "", "")

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// OAuth verification flow
	r.Route("/auth/linkedin", func(r chi.Router) {
		r.Get("/", linkedin.HandleLogin(guard))
		r.Get("/callback", linkedin.HandleCallback(guard, cfg.FrontendURL))
		r.Get("/debug", linkedin.HandleDebug(cfg))
	})

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Get("/spotify/search", handlers.SpotifySearchHandler(spotifyClient))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(signer))

			r.Route("/user", func(r chi.Router) {
				r.Get("/profile", handlers.GetProfileHandler(userStore))
				r.Post("/profile", handlers.SaveProfileHandler(userStore))
				r.Put("/profile", handlers.UpdateProfileHandler(userStore))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(cfg, userStore))
				r.Get("/users", handlers.ListUsersHandler(userStore))
				r.Get("/waitlist", handlers.WaitlistHandler(userStore))
				r.Put("/users/{id}/approval", handlers.SetApprovalHandler(userStore))
			})
		})
	})

	log.Printf("🚀 wanderdate backend starting on http://%s", cfg.Addr())
	log.Printf("🔗 LinkedIn verification: http://%s/auth/linkedin", cfg.Addr())
	log.Printf("🌐 Frontend: %s", cfg.FrontendURL)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
