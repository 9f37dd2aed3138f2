package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/wanderdate/wanderdate/internal/api/middleware"
	"github.com/wanderdate/wanderdate/internal/auth/session"
	"github.com/wanderdate/wanderdate/internal/config"
	"github.com/wanderdate/wanderdate/internal/db/models"
	"github.com/wanderdate/wanderdate/internal/users"
	"gorm.io/gorm"
)

type testAPI struct {
	router *chi.Mux
	store  *users.Store
	db     *gorm.DB
	signer *session.Signer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	store := users.NewStore(db)
	signer := session.NewSigner("test-secret")
	cfg := &config.Config{AdminEmails: []string{"admin@x.com"}}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(signer))
		r.Get("/api/user/profile", GetProfileHandler(store))
		r.Post("/api/user/profile", SaveProfileHandler(store))
		r.Put("/api/user/profile", UpdateProfileHandler(store))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(cfg, store))
			r.Get("/api/admin/users", ListUsersHandler(store))
			r.Get("/api/admin/waitlist", WaitlistHandler(store))
			r.Put("/api/admin/users/{id}/approval", SetApprovalHandler(store))
		})
	})
	return &testAPI{router: r, store: store, db: db, signer: signer}
}

func (a *testAPI) seedUser(t *testing.T, u *models.User) {
	t.Helper()
	if err := a.db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func (a *testAPI) request(t *testing.T, method, path string, user *models.User, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != nil {
		token, err := a.signer.Sign(user.ID, user.Email, true)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestGetProfile(t *testing.T) {
	api := newTestAPI(t)
	user := models.User{
		Email:             "a@x.com",
		FirstName:         "Ada",
		LastHolidayPlaces: `["Lisbon","Kyoto"]`,
		Intent:            `{"lookingFor":"travel partner"}`,
		LinkedInVerified:  true,
	}
	api.seedUser(t, &user)

	rec := api.request(t, http.MethodGet, "/api/user/profile", &user, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var got profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FirstName != "Ada" {
		t.Errorf("firstName = %q", got.FirstName)
	}
	if len(got.LastHolidayPlaces) != 2 || got.LastHolidayPlaces[0] != "Lisbon" {
		t.Errorf("lastHolidayPlaces = %v", got.LastHolidayPlaces)
	}
	if got.Intent["lookingFor"] != "travel partner" {
		t.Errorf("intent = %v", got.Intent)
	}
	if !got.LinkedInVerified {
		t.Error("linkedinVerified not surfaced")
	}
}

func TestGetProfileToleratesMalformedStoredJSON(t *testing.T) {
	api := newTestAPI(t)
	user := models.User{Email: "a@x.com", LastHolidayPlaces: "{broken"}
	api.seedUser(t, &user)

	rec := api.request(t, http.MethodGet, "/api/user/profile", &user, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, malformed stored JSON must not fail the request", rec.Code)
	}
	var got profileResponse
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.LastHolidayPlaces == nil || len(got.LastHolidayPlaces) != 0 {
		t.Errorf("lastHolidayPlaces = %v, want empty list", got.LastHolidayPlaces)
	}
}

func TestSaveProfileResetsApproval(t *testing.T) {
	api := newTestAPI(t)
	user := models.User{Email: "a@x.com", Approval: true}
	api.seedUser(t, &user)

	body := `{"firstName":"Ada","lastName":"Lovelace","lastHolidayPlaces":["Lisbon"]}`
	rec := api.request(t, http.MethodPost, "/api/user/profile", &user, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	got, _ := api.store.Get(context.Background(), user.ID)
	if got.FirstName != "Ada" {
		t.Errorf("firstName = %q", got.FirstName)
	}
	if got.Approval {
		t.Error("saving a profile must reset approval for review")
	}
}

func TestUpdateProfileMergesIntent(t *testing.T) {
	api := newTestAPI(t)
	user := models.User{Email: "a@x.com", Intent: `{"lookingFor":"travel partner","pace":"slow"}`}
	api.seedUser(t, &user)

	body := `{"intent":{"pace":"fast"}}`
	rec := api.request(t, http.MethodPut, "/api/user/profile", &user, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	got, _ := api.store.Get(context.Background(), user.ID)
	intent := parseJSONMap(got.Intent)
	if intent["pace"] != "fast" {
		t.Errorf("pace = %v, want fast", intent["pace"])
	}
	if intent["lookingFor"] != "travel partner" {
		t.Error("unrelated intent keys must survive the merge")
	}
}

func TestUpdateProfileOnboardingCompleteWaitlists(t *testing.T) {
	api := newTestAPI(t)
	user := models.User{Email: "a@x.com", Approval: true}
	api.seedUser(t, &user)

	rec := api.request(t, http.MethodPut, "/api/user/profile", &user, `{"onboardingComplete":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	got, _ := api.store.Get(context.Background(), user.ID)
	if !got.OnboardingComplete {
		t.Error("onboardingComplete not persisted")
	}
	if got.Approval {
		t.Error("completing onboarding must move the user to the waitlist")
	}
}

func TestUpdateProfilePartialLeavesOtherFields(t *testing.T) {
	api := newTestAPI(t)
	user := models.User{Email: "a@x.com", FirstName: "Ada", CurrentLocation: "Lisbon"}
	api.seedUser(t, &user)

	rec := api.request(t, http.MethodPut, "/api/user/profile", &user, `{"firstName":"Grace"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	got, _ := api.store.Get(context.Background(), user.ID)
	if got.FirstName != "Grace" || got.CurrentLocation != "Lisbon" {
		t.Errorf("got %q/%q, want Grace/Lisbon", got.FirstName, got.CurrentLocation)
	}
}

func TestAdminListUsersTotals(t *testing.T) {
	api := newTestAPI(t)
	admin := models.User{Email: "admin@x.com"}
	api.seedUser(t, &admin)
	api.seedUser(t, &models.User{Email: "b@x.com", Approval: true, OnboardingComplete: true})
	api.seedUser(t, &models.User{Email: "c@x.com"})

	rec := api.request(t, http.MethodGet, "/api/admin/users", &admin, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var got struct {
		Total    int `json:"total"`
		Approved int `json:"approved"`
		Pending  int `json:"pending"`
	}
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Total != 3 || got.Approved != 1 || got.Pending != 2 {
		t.Errorf("totals = %+v, want total=3 approved=1 pending=2", got)
	}
}

func TestAdminApproval(t *testing.T) {
	api := newTestAPI(t)
	admin := models.User{Email: "admin@x.com"}
	member := models.User{Email: "b@x.com", OnboardingComplete: true}
	api.seedUser(t, &admin)
	api.seedUser(t, &member)

	path := fmt.Sprintf("/api/admin/users/%d/approval", member.ID)
	rec := api.request(t, http.MethodPut, path, &admin, `{"approval":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	got, _ := api.store.Get(context.Background(), member.ID)
	if !got.Approval {
		t.Error("approval not persisted")
	}

	// The waitlist no longer contains the approved member.
	rec = api.request(t, http.MethodGet, "/api/admin/waitlist", &admin, "")
	var wl struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &wl)
	if wl.Total != 0 {
		t.Errorf("waitlist total = %d, want 0", wl.Total)
	}
}

func TestAdminApprovalUnknownUser(t *testing.T) {
	api := newTestAPI(t)
	admin := models.User{Email: "admin@x.com"}
	api.seedUser(t, &admin)

	rec := api.request(t, http.MethodPut, "/api/admin/users/999/approval", &admin, `{"approval":true}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
