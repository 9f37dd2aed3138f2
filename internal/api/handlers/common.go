// Package handlers implements the JSON API: profile CRUD, admin moderation,
// and the Spotify search proxy.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/wanderdate/wanderdate/internal/db/models"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// parseJSONList tolerates empty and malformed stored JSON, returning an
// empty slice rather than failing the request.
func parseJSONList(s string) []string {
	if s == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		log.Printf("⚠️  stored JSON list unparseable: %v", err)
		return []string{}
	}
	return out
}

// parseJSONMap tolerates empty and malformed stored JSON, returning an
// empty map rather than failing the request.
func parseJSONMap(s string) map[string]any {
	if s == "" {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		log.Printf("⚠️  stored JSON blob unparseable: %v", err)
		return map[string]any{}
	}
	return out
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// profileResponse is the camelCase API shape of a user profile.
type profileResponse struct {
	ID                         uint           `json:"id"`
	Email                      string         `json:"email"`
	FirstName                  string         `json:"firstName,omitempty"`
	LastName                   string         `json:"lastName,omitempty"`
	Gender                     string         `json:"gender,omitempty"`
	DOB                        *time.Time     `json:"dob,omitempty"`
	CurrentLocation            string         `json:"currentLocation,omitempty"`
	FavouriteTravelDestination string         `json:"favouriteTravelDestination,omitempty"`
	LastHolidayPlaces          []string       `json:"lastHolidayPlaces"`
	FavouritePlacesToGo        []string       `json:"favouritePlacesToGo"`
	ProfilePicURL              string         `json:"profilePicUrl,omitempty"`
	Intent                     map[string]any `json:"intent"`
	LinkedInVerified           bool           `json:"linkedinVerified"`
	OnboardingComplete         bool           `json:"onboardingComplete"`
	Approval                   bool           `json:"approval"`
	IsPrivate                  bool           `json:"isPrivate"`
	CreatedAt                  time.Time      `json:"createdAt"`
	UpdatedAt                  time.Time      `json:"updatedAt"`
}

func toProfileResponse(u *models.User) profileResponse {
	return profileResponse{
		ID:                         u.ID,
		Email:                      u.Email,
		FirstName:                  u.FirstName,
		LastName:                   u.LastName,
		Gender:                     u.Gender,
		DOB:                        u.DOB,
		CurrentLocation:            u.CurrentLocation,
		FavouriteTravelDestination: u.FavouriteTravelDestination,
		LastHolidayPlaces:          parseJSONList(u.LastHolidayPlaces),
		FavouritePlacesToGo:        parseJSONList(u.FavouritePlacesToGo),
		ProfilePicURL:              u.ProfilePicURL,
		Intent:                     parseJSONMap(u.Intent),
		LinkedInVerified:           u.LinkedInVerified,
		OnboardingComplete:         u.OnboardingComplete,
		Approval:                   u.Approval,
		IsPrivate:                  u.IsPrivate,
		CreatedAt:                  u.CreatedAt,
		UpdatedAt:                  u.UpdatedAt,
	}
}
