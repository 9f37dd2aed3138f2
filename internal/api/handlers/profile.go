package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/wanderdate/wanderdate/internal/api/middleware"
	"github.com/wanderdate/wanderdate/internal/users"
)

// profileRequest carries onboarding/profile fields from the frontend.
// Pointers distinguish "absent" from "set to zero value" on partial updates.
type profileRequest struct {
	FirstName                  *string         `json:"firstName"`
	LastName                   *string         `json:"lastName"`
	Gender                     *string         `json:"gender"`
	DOB                        *string         `json:"dob"` // ISO date
	CurrentLocation            *string         `json:"currentLocation"`
	FavouriteTravelDestination *string         `json:"favouriteTravelDestination"`
	LastHolidayPlaces          []string        `json:"lastHolidayPlaces"`
	FavouritePlacesToGo        []string        `json:"favouritePlacesToGo"`
	ProfilePicURL              *string         `json:"profilePicUrl"`
	Intent                     map[string]any  `json:"intent"`
	OnboardingComplete         *bool           `json:"onboardingComplete"`
	IsPrivate                  *bool           `json:"isPrivate"`
}

// GetProfileHandler returns the authenticated user's profile.
func GetProfileHandler(store *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.ClaimsFromContext(r.Context())
		user, err := store.Get(r.Context(), claims.UserID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if user == nil {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondJSON(w, http.StatusOK, toProfileResponse(user))
	}
}

// SaveProfileHandler overwrites onboarding profile fields. Saving a profile
// always sends the user back through admin review.
func SaveProfileHandler(store *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.ClaimsFromContext(r.Context())
		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		fields := map[string]any{
			"first_name":                   strOrEmpty(req.FirstName),
			"last_name":                    strOrEmpty(req.LastName),
			"gender":                       strOrEmpty(req.Gender),
			"current_location":             strOrEmpty(req.CurrentLocation),
			"favourite_travel_destination": strOrEmpty(req.FavouriteTravelDestination),
			"last_holiday_places":          mustJSON(orEmptyList(req.LastHolidayPlaces)),
			"favourite_places_to_go":       mustJSON(orEmptyList(req.FavouritePlacesToGo)),
			"profile_pic_url":              strOrEmpty(req.ProfilePicURL),
			"approval":                     false,
		}
		if dob, ok := parseDOB(req.DOB); ok {
			fields["dob"] = dob
		}

		if err := store.UpdateFields(r.Context(), claims.UserID, fields); err != nil {
			log.Printf("❌ save profile: %v", err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "Profile saved successfully"})
	}
}

// UpdateProfileHandler applies a partial profile update. Intent blobs merge
// key-by-key; completing onboarding puts the user on the waitlist by
// resetting approval.
func UpdateProfileHandler(store *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.ClaimsFromContext(r.Context())
		current, err := store.Get(r.Context(), claims.UserID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if current == nil {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}

		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		fields := map[string]any{}
		setStr := func(column string, v *string) {
			if v != nil {
				fields[column] = *v
			}
		}
		setStr("first_name", req.FirstName)
		setStr("last_name", req.LastName)
		setStr("gender", req.Gender)
		setStr("current_location", req.CurrentLocation)
		setStr("favourite_travel_destination", req.FavouriteTravelDestination)
		setStr("profile_pic_url", req.ProfilePicURL)
		if dob, ok := parseDOB(req.DOB); ok {
			fields["dob"] = dob
		}
		if req.LastHolidayPlaces != nil {
			fields["last_holiday_places"] = mustJSON(req.LastHolidayPlaces)
		}
		if req.FavouritePlacesToGo != nil {
			fields["favourite_places_to_go"] = mustJSON(req.FavouritePlacesToGo)
		}
		if req.Intent != nil {
			merged := parseJSONMap(current.Intent)
			for k, v := range req.Intent {
				merged[k] = v
			}
			fields["intent"] = mustJSON(merged)
		}
		if req.IsPrivate != nil {
			fields["is_private"] = *req.IsPrivate
		}
		if req.OnboardingComplete != nil {
			fields["onboarding_complete"] = *req.OnboardingComplete
			if *req.OnboardingComplete {
				// Finished onboarding goes to the waitlist for review.
				fields["approval"] = false
			}
		}

		if len(fields) == 0 {
			respondJSON(w, http.StatusOK, map[string]string{"message": "Nothing to update"})
			return
		}

		if err := store.UpdateFields(r.Context(), claims.UserID, fields); err != nil {
			log.Printf("❌ update profile: %v", err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
	}
}

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func orEmptyList(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func parseDOB(v *string) (time.Time, bool) {
	if v == nil || *v == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, *v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
