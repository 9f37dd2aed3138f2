package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wanderdate/wanderdate/internal/db/models"
	"github.com/wanderdate/wanderdate/internal/users"
	"gorm.io/gorm"
)

// adminUser is the moderation view of a member, with derived review fields.
type adminUser struct {
	profileResponse
	Age           *int `json:"age"`
	HasProfilePic bool `json:"hasProfilePic"`
}

func toAdminUser(u *models.User) adminUser {
	out := adminUser{
		profileResponse: toProfileResponse(u),
		HasProfilePic:   u.ProfilePicURL != "",
	}
	if u.DOB != nil {
		years := int(time.Since(*u.DOB).Hours() / (24 * 365.25))
		out.Age = &years
	}
	return out
}

// ListUsersHandler returns all members with review totals.
func ListUsersHandler(store *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListAll(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		out := make([]adminUser, 0, len(list))
		var approved, pending, completed int
		for i := range list {
			u := &list[i]
			out = append(out, toAdminUser(u))
			if u.Approval {
				approved++
			} else {
				pending++
			}
			if u.OnboardingComplete {
				completed++
			}
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"users":               out,
			"total":               len(out),
			"approved":            approved,
			"pending":             pending,
			"completedOnboarding": completed,
		})
	}
}

// WaitlistHandler returns members awaiting approval.
func WaitlistHandler(store *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListWaitlist(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		out := make([]adminUser, 0, len(list))
		for i := range list {
			out = append(out, toAdminUser(&list[i]))
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"users": out,
			"total": len(out),
		})
	}
}

// SetApprovalHandler approves or un-approves one member.
func SetApprovalHandler(store *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid user id")
			return
		}

		var req struct {
			Approval *bool `json:"approval"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Approval == nil {
			respondError(w, http.StatusBadRequest, "Request body must set approval")
			return
		}

		if err := store.SetApproval(r.Context(), uint(userID), *req.Approval); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(w, http.StatusNotFound, "User not found")
				return
			}
			log.Printf("❌ set approval: %v", err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"message":  "Approval updated",
			"userId":   userID,
			"approval": *req.Approval,
		})
	}
}
