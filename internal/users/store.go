// Package users is the user-storage collaborator: lookup by email, creation
// with verification flags, identity updates, profile CRUD and moderation
// queries.
package users

import (
	"context"
	"errors"

	"github.com/wanderdate/wanderdate/internal/auth/oauthflow"
	"github.com/wanderdate/wanderdate/internal/db/models"
	"gorm.io/gorm"
)

// Store provides database-backed user operations.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a Store backed by the given gorm DB.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the user with the given id.
func (s *Store) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns the user with the given email, or nil when absent.
// Matching is exact and case-sensitive.
func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindVerificationTarget implements oauthflow.UserStore.
func (s *Store) FindVerificationTarget(ctx context.Context, email string) (*oauthflow.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}
	return &oauthflow.User{ID: user.ID, Email: user.Email}, nil
}

// CreateVerifiedUser implements oauthflow.UserStore. The new user starts
// unapproved and with onboarding incomplete.
func (s *Store) CreateVerifiedUser(ctx context.Context, ident oauthflow.Identity) (*oauthflow.User, error) {
	user := models.User{
		Email:            ident.Email,
		LinkedInSubject:  ident.Subject,
		LinkedInVerified: true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &oauthflow.User{ID: user.ID, Email: user.Email}, nil
}

// MarkIdentityVerified implements oauthflow.UserStore. Only the
// identity-verification fields change; profile data is left alone.
func (s *Store) MarkIdentityVerified(ctx context.Context, userID uint, subject string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]any{
			"linked_in_subject":  subject,
			"linked_in_verified": true,
		}).Error
}

// UpdateFields applies a partial column update to one user.
func (s *Store) UpdateFields(ctx context.Context, userID uint, fields map[string]any) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(fields).Error
}

// ListAll returns every user, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.User, error) {
	var list []models.User
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}

// ListWaitlist returns users who completed onboarding but are not approved.
func (s *Store) ListWaitlist(ctx context.Context) ([]models.User, error) {
	var list []models.User
	err := s.db.WithContext(ctx).
		Where("onboarding_complete = ? AND approval = ?", true, false).
		Order("created_at DESC").Find(&list).Error
	return list, err
}

// SetApproval flips the admin approval flag on one user.
func (s *Store) SetApproval(ctx context.Context, userID uint, approved bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("approval", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
