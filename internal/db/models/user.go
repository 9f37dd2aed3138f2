package models

import "time"

// User is a dating-app member. Identity-verification fields (LinkedIn*) are
// written by the OAuth guard; approval gates access behind the admin
// waitlist review.
type User struct {
	ID    uint   `gorm:"primaryKey"`
	Email string `gorm:"uniqueIndex"`

	FirstName                  string
	LastName                   string
	Gender                     string
	DOB                        *time.Time
	CurrentLocation            string
	FavouriteTravelDestination string
	LastHolidayPlaces          string // JSON array
	FavouritePlacesToGo        string // JSON array
	ProfilePicURL              string
	Intent                     string // JSON blob of intent answers and lifestyle images

	LinkedInSubject  string
	LinkedInVerified bool `gorm:"default:false"`

	Approval           bool `gorm:"default:false"`
	OnboardingComplete bool `gorm:"default:false"`
	IsPrivate          bool `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
