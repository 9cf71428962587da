//go:generate mockgen -source=profile.go -destination=mocks/profile_mock.go -package=mocks

package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserProfile is the onboarding data kept per user. Industry holds the
// composed "<industry>-<sub-industry>" identifier that insights are keyed by.
type UserProfile struct {
	ID              uuid.UUID
	UserID          string
	Industry        string
	SubIndustry     string
	Bio             string
	ExperienceYears int
	Skills          []string
	UpdatedAt       time.Time
}

// ProfileStore persists user profiles keyed by UserID.
type ProfileStore interface {
	// GetProfile returns the profile of userID or ErrProfileNotFound.
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	UpsertProfile(ctx context.Context, p UserProfile) error
}
