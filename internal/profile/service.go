package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zaydhassan/AspireOn/internal/model"
	"github.com/zaydhassan/AspireOn/internal/validate"
)

// Service completes user onboarding. The first profile that names an
// industry also creates that industry's insight record.
type Service struct {
	profiles  model.ProfileStore
	insights  model.InsightStore
	generator model.InsightGenerator
	clock     func() time.Time
	logger    *slog.Logger
}

// NewService wires the onboarding flow. The generator is only called for
// industries that have no stored insight yet.
func NewService(
	profiles model.ProfileStore,
	insights model.InsightStore,
	generator model.InsightGenerator,
	logger *slog.Logger,
) *Service {
	return &Service{
		profiles:  profiles,
		insights:  insights,
		generator: generator,
		clock:     time.Now,
		logger:    logger,
	}
}

// Onboard validates form, makes sure an insight exists for the chosen
// industry and saves the profile of userID. Re-onboarding keeps the profile's
// ID. Invalid input returns a validate.FieldErrors and writes nothing.
func (s *Service) Onboard(ctx context.Context, userID string, form validate.OnboardingForm) (*model.UserProfile, error) {
	in, err := validate.ParseOnboarding(form)
	if err != nil {
		return nil, err
	}
	industry := validate.IndustryID(in.Industry, in.SubIndustry)

	if err := s.ensureInsight(ctx, industry); err != nil {
		return nil, err
	}

	prev, err := s.profiles.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, model.ErrProfileNotFound) {
		return nil, fmt.Errorf("reading profile for %s: %w", userID, err)
	}

	p := model.UserProfile{
		ID:              uuid.New(),
		UserID:          userID,
		Industry:        industry,
		SubIndustry:     in.SubIndustry,
		Bio:             in.Bio,
		ExperienceYears: in.Experience,
		Skills:          in.Skills,
		UpdatedAt:       s.clock(),
	}
	if prev != nil {
		p.ID = prev.ID
	}
	if err := s.profiles.UpsertProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("saving profile for %s: %w", userID, err)
	}

	switch {
	case prev == nil:
		s.logger.Info("user onboarded", "user_id", userID, "industry", industry)
	case prev.Industry != industry:
		s.logger.Info("user changed industry", "user_id", userID, "industry", industry, "previous_industry", prev.Industry)
	default:
		s.logger.Info("user profile updated", "user_id", userID, "industry", industry)
	}
	return &p, nil
}

func (s *Service) ensureInsight(ctx context.Context, industry string) error {
	_, err := s.insights.Get(ctx, industry)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrInsightNotFound) {
		return fmt.Errorf("looking up insight for %s: %w", industry, err)
	}

	payload, err := s.generator.Generate(ctx, industry)
	if err != nil {
		return fmt.Errorf("generating insight for %s: %w", industry, err)
	}
	if err := s.insights.Upsert(ctx, model.NewIndustryInsight(industry, payload, s.clock())); err != nil {
		return fmt.Errorf("storing insight for %s: %w", industry, err)
	}

	s.logger.Info("created industry insight", "industry", industry)
	return nil
}
