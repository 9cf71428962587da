package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/zaydhassan/AspireOn/internal/model"
	"github.com/zaydhassan/AspireOn/internal/model/mocks"
	"github.com/zaydhassan/AspireOn/internal/validate"
)

type fixture struct {
	profiles  *mocks.MockProfileStore
	insights  *mocks.MockInsightStore
	generator *mocks.MockInsightGenerator
	svc       *Service
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		profiles:  mocks.NewMockProfileStore(ctrl),
		insights:  mocks.NewMockInsightStore(ctrl),
		generator: mocks.NewMockInsightGenerator(ctrl),
		now:       time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.profiles, f.insights, f.generator, slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.svc.clock = func() time.Time { return f.now }
	return f
}

func validForm() validate.OnboardingForm {
	return validate.OnboardingForm{
		Industry:    "tech",
		SubIndustry: "Software Development",
		Bio:         "Backend engineer",
		Experience:  "6",
		Skills:      "Go, Postgres",
	}
}

func payload() model.InsightPayload {
	return model.InsightPayload{
		SalaryRanges:      []model.SalaryRange{{Role: "Engineer", Min: 1, Median: 2, Max: 3}},
		GrowthRate:        3,
		DemandLevel:       model.DemandHigh,
		MarketOutlook:     model.OutlookPositive,
		TopSkills:         []string{"Go"},
		KeyTrends:         []string{"AI"},
		RecommendedSkills: []string{"Rust"},
	}
}

func TestOnboard_CreatesMissingInsight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const industry = "tech-software-development"

	gomock.InOrder(
		f.insights.EXPECT().Get(ctx, industry).Return(nil, model.ErrInsightNotFound),
		f.generator.EXPECT().Generate(ctx, industry).Return(payload(), nil),
		f.insights.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, in model.IndustryInsight) error {
				assert.Equal(t, industry, in.Industry)
				assert.True(t, in.LastUpdated.Equal(f.now))
				assert.Equal(t, model.RefreshInterval, in.NextUpdate.Sub(in.LastUpdated))
				return nil
			}),
		f.profiles.EXPECT().GetProfile(ctx, "user-1").Return(nil, model.ErrProfileNotFound),
		f.profiles.EXPECT().UpsertProfile(ctx, gomock.Any()).Return(nil),
	)

	p, err := f.svc.Onboard(ctx, "user-1", validForm())
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, industry, p.Industry)
	assert.Equal(t, 6, p.ExperienceYears)
	assert.Equal(t, []string{"Go", "Postgres"}, p.Skills)
	assert.NotEqual(t, uuid.Nil, p.ID)
}

func TestOnboard_ExistingInsightIsNotRegenerated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	existing := model.NewIndustryInsight("tech-software-development", payload(), f.now.Add(-time.Hour))
	f.insights.EXPECT().Get(ctx, "tech-software-development").Return(&existing, nil)
	f.profiles.EXPECT().GetProfile(ctx, "user-1").Return(nil, model.ErrProfileNotFound)
	f.profiles.EXPECT().UpsertProfile(ctx, gomock.Any()).Return(nil)

	_, err := f.svc.Onboard(ctx, "user-1", validForm())
	require.NoError(t, err)
}

func TestOnboard_InvalidFormWritesNothing(t *testing.T) {
	f := newFixture(t)
	form := validForm()
	form.Industry = ""
	form.Experience = "80"

	_, err := f.svc.Onboard(context.Background(), "user-1", form)

	var fe validate.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "industry")
	assert.Contains(t, fe, "experience")
}

func TestOnboard_GenerationFailureAbortsOnboarding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.insights.EXPECT().Get(ctx, gomock.Any()).Return(nil, model.ErrInsightNotFound)
	f.generator.EXPECT().Generate(ctx, gomock.Any()).
		Return(model.InsightPayload{}, model.ErrMalformedAIResponse)

	_, err := f.svc.Onboard(ctx, "user-1", validForm())
	require.Error(t, err)
	assert.Equal(t, model.KindMalformedResponse, model.Classify(err))
}

func TestOnboard_LookupFailureIsReturned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("database is locked")

	f.insights.EXPECT().Get(ctx, gomock.Any()).Return(nil, boom)

	_, err := f.svc.Onboard(ctx, "user-1", validForm())
	assert.ErrorIs(t, err, boom)
}

func TestOnboard_ProfileWriteFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := model.NewIndustryInsight("tech-software-development", payload(), f.now)

	f.insights.EXPECT().Get(ctx, gomock.Any()).Return(&existing, nil)
	f.profiles.EXPECT().GetProfile(ctx, "user-1").Return(nil, model.ErrProfileNotFound)
	f.profiles.EXPECT().UpsertProfile(ctx, gomock.Any()).Return(model.ErrStoreWrite)

	_, err := f.svc.Onboard(ctx, "user-1", validForm())
	assert.ErrorIs(t, err, model.ErrStoreWrite)
}

func TestOnboard_ReonboardingKeepsIDAndSwitchesIndustry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := uuid.New()
	existing := model.NewIndustryInsight("finance-banking", payload(), f.now)

	f.insights.EXPECT().Get(ctx, "finance-banking").Return(&existing, nil)
	f.profiles.EXPECT().GetProfile(ctx, "user-1").Return(&model.UserProfile{
		ID: id, UserID: "user-1", Industry: "tech-software-development",
	}, nil)
	f.profiles.EXPECT().UpsertProfile(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, p model.UserProfile) error {
			assert.Equal(t, id, p.ID)
			assert.Equal(t, "finance-banking", p.Industry)
			return nil
		})

	form := validForm()
	form.Industry = "finance"
	form.SubIndustry = "Banking"
	p, err := f.svc.Onboard(ctx, "user-1", form)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
}

func TestOnboard_ProfileReadFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := model.NewIndustryInsight("tech-software-development", payload(), f.now)
	boom := errors.New("database is locked")

	f.insights.EXPECT().Get(ctx, gomock.Any()).Return(&existing, nil)
	f.profiles.EXPECT().GetProfile(ctx, "user-1").Return(nil, boom)

	_, err := f.svc.Onboard(ctx, "user-1", validForm())
	assert.ErrorIs(t, err, boom)
}

func TestOnboard_PaddedIndustryKeysTrimmedID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := model.NewIndustryInsight("tech-ai", payload(), f.now)

	f.insights.EXPECT().Get(ctx, "tech-ai").Return(&existing, nil)
	f.profiles.EXPECT().GetProfile(ctx, "user-1").Return(nil, model.ErrProfileNotFound)
	f.profiles.EXPECT().UpsertProfile(ctx, gomock.Any()).Return(nil)

	form := validForm()
	form.Industry = " tech "
	form.SubIndustry = " AI "
	p, err := f.svc.Onboard(ctx, "user-1", form)
	require.NoError(t, err)
	assert.Equal(t, "tech-ai", p.Industry)
	assert.Equal(t, "AI", p.SubIndustry)
}
