package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaydhassan/AspireOn/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPostgresTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("ASPIREON_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ASPIREON_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewPostgresStore(ctx, url, 4, discardLogger())
	if err != nil {
		t.Skip("Test database not available:", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStore_UpsertIsIdempotent(t *testing.T) {
	s := newPostgresTestStore(t)
	ctx := context.Background()
	industry := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), "DELETE FROM industry_insights WHERE industry = $1", industry)
	})

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, s.Upsert(ctx, sampleInsight(industry, now)))
	require.NoError(t, s.Upsert(ctx, sampleInsight(industry, now.Add(time.Minute))))

	got, err := s.Get(ctx, industry)
	require.NoError(t, err)
	assert.True(t, got.LastUpdated.Equal(now.Add(time.Minute)))
	assert.Equal(t, model.RefreshInterval, got.NextUpdate.Sub(got.LastUpdated))
	assert.Equal(t, []string{"Go", "Kubernetes", "SQL"}, got.TopSkills)
	assert.Len(t, got.SalaryRanges, 1)

	var count int
	require.NoError(t, s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM industry_insights WHERE industry = $1", industry).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestPostgresStore_GetMissing(t *testing.T) {
	s := newPostgresTestStore(t)

	_, err := s.Get(context.Background(), "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, model.ErrInsightNotFound)
}

func TestPostgresStore_Industries(t *testing.T) {
	s := newPostgresTestStore(t)
	ctx := context.Background()
	userID := "test-user-" + uuid.NewString()
	industry := "test-industry-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), "DELETE FROM user_profiles WHERE user_id = $1", userID)
	})

	require.NoError(t, s.UpsertProfile(ctx, model.UserProfile{
		UserID: userID, Industry: industry, Skills: []string{"Go"}, UpdatedAt: time.Now(),
	}))

	got, err := s.Industries(ctx)
	require.NoError(t, err)
	assert.Contains(t, got, industry)
}

func TestPostgresStore_GetProfile(t *testing.T) {
	s := newPostgresTestStore(t)
	ctx := context.Background()
	userID := "test-user-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), "DELETE FROM user_profiles WHERE user_id = $1", userID)
	})

	_, err := s.GetProfile(ctx, userID)
	assert.ErrorIs(t, err, model.ErrProfileNotFound)

	id := uuid.New()
	require.NoError(t, s.UpsertProfile(ctx, model.UserProfile{
		ID: id, UserID: userID, Industry: "tech-ai", Skills: []string{"Go", "SQL"}, ExperienceYears: 3, UpdatedAt: time.Now(),
	}))

	got, err := s.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "tech-ai", got.Industry)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
	assert.Equal(t, 3, got.ExperienceYears)
}

func TestMapWriteError_PlainErrorIsStoreWrite(t *testing.T) {
	err := mapWriteError(errors.New("connection reset"))
	assert.ErrorIs(t, err, model.ErrStoreWrite)
	assert.NotErrorIs(t, err, model.ErrWriteConflict)
}

func TestMapWriteError_ConflictCodes(t *testing.T) {
	for _, code := range []string{pgerrcode.UniqueViolation, pgerrcode.SerializationFailure} {
		err := mapWriteError(&pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, model.ErrWriteConflict, code)
		assert.Equal(t, model.KindStoreWrite, model.Classify(err))
	}
}

func newRedisCachedStore(t *testing.T, inner model.InsightStore) *CachedStore {
	t.Helper()
	url := os.Getenv("ASPIREON_TEST_REDIS_URL")
	if url == "" {
		t.Skip("ASPIREON_TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := NewRedisClient(ctx, url)
	if err != nil {
		t.Skipf("Redis not available for testing at %s: %v", url, err)
	}
	t.Cleanup(func() { client.Close() })
	return NewCachedStore(inner, client, time.Minute, discardLogger())
}

func TestCachedStore_ReadThroughAndInvalidate(t *testing.T) {
	backing := newTestStore(t)
	s := newRedisCachedStore(t, backing)
	ctx := context.Background()
	industry := "cache-" + uuid.NewString()
	t.Cleanup(func() { s.client.Del(context.Background(), cacheKey(industry)) })

	now := time.Now().UTC()
	require.NoError(t, s.Upsert(ctx, sampleInsight(industry, now)))

	first, err := s.Get(ctx, industry)
	require.NoError(t, err)
	assert.Equal(t, 5.5, first.GrowthRate)

	exists, err := s.client.Exists(ctx, cacheKey(industry)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists, "Get should fill the cache")

	updated := sampleInsight(industry, now.Add(time.Hour))
	updated.GrowthRate = 9
	require.NoError(t, s.Upsert(ctx, updated))

	second, err := s.Get(ctx, industry)
	require.NoError(t, err)
	assert.Equal(t, 9.0, second.GrowthRate, "Upsert should invalidate the cached copy")
}

func TestCachedStore_MissPassesNotFound(t *testing.T) {
	s := newRedisCachedStore(t, newTestStore(t))

	_, err := s.Get(context.Background(), "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, model.ErrInsightNotFound)
}
