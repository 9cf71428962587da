package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zaydhassan/AspireOn/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS industry_insights (
	industry           TEXT PRIMARY KEY,
	salary_ranges      JSONB NOT NULL,
	growth_rate        DOUBLE PRECISION NOT NULL,
	demand_level       TEXT NOT NULL,
	top_skills         TEXT[] NOT NULL,
	market_outlook     TEXT NOT NULL,
	key_trends         TEXT[] NOT NULL,
	recommended_skills TEXT[] NOT NULL,
	last_updated       TIMESTAMPTZ NOT NULL,
	next_update        TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id          TEXT PRIMARY KEY,
	id               UUID NOT NULL,
	industry         TEXT NOT NULL DEFAULT '',
	sub_industry     TEXT NOT NULL DEFAULT '',
	bio              TEXT NOT NULL DEFAULT '',
	experience_years INTEGER NOT NULL DEFAULT 0,
	skills           TEXT[] NOT NULL DEFAULT '{}',
	updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS user_profiles_industry ON user_profiles(industry);
`

// PostgresStore keeps industry insights and user profiles in PostgreSQL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var (
	_ model.InsightStore   = (*PostgresStore)(nil)
	_ model.IndustrySource = (*PostgresStore)(nil)
	_ model.ProfileStore   = (*PostgresStore)(nil)
)

// NewPostgresStore connects to databaseURL, verifies the connection and
// applies the schema.
func NewPostgresStore(ctx context.Context, databaseURL string, maxConns int32, logger *slog.Logger) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("database_url is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database_url: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("postgres connected", "host", config.ConnConfig.Host)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Upsert inserts or overwrites the record for insight.Industry.
func (s *PostgresStore) Upsert(ctx context.Context, in model.IndustryInsight) error {
	cols, err := encodeInsight(in)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", model.ErrStoreWrite, in.Industry, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO industry_insights (
			industry, salary_ranges, growth_rate, demand_level, top_skills,
			market_outlook, key_trends, recommended_skills, last_updated, next_update
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (industry) DO UPDATE SET
			salary_ranges      = EXCLUDED.salary_ranges,
			growth_rate        = EXCLUDED.growth_rate,
			demand_level       = EXCLUDED.demand_level,
			top_skills         = EXCLUDED.top_skills,
			market_outlook     = EXCLUDED.market_outlook,
			key_trends         = EXCLUDED.key_trends,
			recommended_skills = EXCLUDED.recommended_skills,
			last_updated       = EXCLUDED.last_updated,
			next_update        = EXCLUDED.next_update`,
		in.Industry, cols.salaryRanges, in.GrowthRate, string(in.DemandLevel), nonNil(in.TopSkills),
		string(in.MarketOutlook), nonNil(in.KeyTrends), nonNil(in.RecommendedSkills),
		in.LastUpdated, in.NextUpdate,
	)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", in.Industry, mapWriteError(err))
	}
	return nil
}

const selectInsightPG = `
	SELECT industry, salary_ranges, growth_rate, demand_level, top_skills,
	       market_outlook, key_trends, recommended_skills, last_updated, next_update
	FROM industry_insights`

// Get returns the record for industry or model.ErrInsightNotFound.
func (s *PostgresStore) Get(ctx context.Context, industry string) (*model.IndustryInsight, error) {
	in, err := scanInsightPG(s.pool.QueryRow(ctx, selectInsightPG+" WHERE industry = $1", industry))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", industry, model.ErrInsightNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading insight %s: %w", industry, err)
	}
	return in, nil
}

// List returns every stored insight ordered by industry.
func (s *PostgresStore) List(ctx context.Context) ([]model.IndustryInsight, error) {
	rows, err := s.pool.Query(ctx, selectInsightPG+" ORDER BY industry")
	if err != nil {
		return nil, fmt.Errorf("listing insights: %w", err)
	}
	defer rows.Close()

	var out []model.IndustryInsight
	for rows.Next() {
		in, err := scanInsightPG(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning insight: %w", err)
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

// Industries returns the distinct non-empty industries referenced by user
// profiles, sorted.
func (s *PostgresStore) Industries(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT DISTINCT industry FROM user_profiles WHERE industry <> '' ORDER BY industry")
	if err != nil {
		return nil, fmt.Errorf("listing industries: %w", err)
	}
	industries, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning industries: %w", err)
	}
	return industries, nil
}

// UpsertProfile inserts or overwrites the profile for p.UserID. An existing
// row keeps its ID.
func (s *PostgresStore) UpsertProfile(ctx context.Context, p model.UserProfile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_profiles (user_id, id, industry, sub_industry, bio, experience_years, skills, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			industry         = EXCLUDED.industry,
			sub_industry     = EXCLUDED.sub_industry,
			bio              = EXCLUDED.bio,
			experience_years = EXCLUDED.experience_years,
			skills           = EXCLUDED.skills,
			updated_at       = EXCLUDED.updated_at`,
		p.UserID, p.ID.String(), p.Industry, p.SubIndustry, p.Bio, p.ExperienceYears,
		nonNil(p.Skills), p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting profile %s: %w", p.UserID, mapWriteError(err))
	}
	return nil
}

// GetProfile returns the profile for userID or model.ErrProfileNotFound.
func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	var p model.UserProfile
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, industry, sub_industry, bio, experience_years, skills, updated_at
		FROM user_profiles WHERE user_id = $1`, userID,
	).Scan(&p.ID, &p.UserID, &p.Industry, &p.SubIndustry, &p.Bio, &p.ExperienceYears, &p.Skills, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", userID, model.ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", userID, err)
	}
	return &p, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanInsightPG(r pgx.Row) (*model.IndustryInsight, error) {
	var (
		in              model.IndustryInsight
		demand, outlook string
		salary          []byte
	)
	if err := r.Scan(&in.Industry, &salary, &in.GrowthRate, &demand, &in.TopSkills,
		&outlook, &in.KeyTrends, &in.RecommendedSkills, &in.LastUpdated, &in.NextUpdate); err != nil {
		return nil, err
	}
	in.DemandLevel = model.DemandLevel(demand)
	in.MarketOutlook = model.MarketOutlook(outlook)
	if err := decodeSalaryRanges(salary, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// mapWriteError classifies a failed write. Unique-violation and
// serialization-failure codes mean a concurrent writer won.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation, pgerrcode.SerializationFailure:
			return fmt.Errorf("%w: %w", model.ErrWriteConflict, err)
		}
	}
	return fmt.Errorf("%w: %w", model.ErrStoreWrite, err)
}
