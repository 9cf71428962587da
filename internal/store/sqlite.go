package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/zaydhassan/AspireOn/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS industry_insights (
	industry           TEXT PRIMARY KEY,
	salary_ranges      TEXT NOT NULL,
	growth_rate        REAL NOT NULL,
	demand_level       TEXT NOT NULL,
	top_skills         TEXT NOT NULL,
	market_outlook     TEXT NOT NULL,
	key_trends         TEXT NOT NULL,
	recommended_skills TEXT NOT NULL,
	last_updated       TEXT NOT NULL,
	next_update        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id          TEXT PRIMARY KEY,
	id               TEXT NOT NULL,
	industry         TEXT NOT NULL DEFAULT '',
	sub_industry     TEXT NOT NULL DEFAULT '',
	bio              TEXT NOT NULL DEFAULT '',
	experience_years INTEGER NOT NULL DEFAULT 0,
	skills           TEXT NOT NULL DEFAULT '[]',
	updated_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS user_profiles_industry ON user_profiles(industry);
`

// SQLiteStore keeps industry insights and user profiles in a SQLite database.
// List columns are stored as JSON text and times as RFC 3339 strings.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ model.InsightStore   = (*SQLiteStore)(nil)
	_ model.IndustrySource = (*SQLiteStore)(nil)
	_ model.ProfileStore   = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	// One writer at a time; concurrent upserts queue instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Upsert inserts or overwrites the record for insight.Industry.
func (s *SQLiteStore) Upsert(ctx context.Context, in model.IndustryInsight) error {
	cols, err := encodeInsight(in)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", model.ErrStoreWrite, in.Industry, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO industry_insights (
			industry, salary_ranges, growth_rate, demand_level, top_skills,
			market_outlook, key_trends, recommended_skills, last_updated, next_update
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(industry) DO UPDATE SET
			salary_ranges      = excluded.salary_ranges,
			growth_rate        = excluded.growth_rate,
			demand_level       = excluded.demand_level,
			top_skills         = excluded.top_skills,
			market_outlook     = excluded.market_outlook,
			key_trends         = excluded.key_trends,
			recommended_skills = excluded.recommended_skills,
			last_updated       = excluded.last_updated,
			next_update        = excluded.next_update`,
		in.Industry, string(cols.salaryRanges), in.GrowthRate, string(in.DemandLevel), string(cols.topSkills),
		string(in.MarketOutlook), string(cols.keyTrends), string(cols.recommendedSkills),
		formatTime(in.LastUpdated), formatTime(in.NextUpdate),
	)
	if err != nil {
		return fmt.Errorf("%w: upserting %s: %w", model.ErrStoreWrite, in.Industry, err)
	}
	return nil
}

const selectInsight = `
	SELECT industry, salary_ranges, growth_rate, demand_level, top_skills,
	       market_outlook, key_trends, recommended_skills, last_updated, next_update
	FROM industry_insights`

// Get returns the record for industry or model.ErrInsightNotFound.
func (s *SQLiteStore) Get(ctx context.Context, industry string) (*model.IndustryInsight, error) {
	row := s.db.QueryRowContext(ctx, selectInsight+" WHERE industry = ?", industry)
	in, err := scanInsight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", industry, model.ErrInsightNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading insight %s: %w", industry, err)
	}
	return in, nil
}

// List returns every stored insight ordered by industry.
func (s *SQLiteStore) List(ctx context.Context) ([]model.IndustryInsight, error) {
	rows, err := s.db.QueryContext(ctx, selectInsight+" ORDER BY industry")
	if err != nil {
		return nil, fmt.Errorf("listing insights: %w", err)
	}
	defer rows.Close()

	var out []model.IndustryInsight
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning insight: %w", err)
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

// Industries returns the distinct non-empty industries referenced by user
// profiles, sorted.
func (s *SQLiteStore) Industries(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT industry FROM user_profiles WHERE industry <> '' ORDER BY industry")
	if err != nil {
		return nil, fmt.Errorf("listing industries: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ind string
		if err := rows.Scan(&ind); err != nil {
			return nil, fmt.Errorf("scanning industry: %w", err)
		}
		out = append(out, ind)
	}
	return out, rows.Err()
}

// UpsertProfile inserts or overwrites the profile for p.UserID. An existing
// row keeps its ID.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, p model.UserProfile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	skills, err := json.Marshal(nonNil(p.Skills))
	if err != nil {
		return fmt.Errorf("%w: encoding skills: %w", model.ErrStoreWrite, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, id, industry, sub_industry, bio, experience_years, skills, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			industry         = excluded.industry,
			sub_industry     = excluded.sub_industry,
			bio              = excluded.bio,
			experience_years = excluded.experience_years,
			skills           = excluded.skills,
			updated_at       = excluded.updated_at`,
		p.UserID, p.ID.String(), p.Industry, p.SubIndustry, p.Bio, p.ExperienceYears,
		string(skills), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("%w: upserting profile %s: %w", model.ErrStoreWrite, p.UserID, err)
	}
	return nil
}

// GetProfile returns the profile for userID or model.ErrProfileNotFound.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	var (
		p               model.UserProfile
		id, skills, upd string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, industry, sub_industry, bio, experience_years, skills, updated_at
		FROM user_profiles WHERE user_id = ?`, userID,
	).Scan(&id, &p.UserID, &p.Industry, &p.SubIndustry, &p.Bio, &p.ExperienceYears, &skills, &upd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", userID, model.ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", userID, err)
	}
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing profile id: %w", err)
	}
	if err := json.Unmarshal([]byte(skills), &p.Skills); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}
	if p.UpdatedAt, err = parseTime(upd); err != nil {
		return nil, err
	}
	return &p, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInsight(r rowScanner) (*model.IndustryInsight, error) {
	var (
		in                 model.IndustryInsight
		demand, outlook    string
		lastUpd, nextUpd   string
		salary, top, trend string
		recommended        string
	)
	if err := r.Scan(&in.Industry, &salary, &in.GrowthRate, &demand, &top,
		&outlook, &trend, &recommended, &lastUpd, &nextUpd); err != nil {
		return nil, err
	}
	in.DemandLevel = model.DemandLevel(demand)
	in.MarketOutlook = model.MarketOutlook(outlook)

	if err := decodeInsightColumns(&in, insightColumns{
		salaryRanges:      []byte(salary),
		topSkills:         []byte(top),
		keyTrends:         []byte(trend),
		recommendedSkills: []byte(recommended),
	}); err != nil {
		return nil, err
	}

	var err error
	if in.LastUpdated, err = parseTime(lastUpd); err != nil {
		return nil, err
	}
	if in.NextUpdate, err = parseTime(nextUpd); err != nil {
		return nil, err
	}
	return &in, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}
