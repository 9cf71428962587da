//go:generate mockgen -source=insight.go -destination=mocks/insight_mock.go -package=mocks

package model

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RefreshInterval is the fixed gap between an insight's LastUpdated and NextUpdate.
const RefreshInterval = 7 * 24 * time.Hour

// DemandLevel describes how much hiring demand an industry currently has.
type DemandLevel string

const (
	DemandHigh   DemandLevel = "HIGH"
	DemandMedium DemandLevel = "MEDIUM"
	DemandLow    DemandLevel = "LOW"
)

// ParseDemandLevel accepts any casing ("High", "high", "HIGH").
func ParseDemandLevel(s string) (DemandLevel, error) {
	switch d := DemandLevel(strings.ToUpper(strings.TrimSpace(s))); d {
	case DemandHigh, DemandMedium, DemandLow:
		return d, nil
	}
	return "", fmt.Errorf("unknown demand level %q", s)
}

// MarketOutlook is the provider's sentiment for an industry's near-term prospects.
type MarketOutlook string

const (
	OutlookPositive MarketOutlook = "POSITIVE"
	OutlookNeutral  MarketOutlook = "NEUTRAL"
	OutlookNegative MarketOutlook = "NEGATIVE"
)

// ParseMarketOutlook accepts any casing ("Positive", "POSITIVE").
func ParseMarketOutlook(s string) (MarketOutlook, error) {
	switch o := MarketOutlook(strings.ToUpper(strings.TrimSpace(s))); o {
	case OutlookPositive, OutlookNeutral, OutlookNegative:
		return o, nil
	}
	return "", fmt.Errorf("unknown market outlook %q", s)
}

// SalaryRange is the annual pay band (USD) for one role within an industry.
type SalaryRange struct {
	Role     string  `json:"role"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Location string  `json:"location"`
}

// IndustryInsight is the market summary kept for one industry. There is
// exactly one record per Industry.
type IndustryInsight struct {
	Industry          string
	SalaryRanges      []SalaryRange
	GrowthRate        float64 // percent
	DemandLevel       DemandLevel
	TopSkills         []string
	MarketOutlook     MarketOutlook
	KeyTrends         []string
	RecommendedSkills []string
	LastUpdated       time.Time
	NextUpdate        time.Time
}

// InsightPayload is the provider-generated part of an insight, before it is
// bound to an industry and stamped with refresh times.
type InsightPayload struct {
	SalaryRanges      []SalaryRange
	GrowthRate        float64
	DemandLevel       DemandLevel
	TopSkills         []string
	MarketOutlook     MarketOutlook
	KeyTrends         []string
	RecommendedSkills []string
}

// NewIndustryInsight stamps payload for industry with LastUpdated = now and
// NextUpdate = now + RefreshInterval.
func NewIndustryInsight(industry string, p InsightPayload, now time.Time) IndustryInsight {
	return IndustryInsight{
		Industry:          industry,
		SalaryRanges:      p.SalaryRanges,
		GrowthRate:        p.GrowthRate,
		DemandLevel:       p.DemandLevel,
		TopSkills:         p.TopSkills,
		MarketOutlook:     p.MarketOutlook,
		KeyTrends:         p.KeyTrends,
		RecommendedSkills: p.RecommendedSkills,
		LastUpdated:       now,
		NextUpdate:        now.Add(RefreshInterval),
	}
}

// IsStale reports whether the insight is due for regeneration at now.
func (i IndustryInsight) IsStale(now time.Time) bool {
	return !now.Before(i.NextUpdate)
}

// InsightStore persists industry insights keyed by industry.
type InsightStore interface {
	// Upsert inserts or overwrites the record for insight.Industry.
	Upsert(ctx context.Context, insight IndustryInsight) error
	// Get returns ErrInsightNotFound when no record exists.
	Get(ctx context.Context, industry string) (*IndustryInsight, error)
	List(ctx context.Context) ([]IndustryInsight, error)
}

// InsightGenerator produces a fresh payload for one industry. Provider
// failures wrap ErrAIRequestFailure; unusable answers wrap ErrMalformedAIResponse.
type InsightGenerator interface {
	Generate(ctx context.Context, industry string) (InsightPayload, error)
}

// IndustrySource lists the distinct industries referenced by user profiles.
type IndustrySource interface {
	Industries(ctx context.Context) ([]string, error)
}
