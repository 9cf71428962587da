package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/zaydhassan/AspireOn/internal/model"
)

// InsightGenerator turns an industry name into a validated InsightPayload
// by rendering the prompt template and parsing the provider's JSON answer.
type InsightGenerator struct {
	provider LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewInsightGenerator creates a generator. A nil tmpl uses IndustryInsightsTemplate.
func NewInsightGenerator(provider LLMProvider, tmpl *template.Template, logger *slog.Logger) *InsightGenerator {
	if tmpl == nil {
		tmpl = IndustryInsightsTemplate
	}
	return &InsightGenerator{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// Generate asks the provider for insights on industry. Provider failures wrap
// model.ErrAIRequestFailure; unusable answers wrap model.ErrMalformedAIResponse.
func (g *InsightGenerator) Generate(ctx context.Context, industry string) (model.InsightPayload, error) {
	var promptBuf bytes.Buffer
	if err := g.tmpl.Execute(&promptBuf, struct{ Industry string }{Industry: industry}); err != nil {
		return model.InsightPayload{}, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := g.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		return model.InsightPayload{}, fmt.Errorf("%w: %w", model.ErrAIRequestFailure, err)
	}

	payload, err := ParseInsight(raw)
	if err != nil {
		g.logger.Debug("rejected ai response", "industry", industry, "raw", truncate(raw, 200))
		return model.InsightPayload{}, err
	}
	return payload, nil
}

// rawInsight is the JSON shape returned by the LLM (matches industryInsightsSchema).
// Pointer fields distinguish "missing" from zero values.
type rawInsight struct {
	SalaryRanges      []rawSalaryRange `json:"salaryRanges"`
	GrowthRate        *float64         `json:"growthRate"`
	DemandLevel       *string          `json:"demandLevel"`
	TopSkills         []string         `json:"topSkills"`
	MarketOutlook     *string          `json:"marketOutlook"`
	KeyTrends         []string         `json:"keyTrends"`
	RecommendedSkills []string         `json:"recommendedSkills"`
}

type rawSalaryRange struct {
	Role     string   `json:"role"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Median   *float64 `json:"median"`
	Location string   `json:"location"`
}

// ParseInsight strictly decodes an AI answer. Surrounding markdown code
// fences are tolerated; unknown fields are ignored.
func ParseInsight(raw string) (model.InsightPayload, error) {
	var ri rawInsight
	if err := json.Unmarshal([]byte(stripFences(raw)), &ri); err != nil {
		return model.InsightPayload{}, malformed("decode json: %v", err)
	}

	switch {
	case len(ri.SalaryRanges) == 0:
		return model.InsightPayload{}, malformed("missing or empty salaryRanges")
	case ri.GrowthRate == nil:
		return model.InsightPayload{}, malformed("missing growthRate")
	case ri.DemandLevel == nil:
		return model.InsightPayload{}, malformed("missing demandLevel")
	case ri.MarketOutlook == nil:
		return model.InsightPayload{}, malformed("missing marketOutlook")
	}

	demand, err := model.ParseDemandLevel(*ri.DemandLevel)
	if err != nil {
		return model.InsightPayload{}, malformed("%v", err)
	}
	outlook, err := model.ParseMarketOutlook(*ri.MarketOutlook)
	if err != nil {
		return model.InsightPayload{}, malformed("%v", err)
	}

	topSkills := cleanList(ri.TopSkills)
	if len(topSkills) == 0 {
		return model.InsightPayload{}, malformed("topSkills is empty")
	}
	keyTrends := cleanList(ri.KeyTrends)
	if len(keyTrends) == 0 {
		return model.InsightPayload{}, malformed("keyTrends is empty")
	}
	recommended := cleanList(ri.RecommendedSkills)
	if len(recommended) == 0 {
		return model.InsightPayload{}, malformed("recommendedSkills is empty")
	}

	ranges := make([]model.SalaryRange, 0, len(ri.SalaryRanges))
	for i, sr := range ri.SalaryRanges {
		if strings.TrimSpace(sr.Role) == "" {
			return model.InsightPayload{}, malformed("salaryRanges[%d]: missing role", i)
		}
		if sr.Min == nil || sr.Max == nil || sr.Median == nil {
			return model.InsightPayload{}, malformed("salaryRanges[%d]: missing min, median or max", i)
		}
		lo, mid, hi := *sr.Min, *sr.Median, *sr.Max
		if lo < 0 || lo > mid || mid > hi {
			return model.InsightPayload{}, malformed("salaryRanges[%d]: want 0 <= min <= median <= max, got %v/%v/%v", i, lo, mid, hi)
		}
		ranges = append(ranges, model.SalaryRange{
			Role:     strings.TrimSpace(sr.Role),
			Min:      lo,
			Max:      hi,
			Median:   mid,
			Location: strings.TrimSpace(sr.Location),
		})
	}

	return model.InsightPayload{
		SalaryRanges:      ranges,
		GrowthRate:        *ri.GrowthRate,
		DemandLevel:       demand,
		TopSkills:         topSkills,
		MarketOutlook:     outlook,
		KeyTrends:         keyTrends,
		RecommendedSkills: recommended,
	}, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrMalformedAIResponse, fmt.Sprintf(format, args...))
}

// stripFences removes a leading ```json (or ```) line and a trailing ``` from s.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// cleanList trims entries and drops empty ones, preserving order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
