package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/industry_insights.md
var industryInsightsPromptRaw string

// IndustryInsightsTemplate is the parsed prompt template for insight generation.
// Parsed once at package init; reused on every Generate call.
var IndustryInsightsTemplate = template.Must(template.New("industry_insights").Parse(industryInsightsPromptRaw))
