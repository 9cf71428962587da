package validate

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxBioLen       = 500
	minExperience   = 0
	maxExperience   = 50
	skillsSeparator = ","
)

// OnboardingForm is the raw onboarding input. Experience and Skills arrive as
// the strings a form field holds.
type OnboardingForm struct {
	Industry    string `json:"industry"`
	SubIndustry string `json:"subIndustry"`
	Bio         string `json:"bio"`
	Experience  string `json:"experience"`
	Skills      string `json:"skills"`
}

// Onboarding is a validated OnboardingForm.
type Onboarding struct {
	Industry    string
	SubIndustry string
	Bio         string
	Experience  int
	Skills      []string
}

// IndustryID composes the identifier insights are keyed by:
// "<industry>-<sub-industry lowercased, spaces as hyphens>". Surrounding
// whitespace is ignored and inner runs of spaces become a single hyphen.
func IndustryID(industry, subIndustry string) string {
	sub := strings.Join(strings.Fields(subIndustry), "-")
	return strings.TrimSpace(industry) + "-" + strings.ToLower(sub)
}

// ParseOnboarding validates f and converts its string fields. On failure the
// error is a FieldErrors.
func ParseOnboarding(f OnboardingForm) (Onboarding, error) {
	errs := FieldErrors{}

	if blank(f.Industry) {
		errs.add("industry", "Please select an industry")
	}
	if blank(f.SubIndustry) {
		errs.add("subIndustry", "Please select a specialization")
	}
	if utf8.RuneCountInString(f.Bio) > maxBioLen {
		errs.add("bio", "Bio must contain at most 500 characters")
	}

	exp, ok := parseLeadingInt(f.Experience)
	switch {
	case !ok:
		errs.add("experience", "Experience must be a number")
	case exp < minExperience:
		errs.add("experience", "Experience must be at least 0 years")
	case exp > maxExperience:
		errs.add("experience", "Experience cannot exceed 50 years")
	}

	if err := errs.orNil(); err != nil {
		return Onboarding{}, err
	}

	return Onboarding{
		Industry:    strings.TrimSpace(f.Industry),
		SubIndustry: strings.TrimSpace(f.SubIndustry),
		Bio:         f.Bio,
		Experience:  exp,
		Skills:      splitSkills(f.Skills),
	}, nil
}

// parseLeadingInt reads an optionally signed base-10 integer prefix after
// leading whitespace, so "7 years" and "3.5" parse as 7 and 3.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// splitSkills splits a comma-separated list, trimming entries and dropping
// empty ones. An empty input yields nil.
func splitSkills(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, skillsSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
