package filter

import "strings"

// IndustryFilter selects which discovered industries a run refreshes.
// An industry passes when it contains any include keyword and no exclude
// keyword. Matching is case-insensitive. An empty include list passes all.
type IndustryFilter struct {
	include []string
	exclude []string
}

// NewIndustryFilter returns a filter over include and exclude keywords
// (case-insensitive substring).
func NewIndustryFilter(include []string, exclude []string) *IndustryFilter {
	return &IndustryFilter{
		include: lowerAll(include),
		exclude: lowerAll(exclude),
	}
}

// Match reports whether industry should be refreshed.
func (f *IndustryFilter) Match(industry string) bool {
	lower := strings.ToLower(industry)

	for _, kw := range f.exclude {
		if strings.Contains(lower, kw) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}
	for _, kw := range f.include {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Apply returns the matching industries in their original order.
func (f *IndustryFilter) Apply(industries []string) []string {
	out := make([]string, 0, len(industries))
	for _, ind := range industries {
		if f.Match(ind) {
			out = append(out, ind)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
