package browse

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zaydhassan/AspireOn/internal/model"
)

const dateLayout = "2006-01-02 15:04 MST"

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(18)

	valueStyle = lipgloss.NewStyle()

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	freshStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	demandColors = map[model.DemandLevel]lipgloss.Color{
		model.DemandHigh:   "42",
		model.DemandMedium: "214",
		model.DemandLow:    "196",
	}

	outlookColors = map[model.MarketOutlook]lipgloss.Color{
		model.OutlookPositive: "42",
		model.OutlookNeutral:  "245",
		model.OutlookNegative: "196",
	}
)

// RenderInsight formats one insight for a terminal of the given width.
// now decides the freshness label.
func RenderInsight(in model.IndustryInsight, width int, now time.Time) string {
	var b strings.Builder
	wrapWidth := max(width-4, 20)

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteByte('\n')
	}
	divider := func(label string) {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		b.WriteString("\n" + dividerStyle.Render(label+fill) + "\n\n")
	}
	bullets := func(items []string) {
		for _, it := range items {
			b.WriteString(bulletStyle.Render(wordWrap("  • "+it, wrapWidth)) + "\n")
		}
	}

	b.WriteString(titleStyle.Render(in.Industry) + "\n")

	field("Demand", colored(string(in.DemandLevel), demandColors[in.DemandLevel]))
	field("Market outlook", colored(string(in.MarketOutlook), outlookColors[in.MarketOutlook]))
	field("Growth rate", fmt.Sprintf("%.1f%%", in.GrowthRate))
	field("Last updated", in.LastUpdated.Local().Format(dateLayout))
	field("Next update", in.NextUpdate.Local().Format(dateLayout)+"  "+freshness(in, now))

	if len(in.SalaryRanges) > 0 {
		divider("── Salary ranges ")
		for _, r := range in.SalaryRanges {
			field(r.Role, FormatSalary(r))
		}
	}
	if len(in.TopSkills) > 0 {
		divider("── Top skills ")
		bullets(in.TopSkills)
	}
	if len(in.KeyTrends) > 0 {
		divider("── Key trends ")
		bullets(in.KeyTrends)
	}
	if len(in.RecommendedSkills) > 0 {
		divider("── Recommended skills ")
		bullets(in.RecommendedSkills)
	}

	return b.String()
}

// FormatSalary renders a range as "$90k - $125k - $180k (US)".
func FormatSalary(r model.SalaryRange) string {
	s := fmt.Sprintf("%s - %s - %s", dollars(r.Min), dollars(r.Median), dollars(r.Max))
	if r.Location != "" {
		s += " (" + r.Location + ")"
	}
	return s
}

func dollars(v float64) string {
	if v >= 1000 {
		return fmt.Sprintf("$%.0fk", v/1000)
	}
	return fmt.Sprintf("$%.0f", v)
}

func freshness(in model.IndustryInsight, now time.Time) string {
	if in.IsStale(now) {
		return staleStyle.Render("stale")
	}
	return freshStyle.Render("fresh")
}

func colored(s string, c lipgloss.Color) string {
	if c == "" {
		return s
	}
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = "    " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
