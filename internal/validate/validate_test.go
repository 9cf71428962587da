package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	require.Error(t, err)
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	return fe
}

func TestParseOnboarding_Valid(t *testing.T) {
	got, err := ParseOnboarding(OnboardingForm{
		Industry:    "tech",
		SubIndustry: "Software Development",
		Bio:         "Backend engineer",
		Experience:  "5",
		Skills:      "Go, SQL ,, Kubernetes ",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, got.Experience)
	assert.Equal(t, []string{"Go", "SQL", "Kubernetes"}, got.Skills)
	assert.Equal(t, "tech-software-development", IndustryID(got.Industry, got.SubIndustry))
}

func TestParseOnboarding_EmptySkillsIsNil(t *testing.T) {
	got, err := ParseOnboarding(OnboardingForm{Industry: "tech", SubIndustry: "AI", Experience: "0"})
	require.NoError(t, err)
	assert.Nil(t, got.Skills)
}

func TestParseOnboarding_TrimsIndustryFields(t *testing.T) {
	got, err := ParseOnboarding(OnboardingForm{Industry: " tech ", SubIndustry: " AI ", Experience: "2"})
	require.NoError(t, err)

	assert.Equal(t, "tech", got.Industry)
	assert.Equal(t, "AI", got.SubIndustry)
	assert.Equal(t, "tech-ai", IndustryID(got.Industry, got.SubIndustry))
}

func TestParseOnboarding_ExperienceBounds(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantMsg string
	}{
		{in: "0", want: 0},
		{in: "50", want: 50},
		{in: " 7 years", want: 7},
		{in: "3.9", want: 3},
		{in: "-1", wantMsg: "Experience must be at least 0 years"},
		{in: "51", wantMsg: "Experience cannot exceed 50 years"},
		{in: "", wantMsg: "Experience must be a number"},
		{in: "ten", wantMsg: "Experience must be a number"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOnboarding(OnboardingForm{Industry: "tech", SubIndustry: "AI", Experience: tt.in})
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got.Experience)
				return
			}
			assert.Equal(t, tt.wantMsg, fieldErrors(t, err)["experience"])
		})
	}
}

func TestParseOnboarding_ReportsEveryField(t *testing.T) {
	_, err := ParseOnboarding(OnboardingForm{
		Bio:        strings.Repeat("é", maxBioLen+1),
		Experience: "99",
	})
	fe := fieldErrors(t, err)

	assert.Equal(t, "Please select an industry", fe["industry"])
	assert.Equal(t, "Please select a specialization", fe["subIndustry"])
	assert.Contains(t, fe, "bio")
	assert.Contains(t, fe, "experience")
}

func TestParseOnboarding_BioLimitCountsCharacters(t *testing.T) {
	_, err := ParseOnboarding(OnboardingForm{
		Industry: "tech", SubIndustry: "AI", Experience: "1",
		Bio: strings.Repeat("é", maxBioLen),
	})
	assert.NoError(t, err)
}

func TestIndustryID(t *testing.T) {
	assert.Equal(t, "healthcare-nursing", IndustryID("healthcare", "Nursing"))
	assert.Equal(t, "finance-investment-banking", IndustryID("finance", "Investment Banking"))
	assert.Equal(t, "tech-machine-learning", IndustryID(" tech", "Machine  Learning "))
}

func TestValidateContact(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"jane@example.com", true},
		{"jane.doe+cv@mail.example.org", true},
		{"", false},
		{"not-an-email", false},
		{"Jane <jane@example.com>", false},
		{" jane@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateContact(ContactInfo{Email: tt.email})
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, "Invalid email address", fieldErrors(t, err)["email"])
		})
	}
}

func TestValidateEntry_EndDateRule(t *testing.T) {
	base := Entry{Title: "Engineer", Organization: "Acme", StartDate: "2020-01", Description: "Built things"}

	current := base
	current.Current = true
	assert.NoError(t, ValidateEntry(current))

	ended := base
	ended.EndDate = "2023-06"
	assert.NoError(t, ValidateEntry(ended))

	fe := fieldErrors(t, ValidateEntry(base))
	assert.Equal(t, FieldErrors{"endDate": "End date is required unless this is your current position"}, fe)
}

func TestValidateEntry_RequiredFields(t *testing.T) {
	fe := fieldErrors(t, ValidateEntry(Entry{Current: true}))

	assert.Equal(t, FieldErrors{
		"title":        "Title is required",
		"organization": "Organization is required",
		"startDate":    "Start date is required",
		"description":  "Description is required",
	}, fe)
}

func TestValidateResume_IndexedPaths(t *testing.T) {
	err := ValidateResume(Resume{
		ContactInfo: ContactInfo{Email: "bad"},
		Experience: []Entry{
			{Title: "A", Organization: "B", StartDate: "2020", Description: "D", Current: true},
			{Title: "A", Organization: "B", StartDate: "2020", Description: "D"},
		},
		Projects: []Entry{{Organization: "B", StartDate: "2020", Description: "D", Current: true}},
	})
	fe := fieldErrors(t, err)

	assert.Equal(t, "Invalid email address", fe["contactInfo.email"])
	assert.Equal(t, "Professional summary is required", fe["summary"])
	assert.Equal(t, "Skills are required", fe["skills"])
	assert.Contains(t, fe, "experience[1].endDate")
	assert.NotContains(t, fe, "experience[0].endDate")
	assert.Equal(t, "Title is required", fe["projects[0].title"])
}

func TestValidateResume_Valid(t *testing.T) {
	assert.NoError(t, ValidateResume(Resume{
		ContactInfo: ContactInfo{Email: "jane@example.com"},
		Summary:     "Engineer",
		Skills:      "Go",
	}))
}

func TestValidateCoverLetter(t *testing.T) {
	assert.NoError(t, ValidateCoverLetter(CoverLetterRequest{
		CompanyName: "Acme", JobTitle: "Engineer", JobDescription: "Build",
	}))

	fe := fieldErrors(t, ValidateCoverLetter(CoverLetterRequest{}))
	assert.Equal(t, "Company name is required", fe["companyName"])
	assert.Equal(t, "Job title is required", fe["jobTitle"])
	assert.Equal(t, "Job description is required", fe["jobDescription"])
}

func TestFieldErrors_ErrorIsSorted(t *testing.T) {
	err := FieldErrors{"b": "second", "a": "first"}
	assert.Equal(t, "invalid input: a: first; b: second", err.Error())
}
