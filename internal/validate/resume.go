package validate

import (
	"fmt"
	"net/mail"
)

// ContactInfo is the contact block of a resume.
type ContactInfo struct {
	Email    string `json:"email"`
	Mobile   string `json:"mobile,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
}

// Entry is one experience, education or project item.
type Entry struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate,omitempty"`
	Description  string `json:"description"`
	Current      bool   `json:"current"`
}

// Resume is the full resume-builder form.
type Resume struct {
	ContactInfo ContactInfo `json:"contactInfo"`
	Summary     string      `json:"summary"`
	Skills      string      `json:"skills"`
	Experience  []Entry     `json:"experience"`
	Education   []Entry     `json:"education"`
	Projects    []Entry     `json:"projects"`
}

// ValidateContact checks that Email is a bare, well-formed address.
func ValidateContact(c ContactInfo) error {
	errs := FieldErrors{}
	if !validEmail(c.Email) {
		errs.add("email", "Invalid email address")
	}
	return errs.orNil()
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Name == "" && addr.Address == s
}

// ValidateEntry checks the required fields of e. EndDate may be empty only
// for the current position.
func ValidateEntry(e Entry) error {
	errs := FieldErrors{}
	if e.Title == "" {
		errs.add("title", "Title is required")
	}
	if e.Organization == "" {
		errs.add("organization", "Organization is required")
	}
	if e.StartDate == "" {
		errs.add("startDate", "Start date is required")
	}
	if e.Description == "" {
		errs.add("description", "Description is required")
	}
	if !e.Current && e.EndDate == "" {
		errs.add("endDate", "End date is required unless this is your current position")
	}
	return errs.orNil()
}

// ValidateResume validates every section. Entry paths are indexed, as in
// "experience[0].endDate".
func ValidateResume(r Resume) error {
	errs := FieldErrors{}

	if err := ValidateContact(r.ContactInfo); err != nil {
		errs.merge("contactInfo.", err.(FieldErrors))
	}
	if r.Summary == "" {
		errs.add("summary", "Professional summary is required")
	}
	if r.Skills == "" {
		errs.add("skills", "Skills are required")
	}

	sections := []struct {
		name    string
		entries []Entry
	}{
		{"experience", r.Experience},
		{"education", r.Education},
		{"projects", r.Projects},
	}
	for _, sec := range sections {
		for i, e := range sec.entries {
			if err := ValidateEntry(e); err != nil {
				errs.merge(fmt.Sprintf("%s[%d].", sec.name, i), err.(FieldErrors))
			}
		}
	}

	return errs.orNil()
}
