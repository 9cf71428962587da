package validate

// CoverLetterRequest is the input of the cover-letter generator form.
type CoverLetterRequest struct {
	CompanyName    string `json:"companyName"`
	JobTitle       string `json:"jobTitle"`
	JobDescription string `json:"jobDescription"`
}

// ValidateCoverLetter requires every field to be non-empty. On failure the
// error is a FieldErrors keyed by JSON field name.
func ValidateCoverLetter(r CoverLetterRequest) error {
	errs := FieldErrors{}
	if r.CompanyName == "" {
		errs.add("companyName", "Company name is required")
	}
	if r.JobTitle == "" {
		errs.add("jobTitle", "Job title is required")
	}
	if r.JobDescription == "" {
		errs.add("jobDescription", "Job description is required")
	}
	return errs.orNil()
}
