package domain

import (
	"fmt"
	"strings"
)

// Summary field labels, in the order the generated summary must follow.
const (
	FieldName               = "Name"
	FieldEducation          = "Education"
	FieldTotalExperience    = "Total Work Experience"
	FieldRelevantExperience = "Relevant Work Experience"
	FieldCompanies          = "Companies worked for"
	FieldRoles              = "Roles and responsibilities handled"
	FieldCurrentCTC         = "Current CTC"
	FieldExpectedCTC        = "Expected CTC"
	FieldNoticePeriod       = "Notice period"
	FieldCurrentLocation    = "Current location"
	FieldReasonForSwitch    = "Reason for switch"
)

const (
	MaxCandidateFieldLength = 4000
	MaxCandidateListEntries = 100

	candidateListValueJoiner = ", "
)

// SummaryFields is the fixed label order of the structured summary.
var SummaryFields = []string{
	FieldName,
	FieldEducation,
	FieldTotalExperience,
	FieldRelevantExperience,
	FieldCompanies,
	FieldRoles,
	FieldCurrentCTC,
	FieldExpectedCTC,
	FieldNoticePeriod,
	FieldCurrentLocation,
	FieldReasonForSwitch,
}

// CandidateInfo holds the recruiter-entered form data. It is never filled
// from resume text.
type CandidateInfo struct {
	Name               string   `json:"name"`
	Education          string   `json:"education"`
	TotalExperience    string   `json:"total_experience"`
	RelevantExperience string   `json:"relevant_experience"`
	Companies          []string `json:"companies"`
	Roles              []string `json:"roles"`
	CurrentCTC         string   `json:"current_ctc"`
	ExpectedCTC        string   `json:"expected_ctc"`
	NoticePeriod       string   `json:"notice_period"`
	CurrentLocation    string   `json:"current_location"`
	ReasonForSwitch    string   `json:"reason_for_switch"`
}

// Value returns the prompt value for a summary label. List fields are
// joined with ", ". Unknown labels return "".
func (c CandidateInfo) Value(field string) string {
	switch field {
	case FieldName:
		return c.Name
	case FieldEducation:
		return c.Education
	case FieldTotalExperience:
		return c.TotalExperience
	case FieldRelevantExperience:
		return c.RelevantExperience
	case FieldCompanies:
		return strings.Join(c.Companies, candidateListValueJoiner)
	case FieldRoles:
		return strings.Join(c.Roles, candidateListValueJoiner)
	case FieldCurrentCTC:
		return c.CurrentCTC
	case FieldExpectedCTC:
		return c.ExpectedCTC
	case FieldNoticePeriod:
		return c.NoticePeriod
	case FieldCurrentLocation:
		return c.CurrentLocation
	case FieldReasonForSwitch:
		return c.ReasonForSwitch
	}
	return ""
}

// Validate checks field sizes so a form cannot blow the prompt budget.
func (c CandidateInfo) Validate() error {
	for _, field := range SummaryFields {
		if len(c.Value(field)) > MaxCandidateFieldLength {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("must be at most %d characters", MaxCandidateFieldLength),
			}
		}
	}
	if len(c.Companies) > MaxCandidateListEntries {
		return &ValidationError{Field: FieldCompanies, Message: "too many entries"}
	}
	if len(c.Roles) > MaxCandidateListEntries {
		return &ValidationError{Field: FieldRoles, Message: "too many entries"}
	}
	return nil
}

// Form keys of the candidate details form.
const (
	FormName               = "name"
	FormEducation          = "education"
	FormTotalExperience    = "total_experience"
	FormRelevantExperience = "relevant_experience"
	FormCompanies          = "companies"
	FormRoles              = "roles"
	FormCurrentCTC         = "current_ctc"
	FormExpectedCTC        = "expected_ctc"
	FormNoticePeriod       = "notice_period"
	FormCurrentLocation    = "current_location"
	FormReasonForSwitch    = "reason_for_switch"
)

// ParseCandidateForm builds CandidateInfo from form values looked up by key.
// Scalar values are trimmed; companies are comma-separated and roles are one
// per line.
func ParseCandidateForm(get func(key string) string) CandidateInfo {
	value := func(key string) string { return strings.TrimSpace(get(key)) }
	return CandidateInfo{
		Name:               value(FormName),
		Education:          value(FormEducation),
		TotalExperience:    value(FormTotalExperience),
		RelevantExperience: value(FormRelevantExperience),
		Companies:          SplitCompanies(get(FormCompanies)),
		Roles:              SplitRoles(get(FormRoles)),
		CurrentCTC:         value(FormCurrentCTC),
		ExpectedCTC:        value(FormExpectedCTC),
		NoticePeriod:       value(FormNoticePeriod),
		CurrentLocation:    value(FormCurrentLocation),
		ReasonForSwitch:    value(FormReasonForSwitch),
	}
}

// SplitCompanies parses the comma-separated companies list.
func SplitCompanies(raw string) []string {
	return splitNonEmpty(raw, ",")
}

// SplitRoles parses the one-per-line roles list.
func SplitRoles(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return splitNonEmpty(raw, "\n")
}

func splitNonEmpty(raw, sep string) []string {
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
