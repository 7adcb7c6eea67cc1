package domain

// AuthUser is the identity carried by a validated access token.
type AuthUser struct {
	ID    string
	Email string
	Role  string
}

// ProcessResult is the combined output of redaction and summary generation.
type ProcessResult struct {
	Summary    string           `json:"summary"`
	OutputPath string           `json:"-"`
	Report     *RedactionReport `json:"report"`
}
