package domain

import (
	"context"
	"io"
	"time"
)

// TextExtractor reads the plain text of a PDF on disk.
type TextExtractor interface {
	// ExtractText returns every page's text, each followed by a newline.
	ExtractText(path string) (string, error)
	// ExtractPages returns the text of each page, in page order.
	ExtractPages(path string) ([]string, error)
}

// SpanDetector classifies sensitive substrings of a page's text.
type SpanDetector interface {
	Detect(text string) []Span
}

// PageLocator maps literal strings to their visual positions on the pages
// of one open document.
type PageLocator interface {
	NumPage() int
	// Locate returns one rectangle per occurrence of literal on the 1-indexed page.
	Locate(pageNr int, literal string) []Rect
	Close() error
}

// GeometrySource opens a PageLocator for a PDF file.
type GeometrySource interface {
	Open(path string) (PageLocator, error)
}

// Redactor blacks out every occurrence of the given literals and writes the
// result to outputPath, leaving inputPath untouched.
type Redactor interface {
	Redact(ctx context.Context, inputPath, outputPath string, literals []string) (*RedactionReport, error)
}

// TextGenerator is the external generative-text collaborator: one prompt in,
// one text response out.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SummaryGenerator builds the candidate summary.
type SummaryGenerator interface {
	Generate(ctx context.Context, info CandidateInfo, resumeText string) (string, error)
}

// ResumeService is the use-case surface consumed by the HTTP handlers and the CLI.
type ResumeService interface {
	Redact(ctx context.Context, inputPath, outputPath string) (*RedactionReport, error)
	// Summarize reads resume text from inputPath; an empty path summarizes the form data alone.
	Summarize(ctx context.Context, inputPath string, info CandidateInfo) (string, error)
	Process(ctx context.Context, inputPath, outputPath string, info CandidateInfo) (*ProcessResult, error)
}

// StorageService archives redacted documents.
type StorageService interface {
	Upload(ctx context.Context, path string, file io.Reader) error
}

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*AuthUser, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetJWTSecret() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetRedactedBucket() string
	GetGoogleProject() string
	GetGoogleLocation() string
	GetGeminiModel() string
	GetGoogleCredentialsFile() string
	GetSummaryTimeout() time.Duration
	GetExcerptLimit() int
	GetDetectorRulesFile() string
}
