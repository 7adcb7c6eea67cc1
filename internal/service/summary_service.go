package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"resume-redactor/internal/domain"
	apperrors "resume-redactor/pkg/errors"
)

const (
	DefaultExcerptLimit   = 5000
	DefaultSummaryTimeout = 60 * time.Second

	redactedPlaceholder = "[REDACTED]"
)

// SummaryOptions bounds the generator call and the resume excerpt.
type SummaryOptions struct {
	Timeout      time.Duration
	ExcerptLimit int
}

// SummaryService builds the candidate summary prompt and forwards it to the
// text generator.
type SummaryService struct {
	generator domain.TextGenerator
	detector  domain.SpanDetector
	logger    domain.Logger
	opts      SummaryOptions
}

// NewSummaryService creates a new summary service. Zero options fall back to
// the defaults.
func NewSummaryService(
	generator domain.TextGenerator,
	detector domain.SpanDetector,
	logger domain.Logger,
	opts SummaryOptions,
) *SummaryService {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultSummaryTimeout
	}
	if opts.ExcerptLimit <= 0 {
		opts.ExcerptLimit = DefaultExcerptLimit
	}
	return &SummaryService{
		generator: generator,
		detector:  detector,
		logger:    logger,
		opts:      opts,
	}
}

// Generate returns the generator's response unmodified. There are no retries;
// a failed or empty response is a service error.
func (s *SummaryService) Generate(ctx context.Context, info domain.CandidateInfo, resumeText string) (string, error) {
	if err := info.Validate(); err != nil {
		return "", apperrors.NewValidationError("invalid candidate details", err.Error())
	}

	prompt := BuildSummaryPrompt(info, s.Excerpt(resumeText))

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	summary, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("Summary generation failed", err, "elapsed", time.Since(start).String())
		if apperrors.IsType(err, apperrors.ErrorTypeService) {
			return "", err
		}
		return "", apperrors.NewServiceError("summary generation failed", err)
	}
	if strings.TrimSpace(summary) == "" {
		return "", apperrors.NewServiceError("summary generation failed", domain.ErrEmptyGeneration)
	}

	s.logger.Info("Summary generated", "elapsed", time.Since(start).String(), "chars", len(summary))
	return summary, nil
}

// Excerpt blanks every sensitive literal the detector finds and truncates the
// result to the configured number of characters.
func (s *SummaryService) Excerpt(resumeText string) string {
	literals := domain.SensitiveLiterals(s.detector.Detect(resumeText))
	// Longest first, so a literal containing another is replaced whole.
	sort.SliceStable(literals, func(i, j int) bool { return len(literals[i]) > len(literals[j]) })
	for _, l := range literals {
		resumeText = strings.ReplaceAll(resumeText, l, redactedPlaceholder)
	}
	return truncateRunes(resumeText, s.opts.ExcerptLimit)
}

// BuildSummaryPrompt embeds the eleven form fields in their fixed order, the
// resume excerpt, and the output skeleton the model must follow.
func BuildSummaryPrompt(info domain.CandidateInfo, excerpt string) string {
	var sb strings.Builder

	sb.WriteString("You are an experienced Technical Human Resource Manager.\n")
	sb.WriteString("Based on the following details, structure the candidate's information:\n\n")
	for _, field := range domain.SummaryFields {
		fmt.Fprintf(&sb, "%s: %s\n", field, info.Value(field))
	}

	sb.WriteString("\nAdditional extracted details from resume:\n")
	sb.WriteString(excerpt)
	sb.WriteString("\n\n")

	sb.WriteString("Don't share the contact details in the candidate summary. ")
	fmt.Fprintf(&sb, "Prioritize the information shared in the %s section.\n\n", domain.FieldRoles)

	sb.WriteString("Please format the output in a structured and professional manner. ")
	sb.WriteString("Structure the summary in the format given below\n")
	for _, field := range domain.SummaryFields {
		fmt.Fprintf(&sb, "%s: \n", field)
	}

	return sb.String()
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
