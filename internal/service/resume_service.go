package service

import (
	"context"

	"resume-redactor/internal/domain"

	"golang.org/x/sync/errgroup"
)

type fileRedactor interface {
	RedactFile(ctx context.Context, inputPath, outputPath string) (*domain.RedactionReport, error)
}

// ResumeService implements domain.ResumeService.
type ResumeService struct {
	redaction fileRedactor
	extractor domain.TextExtractor
	summary   domain.SummaryGenerator
	logger    domain.Logger
}

// NewResumeService creates a new resume service
func NewResumeService(
	redaction fileRedactor,
	extractor domain.TextExtractor,
	summary domain.SummaryGenerator,
	logger domain.Logger,
) *ResumeService {
	return &ResumeService{
		redaction: redaction,
		extractor: extractor,
		summary:   summary,
		logger:    logger,
	}
}

func (s *ResumeService) Redact(ctx context.Context, inputPath, outputPath string) (*domain.RedactionReport, error) {
	return s.redaction.RedactFile(ctx, inputPath, outputPath)
}

// Summarize extracts the resume text of inputPath, if any, and generates the
// candidate summary.
func (s *ResumeService) Summarize(ctx context.Context, inputPath string, info domain.CandidateInfo) (string, error) {
	resumeText := ""
	if inputPath != "" {
		text, err := s.extractor.ExtractText(inputPath)
		if err != nil {
			return "", err
		}
		resumeText = text
	}
	return s.summary.Generate(ctx, info, resumeText)
}

// Process redacts and summarizes the same upload concurrently. Both read the
// original input; the first failure cancels the other.
func (s *ResumeService) Process(ctx context.Context, inputPath, outputPath string, info domain.CandidateInfo) (*domain.ProcessResult, error) {
	result := &domain.ProcessResult{OutputPath: outputPath}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report, err := s.Redact(gctx, inputPath, outputPath)
		if err != nil {
			return err
		}
		result.Report = report
		return nil
	})
	g.Go(func() error {
		summary, err := s.Summarize(gctx, inputPath, info)
		if err != nil {
			return err
		}
		result.Summary = summary
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Resume processing failed", err)
		return nil, err
	}
	return result, nil
}
