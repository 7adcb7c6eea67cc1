package service

import (
	"context"
	"os"
	"path/filepath"

	"resume-redactor/internal/domain"
)

// RedactionService runs the detect-then-redact pipeline over one file.
type RedactionService struct {
	extractor domain.TextExtractor
	detector  domain.SpanDetector
	redactor  domain.Redactor
	storage   domain.StorageService
	logger    domain.Logger
}

// NewRedactionService creates a new redaction pipeline. storage may be nil,
// in which case redacted output is not archived.
func NewRedactionService(
	extractor domain.TextExtractor,
	detector domain.SpanDetector,
	redactor domain.Redactor,
	storage domain.StorageService,
	logger domain.Logger,
) *RedactionService {
	return &RedactionService{
		extractor: extractor,
		detector:  detector,
		redactor:  redactor,
		storage:   storage,
		logger:    logger,
	}
}

// RedactFile detects sensitive spans page by page, pools their literals and
// blacks out every occurrence in a copy written to outputPath.
func (s *RedactionService) RedactFile(ctx context.Context, inputPath, outputPath string) (*domain.RedactionReport, error) {
	pages, err := s.extractor.ExtractPages(inputPath)
	if err != nil {
		return nil, err
	}

	var spans []domain.Span
	for i, text := range pages {
		for _, span := range s.detector.Detect(text) {
			span.Page = i + 1
			spans = append(spans, span)
		}
	}
	literals := domain.SensitiveLiterals(spans)

	s.logger.Debug("Detected sensitive spans", "pages", len(pages), "spans", len(spans), "literals", len(literals))

	report, err := s.redactor.Redact(ctx, inputPath, outputPath, literals)
	if err != nil {
		return nil, err
	}
	report.Spans = spans

	s.logger.Info("Redacted document",
		"pages", report.PageCount,
		"spans", len(spans),
		"excluded", report.ExcludedCount(),
		"marks", len(report.Marks),
	)

	s.archive(ctx, outputPath)
	return report, nil
}

// archive uploads the redacted output. Archival is best-effort: a failure is
// logged and the caller still receives the redacted file.
func (s *RedactionService) archive(ctx context.Context, outputPath string) {
	if s.storage == nil {
		return
	}
	f, err := os.Open(outputPath)
	if err != nil {
		s.logger.Error("Failed to open redacted output for archival", err)
		return
	}
	defer f.Close()

	if err := s.storage.Upload(ctx, filepath.Base(outputPath), f); err != nil {
		s.logger.Error("Failed to archive redacted output", err)
		return
	}
	s.logger.Debug("Archived redacted output", "path", filepath.Base(outputPath))
}
