package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"resume-redactor/internal/domain"
	"resume-redactor/internal/testutil"
	apperrors "resume-redactor/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRedaction struct {
	report *domain.RedactionReport
	err    error
	block  bool
}

func (s *stubRedaction) RedactFile(ctx context.Context, inputPath, outputPath string) (*domain.RedactionReport, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.report, s.err
}

func newTestResumeService(t *testing.T, gen domain.TextGenerator) *ResumeService {
	t.Helper()
	logger := NewMockLogger()
	extractor := NewFitzTextExtractor(logger)
	detector := NewDetector()
	return NewResumeService(
		newTestRedactionService(nil, logger),
		extractor,
		NewSummaryService(gen, detector, logger, SummaryOptions{}),
		logger,
	)
}

func TestResumeService_Process(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WritePDF(t, dir, "resume.pdf", [][]string{{"Jane Doe", contactLine}})
	output := filepath.Join(dir, "masked_resume.pdf")
	gen := NewMockTextGenerator("Name: Jane Doe", nil)

	result, err := newTestResumeService(t, gen).Process(context.Background(), input, output, sampleCandidate())
	require.NoError(t, err)

	assert.Equal(t, "Name: Jane Doe", result.Summary)
	assert.Equal(t, output, result.OutputPath)
	require.NotNil(t, result.Report)
	assert.Len(t, result.Report.Marks, 2)
	assert.FileExists(t, output)

	assert.NotContains(t, gen.LastPrompt(), "john@example.com")
	assert.Contains(t, gen.LastPrompt(), "Jane Doe")
}

func TestResumeService_SummarizeWithoutFile(t *testing.T) {
	gen := NewMockTextGenerator("summary", nil)
	summary, err := newTestResumeService(t, gen).Summarize(context.Background(), "", sampleCandidate())
	require.NoError(t, err)
	assert.Equal(t, "summary", summary)
	assert.Contains(t, gen.LastPrompt(), "Name: Jane Doe")
}

func TestResumeService_SummarizeMissingFile(t *testing.T) {
	gen := NewMockTextGenerator("summary", nil)
	_, err := newTestResumeService(t, gen).Summarize(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), sampleCandidate())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeIO))
	assert.Empty(t, gen.prompts)
}

func TestResumeService_ProcessFirstErrorCancels(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WritePDF(t, dir, "resume.pdf", [][]string{{contactLine}})
	logger := NewMockLogger()
	gen := NewMockTextGenerator("", errors.New("upstream down"))

	svc := NewResumeService(
		&stubRedaction{block: true},
		NewFitzTextExtractor(logger),
		NewSummaryService(gen, NewDetector(), logger, SummaryOptions{}),
		logger,
	)

	result, err := svc.Process(context.Background(), input, filepath.Join(dir, "out.pdf"), sampleCandidate())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeService), "got %v", err)
}

func TestResumeService_ProcessRedactionError(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WritePDF(t, dir, "resume.pdf", [][]string{{contactLine}})
	logger := NewMockLogger()
	redactErr := apperrors.NewIOError("failed to write redacted PDF", errors.New("disk full"))

	svc := NewResumeService(
		&stubRedaction{err: redactErr},
		NewFitzTextExtractor(logger),
		NewSummaryService(NewMockTextGenerator("ok", nil), NewDetector(), logger, SummaryOptions{}),
		logger,
	)

	_, err := svc.Process(context.Background(), input, filepath.Join(dir, "out.pdf"), sampleCandidate())
	assert.ErrorIs(t, err, redactErr)
}
