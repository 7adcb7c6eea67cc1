package service

import (
	"fmt"
	"strings"

	"resume-redactor/internal/domain"
	apperrors "resume-redactor/pkg/errors"

	"github.com/gen2brain/go-fitz"
)

// FitzTextExtractor extracts page text with MuPDF.
type FitzTextExtractor struct {
	logger domain.Logger
}

// NewFitzTextExtractor creates a new text extractor
func NewFitzTextExtractor(logger domain.Logger) *FitzTextExtractor {
	return &FitzTextExtractor{
		logger: logger,
	}
}

// ExtractText returns the concatenation of every page's text, each page
// followed by a newline.
func (e *FitzTextExtractor) ExtractText(path string) (string, error) {
	pages, err := e.ExtractPages(path)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(page)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// ExtractPages returns the text of each page in order. The document handle
// is released on every return path.
func (e *FitzTextExtractor) ExtractPages(path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, apperrors.NewIOError("failed to open PDF", err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.logger.Warn("Failed to close PDF", "error", cerr)
		}
	}()

	numPages := doc.NumPage()
	pages := make([]string, 0, numPages)
	for pageNum := 0; pageNum < numPages; pageNum++ {
		e.logger.Debug("Extracting page text", "page", pageNum+1, "total", numPages)
		text, err := doc.Text(pageNum)
		if err != nil {
			return nil, apperrors.NewIOError(
				"failed to extract PDF text",
				fmt.Errorf("page %d: %w", pageNum+1, err),
			)
		}
		pages = append(pages, sanitizeText(text))
	}

	return pages, nil
}

// sanitizeText drops NUL and other control characters MuPDF can emit for
// unmapped glyphs. Tab, newline and carriage return are kept so line
// structure survives for the detector.
func sanitizeText(text string) string {
	text = strings.ToValidUTF8(text, "")

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			result.WriteRune(r)
		case r < 0x20 || r == 0x7F:
			continue
		case r >= 0xD800 && r <= 0xDFFF:
			continue
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}
