package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-redactor/internal/testutil"
	apperrors "resume-redactor/pkg/errors"
)

func TestFitzTextExtractor_ExtractPages(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "resume.pdf", [][]string{
		{"Jane Doe", contactLine},
		{"Experience", "Acme Corp"},
	})

	extractor := NewFitzTextExtractor(NewMockLogger())
	pages, err := extractor.ExtractPages(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}
	if !strings.Contains(pages[0], "john@example.com") {
		t.Errorf("Expected page 1 to contain the email, got %q", pages[0])
	}
	if !strings.Contains(pages[1], "Acme Corp") {
		t.Errorf("Expected page 2 to contain 'Acme Corp', got %q", pages[1])
	}
}

func TestFitzTextExtractor_ExtractText(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "resume.pdf", [][]string{{"First"}, {"Second"}})

	text, err := NewFitzTextExtractor(NewMockLogger()).ExtractText(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	first := strings.Index(text, "First")
	second := strings.Index(text, "Second")
	if first < 0 || second < 0 || first > second {
		t.Errorf("Expected pages in order, got %q", text)
	}
	if !strings.HasSuffix(text, "\n") {
		t.Errorf("Expected trailing page newline, got %q", text)
	}
}

func TestFitzTextExtractor_Errors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(garbage, []byte("not a pdf at all"), 0o600); err != nil {
		t.Fatal(err)
	}

	extractor := NewFitzTextExtractor(NewMockLogger())
	for _, path := range []string{filepath.Join(dir, "missing.pdf"), garbage} {
		_, err := extractor.ExtractText(path)
		if err == nil {
			t.Fatalf("Expected error for %s", path)
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeIO) {
			t.Errorf("Expected IO error for %s, got %v", path, err)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"keeps layout whitespace", "a\tb\nc\r\n", "a\tb\nc\r\n"},
		{"drops control characters", "a\x00b\x07c\x7f", "abc"},
		{"drops invalid utf8", "ok\xffdone", "okdone"},
		{"keeps unicode", "José — Zürich", "José — Zürich"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeText(tt.input); got != tt.want {
				t.Errorf("sanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
