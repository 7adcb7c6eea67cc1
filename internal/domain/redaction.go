package domain

import "strings"

// SpanCategory names the pattern family that produced a span.
type SpanCategory string

const (
	CategoryPhone      SpanCategory = "phone"
	CategoryEmail      SpanCategory = "email"
	CategoryProfileURL SpanCategory = "profile_url"
	CategoryCustom     SpanCategory = "custom"
)

// Span is a substring of page text classified as sensitive.
// Text is never serialized: reports leave the process, literals must not.
type Span struct {
	Text     string       `json:"-"`
	Category SpanCategory `json:"category"`
	Excluded bool         `json:"excluded"` // also matches the date exception
	Page     int          `json:"page"`     // 1-indexed, 0 when detected outside a document
	Start    int          `json:"start"`    // byte offset in the page text
	End      int          `json:"end"`
}

// Rect is an axis-aligned rectangle in PDF user space (origin bottom-left).
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

// RedactionMark is a region of a page flagged for permanent blackout.
type RedactionMark struct {
	Page int    `json:"page"`
	Rect Rect   `json:"rect"`
	Text string `json:"-"`
}

// RedactionReport summarizes one redaction run.
type RedactionReport struct {
	PageCount int             `json:"page_count"`
	Spans     []Span          `json:"spans"`
	Marks     []RedactionMark `json:"marks"`
}

// ExcludedCount returns how many detected spans were dropped by the date exception.
func (r *RedactionReport) ExcludedCount() int {
	n := 0
	for _, s := range r.Spans {
		if s.Excluded {
			n++
		}
	}
	return n
}

// SensitiveLiterals returns the literal text of every span eligible for
// redaction, in detection order. Duplicates are kept.
func SensitiveLiterals(spans []Span) []string {
	literals := make([]string, 0, len(spans))
	for _, s := range spans {
		if s.Excluded || strings.TrimSpace(s.Text) == "" {
			continue
		}
		literals = append(literals, s.Text)
	}
	return literals
}
