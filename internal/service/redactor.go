package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"resume-redactor/internal/domain"
	apperrors "resume-redactor/pkg/errors"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFRedactor removes the glyphs of every located occurrence of the
// sensitive literals from the page content and paints opaque black boxes
// over the vacated areas. Page content is wrapped in a saved graphics state
// so the boxes are drawn last, in default user space, above everything else.
type PDFRedactor struct {
	geometry domain.GeometrySource
	logger   domain.Logger
}

// NewPDFRedactor creates a new redactor
func NewPDFRedactor(geometry domain.GeometrySource, logger domain.Logger) *PDFRedactor {
	return &PDFRedactor{
		geometry: geometry,
		logger:   logger,
	}
}

// Redact implements domain.Redactor. The output is written even when no
// literal is found; the input file is never modified.
func (r *PDFRedactor) Redact(ctx context.Context, inputPath, outputPath string, literals []string) (*domain.RedactionReport, error) {
	if samePath(inputPath, outputPath) {
		return nil, apperrors.NewIOError("invalid output path", domain.ErrSameOutputPath)
	}

	marks, pageCount, err := r.locate(ctx, inputPath, uniqueLiterals(literals))
	if err != nil {
		return nil, err
	}

	pdfCtx, err := readContext(inputPath)
	if err != nil {
		return nil, apperrors.NewIOError("failed to open PDF", err)
	}
	if pdfCtx.PageCount != pageCount {
		r.logger.Warn("Page count mismatch between readers", "layout", pageCount, "document", pdfCtx.PageCount)
	}

	byPage := make(map[int][]domain.Rect)
	for _, m := range marks {
		byPage[m.Page] = append(byPage[m.Page], m.Rect)
	}
	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	for _, pageNr := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.applyRedactions(pdfCtx, pageNr, byPage[pageNr]); err != nil {
			return nil, apperrors.NewProcessingError("failed to apply redactions", fmt.Errorf("page %d: %w", pageNr, err))
		}
	}

	if err := api.WriteContextFile(pdfCtx, outputPath); err != nil {
		_ = os.Remove(outputPath)
		return nil, apperrors.NewIOError("failed to write redacted PDF", err)
	}

	r.logger.Info("Redaction applied", "pages", pdfCtx.PageCount, "marks", len(marks))

	return &domain.RedactionReport{
		PageCount: pdfCtx.PageCount,
		Marks:     marks,
	}, nil
}

// locate collects marks in page order, then literal order.
func (r *PDFRedactor) locate(ctx context.Context, path string, literals []string) ([]domain.RedactionMark, int, error) {
	locator, err := r.geometry.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if cerr := locator.Close(); cerr != nil {
			r.logger.Warn("Failed to close PDF", "error", cerr)
		}
	}()

	pageCount := locator.NumPage()
	var marks []domain.RedactionMark
	for pageNr := 1; pageNr <= pageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		for _, literal := range literals {
			for _, rect := range locator.Locate(pageNr, literal) {
				marks = append(marks, domain.RedactionMark{Page: pageNr, Rect: rect, Text: literal})
			}
		}
	}
	return marks, pageCount, nil
}

// readContext loads a validated document that is written back with classic
// xref tables and no object streams, the layout every downstream reader handles.
func readContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	pdfCtx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, err
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, err
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, err
	}
	return pdfCtx, nil
}

// applyRedactions replaces the page's content with a single stream: the
// original operators with the covered glyphs removed, isolated between q/Q,
// followed by one filled rectangle per mark. When the content cannot be
// parsed the original operators are kept and only the boxes are added.
func (r *PDFRedactor) applyRedactions(pdfCtx *model.Context, pageNr int, rects []domain.Rect) error {
	var original []byte
	rd, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil {
		return err
	}
	if rd != nil {
		if original, err = io.ReadAll(rd); err != nil {
			return err
		}
	}

	d, _, inh, err := pdfCtx.PageDict(pageNr, false)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("page not found")
	}

	var resources types.Dict
	if inh != nil {
		resources = inh.Resources
	}
	scrubber := newTextScrubber(pdfCtx.XRefTable, resources, rects)
	content, err := scrubber.scrub(original)
	switch {
	case err != nil:
		r.logger.Warn("Page text left in place under redaction boxes", "page", pageNr, "error", err)
		content = original
	case scrubber.removed == 0:
		r.logger.Warn("No glyphs removed under redaction boxes", "page", pageNr, "marks", len(rects))
	default:
		r.logger.Debug("Removed redacted glyphs", "page", pageNr, "glyphs", scrubber.removed)
	}

	var buf bytes.Buffer
	buf.WriteString("q\n")
	buf.Write(content)
	buf.WriteString("\nQ\n")
	buf.WriteString(fillOperators(rects))

	sd, err := pdfCtx.NewStreamDictForBuf(buf.Bytes())
	if err != nil {
		return err
	}
	if err := sd.Encode(); err != nil {
		return err
	}
	ir, err := pdfCtx.IndRefForNewObject(*sd)
	if err != nil {
		return err
	}
	d.Update("Contents", *ir)
	return nil
}

func fillOperators(rects []domain.Rect) string {
	var sb strings.Builder
	sb.WriteString("q\n0 0 0 rg\n")
	for _, rect := range rects {
		fmt.Fprintf(&sb, "%.2f %.2f %.2f %.2f re f\n", rect.X0, rect.Y0, rect.Width(), rect.Height())
	}
	sb.WriteString("Q\n")
	return sb.String()
}

// uniqueLiterals trims and de-duplicates literals, keeping first-seen order.
// The search is case-insensitive, so literals differing only in ASCII case
// collapse too.
func uniqueLiterals(literals []string) []string {
	seen := make(map[string]bool, len(literals))
	out := make([]string, 0, len(literals))
	for _, l := range literals {
		l = strings.TrimSpace(l)
		key := normalizeNeedle(l)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}
