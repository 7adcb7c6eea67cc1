package handler

import (
	"encoding/base64"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"

	"resume-redactor/internal/domain"
)

// ResumeHandler serves the redaction and summary endpoints.
type ResumeHandler struct {
	service     domain.ResumeService
	logger      domain.Logger
	uploadPath  string
	maxFileSize int64
}

func NewResumeHandler(service domain.ResumeService, logger domain.Logger, uploadPath string, maxFileSize int64) *ResumeHandler {
	return &ResumeHandler{
		service:     service,
		logger:      logger,
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type processResponse struct {
	Summary     string                  `json:"summary"`
	FileName    string                  `json:"file_name"`
	RedactedPDF string                  `json:"redacted_pdf"`
	Report      *domain.RedactionReport `json:"report"`
}

// Redact returns the redacted copy of the uploaded PDF as an attachment.
func (h *ResumeHandler) Redact(w http.ResponseWriter, r *http.Request) {
	ws, up, ok := h.receive(w, r, true)
	if !ok {
		return
	}
	defer h.cleanup(ws)

	output := ws.path(up.maskedName())
	report, err := h.service.Redact(r.Context(), up.path, output)
	if err != nil {
		writeAppError(w, h.logger, "Redaction failed", err)
		return
	}

	f, err := os.Open(output)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read redacted PDF")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": up.maskedName()}))
	w.Header().Set("X-Redaction-Marks", strconv.Itoa(len(report.Marks)))
	w.Header().Set("X-Page-Count", strconv.Itoa(report.PageCount))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Warn("Failed to stream redacted PDF", "error", err)
	}
}

// Summary generates the candidate summary from the form fields and, when a
// file is attached, the resume text.
func (h *ResumeHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ws, up, ok := h.receive(w, r, false)
	if !ok {
		return
	}
	defer h.cleanup(ws)

	inputPath := ""
	if up != nil {
		inputPath = up.path
	}

	info := domain.ParseCandidateForm(r.FormValue)
	summary, err := h.service.Summarize(r.Context(), inputPath, info)
	if err != nil {
		writeAppError(w, h.logger, "Summary failed", err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

// Process redacts the upload and summarizes it in one request.
func (h *ResumeHandler) Process(w http.ResponseWriter, r *http.Request) {
	ws, up, ok := h.receive(w, r, true)
	if !ok {
		return
	}
	defer h.cleanup(ws)

	info := domain.ParseCandidateForm(r.FormValue)
	result, err := h.service.Process(r.Context(), up.path, ws.path(up.maskedName()), info)
	if err != nil {
		writeAppError(w, h.logger, "Processing failed", err)
		return
	}

	data, err := os.ReadFile(result.OutputPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read redacted PDF")
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Summary:     result.Summary,
		FileName:    up.maskedName(),
		RedactedPDF: base64.StdEncoding.EncodeToString(data),
		Report:      result.Report,
	})
}

// receive parses the form and stores the upload. On failure the error
// response is already written and ok is false.
func (h *ResumeHandler) receive(w http.ResponseWriter, r *http.Request, required bool) (*workspace, *upload, bool) {
	if err := parseUploadForm(w, r, h.maxFileSize); err != nil {
		writeAppError(w, h.logger, "Rejected upload", err)
		return nil, nil, false
	}

	ws, err := newWorkspace(h.uploadPath)
	if err != nil {
		writeAppError(w, h.logger, "Upload workspace unavailable", err)
		return nil, nil, false
	}

	up, err := receivePDF(r, ws, h.maxFileSize, required)
	if err != nil {
		h.cleanup(ws)
		writeAppError(w, h.logger, "Rejected upload", err)
		return nil, nil, false
	}
	return ws, up, true
}

func (h *ResumeHandler) cleanup(ws *workspace) {
	if err := ws.remove(); err != nil {
		h.logger.Warn("Failed to remove upload workspace", "error", err)
	}
}
