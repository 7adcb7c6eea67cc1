package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apperrors "resume-redactor/pkg/errors"

	"github.com/google/uuid"
)

const (
	maskedPrefix    = "masked_"
	multipartMemory = 10 << 20
	inputFileName   = "input.pdf"
)

var pdfMagic = []byte("%PDF-")

// workspace is a per-request directory holding the upload and its outputs.
type workspace struct {
	dir string
}

func newWorkspace(root string) (*workspace, error) {
	dir := filepath.Join(root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, apperrors.NewInternalError("failed to create upload workspace", err)
	}
	return &workspace{dir: dir}, nil
}

func (ws *workspace) path(name string) string {
	return filepath.Join(ws.dir, name)
}

func (ws *workspace) remove() error {
	return os.RemoveAll(ws.dir)
}

// upload is a validated PDF saved into a workspace.
type upload struct {
	path         string
	originalName string
}

// maskedName is the download name of the redacted copy.
func (u *upload) maskedName() string {
	return maskedPrefix + u.originalName
}

// parseUploadForm bounds the request body and parses the multipart form.
func parseUploadForm(w http.ResponseWriter, r *http.Request, maxFileSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.NewValidationError("file too large", fmt.Sprintf("maximum size is %d bytes", maxFileSize))
		}
		return apperrors.NewValidationError("invalid multipart form")
	}
	return nil
}

// receivePDF saves the "file" part into ws. It returns nil, nil when the
// part is absent and required is false.
func receivePDF(r *http.Request, ws *workspace, maxFileSize int64, required bool) (*upload, error) {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) && !required {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewValidationError("file is required")
	}
	defer file.Close()

	name := sanitizeFileName(header)
	if strings.ToLower(filepath.Ext(name)) != ".pdf" {
		return nil, apperrors.NewValidationError("unsupported file type", "only PDF (.pdf) is accepted")
	}
	if header.Size > maxFileSize {
		return nil, apperrors.NewValidationError("file too large", fmt.Sprintf("maximum size is %d bytes", maxFileSize))
	}

	head := make([]byte, len(pdfMagic))
	n, _ := io.ReadFull(file, head)
	if !bytes.Equal(head[:n], pdfMagic) {
		return nil, apperrors.NewValidationError("unsupported file type", "file is not a PDF document")
	}

	dst := ws.path(inputFileName)
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to store upload", err)
	}
	if err := writeUpload(out, head[:n], file); err != nil {
		return nil, apperrors.NewInternalError("failed to store upload", err)
	}

	return &upload{path: dst, originalName: name}, nil
}

// writeUpload copies the sniffed header and the rest of the upload into out
// and closes it. A failed close is reported, since buffered data may be lost.
func writeUpload(out io.WriteCloser, head []byte, rest io.Reader) error {
	if _, err := out.Write(head); err != nil {
		_ = out.Close()
		return err
	}
	if _, err := io.Copy(out, rest); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// sanitizeFileName strips path components and characters unsafe in headers.
func sanitizeFileName(header *multipart.FileHeader) string {
	name := filepath.Base(strings.ReplaceAll(header.Filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' || r == '/' {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "resume.pdf"
	}
	return name
}
