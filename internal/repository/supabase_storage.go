package repository

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"resume-redactor/internal/domain"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
)

const pdfContentType = "application/pdf"

// ObjectUploader is the subset of the Supabase Storage client used here.
type ObjectUploader interface {
	UploadFile(bucketID string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
}

// SupabaseStorage archives redacted PDFs in a Supabase Storage bucket.
type SupabaseStorage struct {
	uploader ObjectUploader
	bucket   string
	prefix   string
	logger   domain.Logger
	newID    func() string
}

// NewSupabaseStorage creates a storage service writing into bucket under prefix.
func NewSupabaseStorage(uploader ObjectUploader, bucket, prefix string, logger domain.Logger) *SupabaseStorage {
	return &SupabaseStorage{
		uploader: uploader,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Upload implements domain.StorageService. Every upload gets its own object
// key, so archives of files sharing a name never replace each other.
func (s *SupabaseStorage) Upload(ctx context.Context, name string, file io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	objectPath := s.objectPath(name)
	contentType := pdfContentType
	upsert := false

	_, err := s.uploader.UploadFile(s.bucket, objectPath, file, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("storage upload failed: %w", err)
	}

	s.logger.Debug("Uploaded object", "bucket", s.bucket, "path", objectPath)
	return nil
}

// objectPath is <prefix>/<id>/<base name>.
func (s *SupabaseStorage) objectPath(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	return path.Join(s.prefix, s.newID(), name)
}
