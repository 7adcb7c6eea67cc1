package handler

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type recordingFile struct {
	bytes.Buffer
	writeErr error
	closeErr error
	closed   int
}

func (f *recordingFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.Buffer.Write(p)
}

func (f *recordingFile) Close() error {
	f.closed++
	return f.closeErr
}

func TestWriteUpload(t *testing.T) {
	f := &recordingFile{}
	if err := writeUpload(f, []byte("%PDF-"), strings.NewReader("1.4 body")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if f.String() != "%PDF-1.4 body" {
		t.Errorf("Unexpected content %q", f.String())
	}
	if f.closed != 1 {
		t.Errorf("Expected one close, got %d", f.closed)
	}
}

func TestWriteUpload_CloseError(t *testing.T) {
	closeErr := errors.New("disk quota exceeded")
	f := &recordingFile{closeErr: closeErr}

	err := writeUpload(f, []byte("%PDF-"), strings.NewReader("1.4"))
	if !errors.Is(err, closeErr) {
		t.Fatalf("Expected close error, got %v", err)
	}
}

func TestWriteUpload_WriteErrorStillCloses(t *testing.T) {
	writeErr := errors.New("short write")
	f := &recordingFile{writeErr: writeErr}

	err := writeUpload(f, []byte("%PDF-"), strings.NewReader("1.4"))
	if !errors.Is(err, writeErr) {
		t.Fatalf("Expected write error, got %v", err)
	}
	if f.closed != 1 {
		t.Errorf("Expected file closed after failed write, got %d closes", f.closed)
	}
}
