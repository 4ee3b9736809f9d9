package storage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "voicenotes/internal/errors"
)

// makeFileHeader builds a real *multipart.FileHeader by round-tripping a
// multipart body through an http.Request.
func makeFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="audio"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	_, fh, err := req.FormFile("audio")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	return fh
}

func TestSaveUpload_AcceptsAllowedType(t *testing.T) {
	dir := t.TempDir()
	fh := makeFileHeader(t, "clip.mp3", "audio/mpeg", []byte("fake mp3 bytes"))

	up, err := SaveUpload(dir, fh, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if up.OriginalFilename != "clip.mp3" {
		t.Errorf("expected original filename clip.mp3, got %s", up.OriginalFilename)
	}
	if !strings.HasSuffix(up.Path, ".mp3") {
		t.Errorf("expected generated name to keep the extension, got %s", up.Path)
	}
	data, err := os.ReadFile(up.Path)
	if err != nil {
		t.Fatalf("temp file not written: %v", err)
	}
	if string(data) != "fake mp3 bytes" {
		t.Errorf("temp file content mismatch: %q", data)
	}
}

func TestSaveUpload_RejectsDisallowedType(t *testing.T) {
	dir := t.TempDir()
	fh := makeFileHeader(t, "report.pdf", "application/pdf", []byte("%PDF-1.4"))

	_, err := SaveUpload(dir, fh, 0)
	if err == nil {
		t.Fatal("expected validation error for application/pdf")
	}
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code != apperrors.ErrCodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}

	// Nothing may be written before the file is accepted.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no files written for rejected upload, found %d", len(entries))
	}
}

func TestSaveUpload_RejectsOversize(t *testing.T) {
	dir := t.TempDir()
	fh := makeFileHeader(t, "clip.wav", "audio/wav", bytes.Repeat([]byte{0}, 64))

	_, err := SaveUpload(dir, fh, 32)
	if err == nil {
		t.Fatal("expected validation error for oversized upload")
	}
	if apperrors.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", apperrors.StatusOf(err))
	}
}

func TestSaveUpload_GenericTypeFallsBackToExtension(t *testing.T) {
	dir := t.TempDir()

	fh := makeFileHeader(t, "voice.m4a", "application/octet-stream", []byte("m4a"))
	if _, err := SaveUpload(dir, fh, 0); err != nil {
		t.Errorf("octet-stream with .m4a extension should be accepted: %v", err)
	}

	fh = makeFileHeader(t, "notes.txt", "application/octet-stream", []byte("text"))
	if _, err := SaveUpload(dir, fh, 0); err == nil {
		t.Error("octet-stream with .txt extension should be rejected")
	}
}

func TestSaveUpload_GeneratedNamesDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		fh := makeFileHeader(t, "same.ogg", "audio/ogg", []byte("x"))
		up, err := SaveUpload(dir, fh, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[up.Path] {
			t.Fatalf("generated path collided: %s", up.Path)
		}
		seen[up.Path] = true
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audio-1-abc.mp3")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	Cleanup(path, nil)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected file to be removed")
	}

	// A second cleanup of the same path must be a no-op.
	Cleanup(path, nil)
	Cleanup("", nil)
}
