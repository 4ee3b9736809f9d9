// Package storage handles upload intake: validating the incoming audio file
// and writing it to a temporary path on local disk. The file's lifetime is
// owned by the pipeline from the moment SaveUpload returns.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "voicenotes/internal/errors"
)

// MaxUploadBytes is the default upload size ceiling (25MB, the Whisper API limit).
const MaxUploadBytes = 25 * 1024 * 1024

var allowedMIMETypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/wave":  true,
	"audio/m4a":   true,
	"audio/x-m4a": true,
	"audio/mp4":   true,
	"audio/ogg":   true,
	"audio/webm":  true,
	"audio/flac":  true,
	"audio/aac":   true,
}

var allowedExtensions = map[string]bool{
	".mp3":  true,
	".mpga": true,
	".mpeg": true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".webm": true,
	".flac": true,
	".aac":  true,
}

// Upload describes an accepted audio file saved to a temporary path.
type Upload struct {
	Path             string
	OriginalFilename string
	ContentType      string
	Size             int64
}

// SaveUpload validates the multipart file and writes it under dir with a
// collision-resistant generated name. Validation failures return a 400-class
// error before anything touches disk.
func SaveUpload(dir string, file *multipart.FileHeader, maxBytes int64) (*Upload, error) {
	if maxBytes <= 0 {
		maxBytes = MaxUploadBytes
	}

	if file.Size > maxBytes {
		return nil, apperrors.Validation(fmt.Sprintf("file size exceeds %dMB limit", maxBytes/(1024*1024)))
	}

	contentType := file.Header.Get("Content-Type")
	if !isAllowedType(contentType, file.Filename) {
		return nil, apperrors.Validation("unsupported audio format. Supported: mp3, wav, m4a, ogg, webm, flac, aac")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("audio-%d-%s%s", time.Now().UnixNano(), uuid.New().String()[:8], ext)
	dst := filepath.Join(dir, name)

	if err := saveMultipartFile(file, dst); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &Upload{
		Path:             dst,
		OriginalFilename: file.Filename,
		ContentType:      contentType,
		Size:             file.Size,
	}, nil
}

// isAllowedType checks the declared MIME type against the allowlist. A
// missing or generic type falls back to the filename extension, since
// browsers and mobile clients are inconsistent about audio MIME types.
func isAllowedType(contentType, filename string) bool {
	ct := contentType
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(strings.ToLower(ct))

	if ct != "" && ct != "application/octet-stream" {
		return allowedMIMETypes[ct]
	}
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

func saveMultipartFile(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// Cleanup removes the temporary file if it still exists. Failures are
// logged and swallowed; cleanup must never escalate.
func Cleanup(path string, log *logrus.Entry) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return
		}
		if log != nil {
			log.WithField("path", path).WithField("error", err.Error()).Warn("failed to clean up temporary file")
		}
		return
	}
	if log != nil {
		log.WithField("path", path).Debug("cleaned up temporary file")
	}
}
