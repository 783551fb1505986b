package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/maarifahub/maarifa-backend/internal/config"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNotFound        = errors.New("file not found")
)

// Allowed upload MIME types. Receipts may be images or PDFs.
var allowedMIMETypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// contentTypes maps stored file extensions back to response content types.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// MediaService handles receipt/avatar/question-image storage on local disk.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// SaveUpload saves an uploaded file under a UUID filename and returns the
// stored filename.
func (s *MediaService) SaveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}

	if header.Size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	destPath := filepath.Join(s.cfg.UploadDir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return filename, nil
}

// Open resolves a stored filename for serving. The name is reduced to its
// basename so a path-traversal request cannot escape the upload directory.
// Returns the absolute path and the content type derived from the extension.
func (s *MediaService) Open(name string) (string, string, error) {
	clean := filepath.Base(name)
	if clean == "." || clean == ".." || clean == "/" {
		return "", "", ErrFileNotFound
	}

	path := filepath.Join(s.cfg.UploadDir, clean)
	if _, err := os.Stat(path); err != nil {
		return "", "", ErrFileNotFound
	}

	ct := contentTypes[strings.ToLower(filepath.Ext(clean))]
	if ct == "" {
		ct = "application/octet-stream"
	}
	return path, ct, nil
}
