package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	// MaxFileSize is 50MB in bytes
	MaxFileSize = 50 * 1024 * 1024
)

// AllowedMediaTypes maps accepted sniffed MIME types to their canonical extension
var AllowedMediaTypes = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateMediaFile checks the size of an upload and sniffs its content type.
// The declared filename and Content-Type header are not trusted.
func ValidateMediaFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > MaxFileSize {
		return "", &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}
	if fileHeader.Size == 0 {
		return "", &FileUploadError{Code: "EMPTY_FILE", Message: "Uploaded file is empty"}
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() { _ = src.Close() }()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	for allowed := range AllowedMediaTypes {
		if mtype.Is(allowed) {
			return allowed, nil
		}
	}

	return "", &FileUploadError{
		Code:    "INVALID_FILE_FORMAT",
		Message: "Only PNG, JPEG, MP4 and MOV files are allowed",
	}
}

// MediaFilename builds a collision-free storage name with the extension of contentType
func MediaFilename(contentType string) string {
	ext, ok := AllowedMediaTypes[contentType]
	if !ok {
		ext = ".bin"
	}
	return uuid.NewString() + ext
}

// SaveUploadedFile saves the uploaded file under uploadDir as filename
func SaveUploadedFile(fileHeader *multipart.FileHeader, uploadDir, filename string) (err error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(filepath.Join(uploadDir, filepath.Base(filename)))
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// SafeFilename reports whether name is a bare file name with no path components
func SafeFilename(name string) bool {
	return name != "" &&
		name == filepath.Base(name) &&
		!strings.Contains(name, "..") &&
		!strings.ContainsAny(name, `/\`)
}

// GetMediaURL returns the URL path for accessing a locally stored upload
func GetMediaURL(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/uploads/%s", filename)
}
