package services

import (
	"context"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shreyasiddheshwar12/orangesample/utils"
)

// UploadedMedia describes a stored upload
type UploadedMedia struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// MediaService stores profile photos and portfolio media
type MediaService interface {
	// Upload validates and stores a file, returning its key and a URL
	Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*UploadedMedia, error)

	// URL resolves a stored key to a URL clients can fetch
	URL(ctx context.Context, key string) (string, error)

	Delete(ctx context.Context, key string) error
}

var mediaServiceInstance MediaService

// InitMediaService sets the process-wide media service
func InitMediaService(service MediaService) MediaService {
	mediaServiceInstance = service
	return mediaServiceInstance
}

// GetMediaService returns the initialized media service instance
func GetMediaService() MediaService {
	return mediaServiceInstance
}

// SetMediaService sets the media service instance (primarily for testing)
func SetMediaService(service MediaService) {
	mediaServiceInstance = service
}

// S3MediaService keeps uploads in S3 and hands out presigned URLs
type S3MediaService struct {
	s3 S3Interface
}

// NewS3MediaService creates a media service on top of an S3 backend
func NewS3MediaService(s3 S3Interface) *S3MediaService {
	return &S3MediaService{s3: s3}
}

func (s *S3MediaService) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*UploadedMedia, error) {
	contentType, err := utils.ValidateMediaFile(fileHeader)
	if err != nil {
		return nil, err
	}

	key := "uploads/" + utils.MediaFilename(contentType)
	if err := s.s3.UploadFile(ctx, fileHeader, key, contentType); err != nil {
		return nil, errors.Wrap(err, "upload media")
	}

	url, err := s.s3.GetPresignedURL(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, "resolve media URL")
	}

	return &UploadedMedia{Key: key, URL: url, ContentType: contentType, Size: fileHeader.Size}, nil
}

func (s *S3MediaService) URL(ctx context.Context, key string) (string, error) {
	url, err := s.s3.GetPresignedURL(ctx, key)
	if err != nil {
		return "", errors.Wrap(err, "resolve media URL")
	}
	return url, nil
}

func (s *S3MediaService) Delete(ctx context.Context, key string) error {
	return errors.Wrap(s.s3.DeleteFile(ctx, key), "delete media")
}

// LocalMediaService keeps uploads on disk; the API serves them itself
type LocalMediaService struct {
	dir string
}

// NewLocalMediaService stores uploads under dir
func NewLocalMediaService(dir string) *LocalMediaService {
	return &LocalMediaService{dir: dir}
}

// Dir returns the directory uploads are written to
func (s *LocalMediaService) Dir() string {
	return s.dir
}

func (s *LocalMediaService) Upload(_ context.Context, fileHeader *multipart.FileHeader) (*UploadedMedia, error) {
	contentType, err := utils.ValidateMediaFile(fileHeader)
	if err != nil {
		return nil, err
	}

	filename := utils.MediaFilename(contentType)
	if err := utils.SaveUploadedFile(fileHeader, s.dir, filename); err != nil {
		return nil, errors.Wrap(err, "save media")
	}

	return &UploadedMedia{
		Key:         filename,
		URL:         utils.GetMediaURL(filename),
		ContentType: contentType,
		Size:        fileHeader.Size,
	}, nil
}

func (s *LocalMediaService) URL(_ context.Context, key string) (string, error) {
	if !utils.SafeFilename(key) {
		return "", NewNotFoundError("FILE_NOT_FOUND", "File not found")
	}
	if _, err := os.Stat(filepath.Join(s.dir, key)); err != nil {
		return "", NewNotFoundError("FILE_NOT_FOUND", "File not found")
	}
	return utils.GetMediaURL(key), nil
}

func (s *LocalMediaService) Delete(_ context.Context, key string) error {
	if !utils.SafeFilename(key) {
		return NewValidationError("INVALID_FILENAME", "Invalid filename")
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete media")
	}
	return nil
}
