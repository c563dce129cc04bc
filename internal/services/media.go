package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/nagorik/grievance-server/internal/storage"
	"go.uber.org/zap"
)

// mediaRoutePrefix is where uploaded objects are served from; display
// URLs are built around it and parsed back to object keys for deletes.
const mediaRoutePrefix = "/api/v1/media/"

// MediaService stores complaint photos in object storage and hands out
// public display URLs.
type MediaService struct {
	objects storage.ObjectStorage
	baseURL string
	logger  *zap.SugaredLogger
}

// NewMediaService creates a new media service. baseURL is the public
// address the server is reachable at.
func NewMediaService(objects storage.ObjectStorage, baseURL string, logger *zap.SugaredLogger) *MediaService {
	return &MediaService{
		objects: objects,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Upload stores one file and returns its public display URL.
func (s *MediaService) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	key := uuid.New().String() + sanitizeExt(filename)
	if err := s.objects.Put(ctx, key, r, size, contentType); err != nil {
		return "", fmt.Errorf("store media object: %w", err)
	}
	s.logger.Infow("Media uploaded", "key", key, "size", size)
	return s.baseURL + mediaRoutePrefix + key, nil
}

// Open streams a stored object by key.
func (s *MediaService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.objects.Get(ctx, key)
}

// RemoveByURL deletes the object behind a display URL issued by Upload.
// URLs that were not issued by this server are ignored.
func (s *MediaService) RemoveByURL(ctx context.Context, url string) error {
	idx := strings.Index(url, mediaRoutePrefix)
	if idx < 0 {
		return nil
	}
	key := url[idx+len(mediaRoutePrefix):]
	if key == "" || strings.Contains(key, "/") {
		return nil
	}
	return s.objects.Delete(ctx, key)
}

// sanitizeExt keeps a short, known-safe file extension.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	}
	return ""
}
