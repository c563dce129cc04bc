package services_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/nagorik/grievance-server/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeObjectStorage is an in-memory storage.ObjectStorage.
type fakeObjectStorage struct {
	objects map[string][]byte
	deleted []string
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: make(map[string][]byte)}
}

func (f *fakeObjectStorage) EnsureBucket(ctx context.Context) error { return nil }

func (f *fakeObjectStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectStorage) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStorage) Bucket() string { return "complaint-media" }

func TestUploadReturnsDisplayURL(t *testing.T) {
	objects := newFakeObjectStorage()
	svc := services.NewMediaService(objects, "http://localhost:8080/", zap.NewNop().Sugar())

	url, err := svc.Upload(context.Background(), "pothole.JPG", "image/jpeg", strings.NewReader("fake-bytes"), 10)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/api/v1/media/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)
	assert.Len(t, objects.objects, 1)
}

func TestRemoveByURLDeletesUploadedObject(t *testing.T) {
	objects := newFakeObjectStorage()
	svc := services.NewMediaService(objects, "http://localhost:8080", zap.NewNop().Sugar())

	url, err := svc.Upload(context.Background(), "pothole.png", "image/png", strings.NewReader("fake-bytes"), 10)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveByURL(context.Background(), url))
	assert.Empty(t, objects.objects)
	assert.Len(t, objects.deleted, 1)
}

func TestRemoveByURLIgnoresForeignURLs(t *testing.T) {
	objects := newFakeObjectStorage()
	svc := services.NewMediaService(objects, "http://localhost:8080", zap.NewNop().Sugar())

	require.NoError(t, svc.RemoveByURL(context.Background(), "https://i.ibb.co/abc/photo.jpg"))
	require.NoError(t, svc.RemoveByURL(context.Background(), "http://localhost:8080/api/v1/media/../escape"))
	assert.Empty(t, objects.deleted)
}
