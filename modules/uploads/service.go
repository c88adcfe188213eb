package uploads

import (
	"context"
	"fmt"
	"time"

	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
	"github.com/google/uuid"

	"github.com/magbay/LAN-Chat/domain/chat"
)

const defaultContentType = "application/octet-stream"

// Service stores images in an fs-jetstream bucket under "<id>/<name>" keys so
// uploads never overwrite each other.
type Service struct {
	bucket fsjetstream.FileStoragePort
}

// NewService creates a new image service with the given storage bucket.
func NewService(bucket fsjetstream.FileStoragePort) *Service {
	return &Service{bucket: bucket}
}

// SaveImage validates and stores one image.
func (s *Service) SaveImage(ctx context.Context, filename string, data []byte) (StoredImage, error) {
	if err := ValidateImageName(filename); err != nil {
		return StoredImage{}, err
	}

	name := SecureFilename(filename)
	id := uuid.New().String()
	contentType := ContentTypeFor(name)

	info, err := s.bucket.Put(ctx, storageKey(id, name), data,
		fsjetstream.WithDescription(fmt.Sprintf("Image: %s", name)),
		fsjetstream.WithHeaders(map[string]string{
			"Content-Type":  contentType,
			"Original-Name": filename,
			"Image-ID":      id,
			"Uploaded-At":   time.Now().UTC().Format(time.RFC3339),
		}),
	)
	if err != nil {
		return StoredImage{}, fmt.Errorf("failed to store image: %w", err)
	}

	return StoredImage{
		ID:          id,
		Name:        name,
		URL:         PublicURL(id, name),
		ContentType: contentType,
		Size:        int64(info.Size),
		Digest:      info.Digest,
		CreatedAt:   info.ModTime,
	}, nil
}

// OpenImage returns the bytes and metadata of a stored image.
func (s *Service) OpenImage(_ context.Context, id, name string) ([]byte, StoredImage, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, StoredImage{}, fmt.Errorf("%w: %s", ErrInvalidImageID, id)
	}

	objects, err := s.bucket.List(fsjetstream.WithPrefix(id + "/"))
	if err != nil {
		return nil, StoredImage{}, fmt.Errorf("failed to list images: %w", err)
	}

	key := storageKey(id, name)
	for _, obj := range objects {
		if obj.Name != key {
			continue
		}
		data, err := s.bucket.Get(obj.Name)
		if err != nil {
			return nil, StoredImage{}, fmt.Errorf("failed to get image: %w", err)
		}
		contentType := obj.Headers["Content-Type"]
		if contentType == "" {
			contentType = ContentTypeFor(name)
		}
		return data, StoredImage{
			ID:          id,
			Name:        name,
			URL:         PublicURL(id, name),
			ContentType: contentType,
			Size:        int64(obj.Size),
			Digest:      obj.Digest,
			CreatedAt:   obj.ModTime,
		}, nil
	}
	return nil, StoredImage{}, ErrNotFound
}

// PublicURL is the path under which an image is served.
func PublicURL(id, name string) string {
	return chat.UploadPathPrefix + storageKey(id, name)
}

func storageKey(id, name string) string {
	return id + "/" + name
}
