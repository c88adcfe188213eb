package uploads

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
)

// BucketName is the fs-jetstream bucket holding uploaded images.
const BucketName = "files"

// Module stores uploaded images using the fs-jetstream plugin.
type Module struct {
	storage *fsjetstream.PluginModule
	bucket  fsjetstream.FileStoragePort
	service *Service
	logger  types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.UsePluginModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new uploads module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "uploads"
}

// SetPlugin receives the storage plugin from the framework.
func (m *Module) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias != "storage" {
		return
	}
	storage, ok := plugin.(*fsjetstream.PluginModule)
	if !ok {
		m.logger.Error("Invalid plugin type for storage",
			"alias", alias,
			"expected", "*fsjetstream.PluginModule")
		return
	}
	m.storage = storage
	m.logger.Info("Received storage plugin", "alias", alias)
}

// Start resolves the images bucket.
func (m *Module) Start(_ context.Context) error {
	if m.storage == nil {
		return fmt.Errorf("required plugin 'storage' not registered")
	}

	m.bucket = m.storage.Bucket(BucketName)
	if m.bucket == nil {
		return fmt.Errorf("bucket '%s' not found in storage plugin", BucketName)
	}
	m.service = NewService(m.bucket)

	m.logger.Info("Uploads module started", "bucket", BucketName)
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Uploads module stopped")
	return nil
}

// Health reports whether the bucket is available.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "storage not initialized"}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// Service returns the image service, nil until Start succeeded.
func (m *Module) Service() *Service {
	return m.service
}

// SaveImage implements the api module's ImageStore.
func (m *Module) SaveImage(ctx context.Context, filename string, data []byte) (StoredImage, error) {
	if m.service == nil {
		return StoredImage{}, ErrStorageUnavailable
	}
	return m.service.SaveImage(ctx, filename, data)
}

// OpenImage implements the api module's ImageStore.
func (m *Module) OpenImage(ctx context.Context, id, name string) ([]byte, StoredImage, error) {
	if m.service == nil {
		return nil, StoredImage{}, ErrStorageUnavailable
	}
	return m.service.OpenImage(ctx, id, name)
}
