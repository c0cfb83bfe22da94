package factory

import (
	"fmt"
	"sync"

	"github.com/indieinfra/gallery/config"
	"github.com/indieinfra/gallery/storage/upload"
	"github.com/indieinfra/gallery/storage/upload/cloudinary"
	"github.com/indieinfra/gallery/storage/upload/filesystem"
	"github.com/indieinfra/gallery/storage/upload/s3"
)

// Factory builds an upload backend for the provided upload config.
type Factory func(*config.Upload) (upload.Uploader, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds or replaces an upload backend factory for the given strategy name.
func Register(strategy string, factory Factory) {
	mu.Lock()
	registry[strategy] = factory
	mu.Unlock()
}

// Get retrieves a factory for the given strategy.
func Get(strategy string) (Factory, bool) {
	mu.RLock()
	f, ok := registry[strategy]
	mu.RUnlock()
	return f, ok
}

// Create builds an upload backend using the registered factory for the configured strategy.
func Create(cfg *config.Upload) (upload.Uploader, error) {
	f, ok := Get(cfg.Strategy)
	if !ok {
		return nil, fmt.Errorf("unknown upload strategy %q", cfg.Strategy)
	}
	return f(cfg)
}

func init() {
	Register("cloudinary", func(cfg *config.Upload) (upload.Uploader, error) {
		return cloudinary.NewCloudinaryUploader(cfg.Cloudinary)
	})

	Register("s3", func(cfg *config.Upload) (upload.Uploader, error) {
		return s3.NewS3Uploader(cfg.S3)
	})

	Register("filesystem", func(cfg *config.Upload) (upload.Uploader, error) {
		return filesystem.NewFilesystemUploader(cfg.Filesystem)
	})

	Register("noop", func(cfg *config.Upload) (upload.Uploader, error) {
		return upload.NoopUploader{}, nil
	})
}
