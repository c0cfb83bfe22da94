package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/indieinfra/gallery/config"
	"github.com/indieinfra/gallery/storage/upload"
	storageutil "github.com/indieinfra/gallery/storage/util"
)

// StoreImpl stores uploaded images in a local directory that is served back
// under a public base URL.
type StoreImpl struct {
	basePath  string
	publicURL string
	pattern   *storageutil.PathPattern
	mu        sync.Mutex
}

func NewFilesystemUploader(cfg *config.FilesystemUploadStrategy) (*StoreImpl, error) {
	if cfg == nil {
		return nil, fmt.Errorf("filesystem upload config is nil")
	}

	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	pattern := storageutil.DefaultUploadPattern()
	if cfg.PathPattern != "" {
		pattern = storageutil.NewPathPattern(cfg.PathPattern)
	}

	return &StoreImpl{
		basePath:  cfg.Path,
		publicURL: storageutil.NormalizeBaseURL(cfg.PublicUrl),
		pattern:   pattern,
	}, nil
}

// BasePath is the directory uploads are written to.
func (fs *StoreImpl) BasePath() string {
	return fs.basePath
}

func (fs *StoreImpl) Put(ctx context.Context, p *upload.Payload) (string, error) {
	name, ext := storageutil.ObjectName(p.Filename, p.ContentType)

	relPath, err := fs.pattern.Generate(name, time.Now(), ext)
	if err != nil {
		return "", fmt.Errorf("failed to generate path: %w", err)
	}

	absPath := filepath.Join(fs.basePath, filepath.FromSlash(relPath))

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// O_EXCL so a name collision never overwrites an earlier upload.
	outFile, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(outFile, contextReader{ctx: ctx, r: p.Body}); err != nil {
		_ = outFile.Close()
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := outFile.Close(); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return fs.publicURL + relPath, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
