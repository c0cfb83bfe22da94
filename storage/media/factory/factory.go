package factory

import (
	"fmt"
	"sync"

	"github.com/indieinfra/gallery/config"
	"github.com/indieinfra/gallery/storage/media"
)

// Factory builds a media record store for the provided media config.
type Factory func(*config.Media) (media.Store, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds or replaces a media store factory for the given strategy name.
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

// Create builds a media store using the registered factory for the configured strategy.
func Create(cfg *config.Media) (media.Store, error) {
	f, ok := Get(cfg.Strategy)
	if !ok {
		return nil, fmt.Errorf("unknown media strategy %q", cfg.Strategy)
	}
	return f(cfg)
}

func init() {
	Register("sql", func(cfg *config.Media) (media.Store, error) {
		if cfg.SQL == nil {
			return nil, fmt.Errorf("media sql config is nil")
		}
		return media.NewSQLMediaStore(cfg.SQL)
	})

	Register("d1", func(cfg *config.Media) (media.Store, error) {
		return media.NewD1MediaStore(cfg.D1)
	})

	Register("git", func(cfg *config.Media) (media.Store, error) {
		return media.NewGitMediaStore(cfg.Git)
	})

	Register("memory", func(cfg *config.Media) (media.Store, error) {
		return media.NewMemoryMediaStore(), nil
	})
}
