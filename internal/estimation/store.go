package estimation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shipsense/power-estimation/internal/cache"
)

// Loader returns the model for a model type code.
type Loader interface {
	Load(ctx context.Context, code int32) (Model, error)
}

// ArtifactStore loads artifacts through a Selector and keeps parsed models keyed by
// artifact path. Every Load stats the file, so a replaced artifact is parsed again on
// the next call. Raw artifact bytes may also be shared through a cache.Provider under
// a key that includes the file's size and modification time.
type ArtifactStore struct {
	selector Selector
	bytes    cache.Provider
	ttl      time.Duration
	logger   *slog.Logger
	group    singleflight.Group

	mu     sync.Mutex
	models map[string]cachedModel
	loads  int
}

type cachedModel struct {
	version string
	model   *Network
}

// NewArtifactStore builds a store. A nil provider disables the shared byte cache.
func NewArtifactStore(selector Selector, provider cache.Provider, ttl time.Duration, logger *slog.Logger) *ArtifactStore {
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactStore{
		selector: selector,
		bytes:    provider,
		ttl:      ttl,
		logger:   logger,
		models:   make(map[string]cachedModel),
	}
}

// Load implements Loader. Concurrent loads of the same artifact version share one parse.
func (s *ArtifactStore) Load(ctx context.Context, code int32) (Model, error) {
	path := s.selector.Resolve(code)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactLoad, path, err)
	}
	version := artifactVersion(path, info)

	if m, ok := s.cached(path, version); ok {
		return m, nil
	}

	v, err, _ := s.group.Do(version, func() (any, error) {
		if m, ok := s.cached(path, version); ok {
			return m, nil
		}
		net, err := s.fetch(context.WithoutCancel(ctx), path, version)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.models[path] = cachedModel{version: version, model: net}
		s.loads++
		s.mu.Unlock()

		s.logger.Info("model artifact loaded",
			slog.String("model", ModelName(code)),
			slog.String("path", path),
			slog.String("name", net.Name()))
		return net, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Network), nil
}

// Invalidate drops the cached model behind code, forcing the next Load to re-read it.
func (s *ArtifactStore) Invalidate(ctx context.Context, code int32) {
	path := s.selector.Resolve(code)

	s.mu.Lock()
	entry, ok := s.models[path]
	delete(s.models, path)
	s.mu.Unlock()

	if !ok {
		return
	}
	if err := s.bytes.Del(ctx, artifactKey(entry.version)); err != nil {
		s.logger.Warn("artifact cache delete failed", slog.Any("error", err))
	}
}

// Purge drops every cached model.
func (s *ArtifactStore) Purge() {
	s.mu.Lock()
	s.models = make(map[string]cachedModel)
	s.mu.Unlock()
}

// Loads reports how many artifacts have been parsed.
func (s *ArtifactStore) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func (s *ArtifactStore) cached(path, version string) (*Network, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.models[path]
	if !ok || entry.version != version {
		return nil, false
	}
	return entry.model, true
}

// fetch parses the artifact from the shared byte cache when it holds a usable copy and
// from disk otherwise. Only bytes that parsed are written back to the cache.
func (s *ArtifactStore) fetch(ctx context.Context, path, version string) (*Network, error) {
	key := artifactKey(version)
	data, err := s.bytes.Get(ctx, key)
	switch {
	case err == nil:
		net, parseErr := ParseArtifact(data)
		if parseErr == nil {
			return net, nil
		}
		s.logger.Warn("discarding unusable cached artifact", slog.String("path", path), slog.Any("error", parseErr))
		if err := s.bytes.Del(ctx, key); err != nil {
			s.logger.Warn("artifact cache delete failed", slog.String("path", path), slog.Any("error", err))
		}
	case !errors.Is(err, cache.ErrCacheMiss):
		s.logger.Warn("artifact cache read failed", slog.String("path", path), slog.Any("error", err))
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactLoad, path, err)
	}
	net, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.bytes.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("artifact cache write failed", slog.String("path", path), slog.Any("error", err))
	}
	return net, nil
}

func artifactVersion(path string, info fs.FileInfo) string {
	return fmt.Sprintf("%s@%d.%d", path, info.Size(), info.ModTime().UnixNano())
}

func artifactKey(version string) string { return "artifact:" + version }
