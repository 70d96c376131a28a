package maven

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/getlawrence/qmaid/internal/domain"
	"github.com/getlawrence/qmaid/internal/logger"
)

// Repository is a local Maven repository, optionally backed by remote ones
type Repository struct {
	Root   string
	remote *Remote
	models *lru.Cache[string, *Model]
	log    logger.Logger
}

// Option configures a Repository
type Option func(*Repository)

// WithRemote enables downloading of missing artifacts
func WithRemote(r *Remote) Option {
	return func(repo *Repository) { repo.remote = r }
}

// WithLogger sets the logger used for debug output
func WithLogger(l logger.Logger) Option {
	return func(repo *Repository) { repo.log = l }
}

// NewRepository opens the local repository at root
func NewRepository(root string, cacheSize int, opts ...Option) (*Repository, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("maven repository %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("maven repository %s is not a directory", root)
	}
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, *Model](cacheSize)
	if err != nil {
		return nil, err
	}
	repo := &Repository{Root: root, models: cache, log: logger.Nop{}}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

// RelativePath returns g/r/o/u/p/artifact/version/artifact-version[-classifier].ext
func RelativePath(c domain.Coordinate, ext string) string {
	parts := append(strings.Split(c.GroupID, "."), c.ArtifactID, c.Version, c.FileName(ext))
	return filepath.Join(parts...)
}

// Path returns the location of the artifact file in the local repository
func (r *Repository) Path(c domain.Coordinate, ext string) string {
	return filepath.Join(r.Root, RelativePath(c, ext))
}

// Jar locates the artifact's jar, downloading it when missing locally
func (r *Repository) Jar(ctx context.Context, c domain.Coordinate) (string, error) {
	return r.locate(ctx, c, "jar")
}

// Pom returns the raw model of the artifact's POM
func (r *Repository) Pom(ctx context.Context, c domain.Coordinate) (*Model, error) {
	pomCoord := domain.Coordinate{GroupID: c.GroupID, ArtifactID: c.ArtifactID, Version: c.Version}
	path, err := r.locate(ctx, pomCoord, "pom")
	if err != nil {
		return nil, err
	}
	return ReadModel(path)
}

func (r *Repository) locate(ctx context.Context, c domain.Coordinate, ext string) (string, error) {
	if c.GroupID == "" || c.ArtifactID == "" || c.Version == "" {
		return "", fmt.Errorf("incomplete coordinate %s: %w", c, ErrNotFound)
	}
	path := r.Path(c, ext)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if r.remote == nil {
		return "", fmt.Errorf("%s (%s): %w", c, ext, ErrNotFound)
	}

	r.log.Debugf("Downloading %s", RelativePath(c, ext))
	if err := r.remote.Fetch(ctx, RelativePath(c, ext), path); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%s (%s): %w", c, ext, ErrNotFound)
		}
		return "", err
	}
	return path, nil
}
