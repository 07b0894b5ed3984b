package gamecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/bnema/volmix/internal/domain"
	"github.com/bnema/volmix/internal/ports"
)

// Catalog resolves the game set for <steamgame> patterns, preferring a fresh
// cache file and rescanning otherwise.
type Catalog struct {
	scanner *Scanner
	cache   *Cache
	folders []string
	force   bool
	logger  *slog.Logger
}

var _ ports.GameCatalog = (*Catalog)(nil)

func NewCatalog(scanner *Scanner, cache *Cache, folders []string, forceRefresh bool, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}

	return &Catalog{
		scanner: scanner,
		cache:   cache,
		folders: append([]string(nil), folders...),
		force:   forceRefresh,
		logger:  logger,
	}
}

// Folders returns the Steam library folders the catalog scans.
func (c *Catalog) Folders() []string {
	return append([]string(nil), c.folders...)
}

// Load returns the cached set when it is fresh. Otherwise it rescans and
// rewrites the cache; a failed write still returns the scanned set together
// with an error wrapping ErrCacheWrite.
func (c *Catalog) Load(ctx context.Context) (domain.GameSet, error) {
	if !c.force {
		entry, err := c.cache.Read()
		if err == nil {
			c.logger.Debug("game cache hit", "path", c.cache.Path(), "games", len(entry.Games))
			return entry.Games, nil
		}

		switch {
		case errors.Is(err, os.ErrNotExist):
			c.logger.Info("game cache missing, scanning libraries", "path", c.cache.Path())
		case errors.Is(err, ErrCacheStale):
			c.logger.Info("game cache out of date, scanning libraries", "path", c.cache.Path())
		default:
			c.logger.Warn("game cache unusable, scanning libraries", "path", c.cache.Path(), "error", err)
		}
	}

	return c.Refresh(ctx)
}

func (c *Catalog) Refresh(ctx context.Context) (domain.GameSet, error) {
	return c.RefreshWithProgress(ctx, nil)
}

// RefreshWithProgress rescans, reporting each library folder, and rewrites
// the cache.
func (c *Catalog) RefreshWithProgress(ctx context.Context, progress func(FolderScanned)) (domain.GameSet, error) {
	games, err := c.scanner.ScanWithProgress(ctx, c.folders, progress)
	if err != nil {
		return nil, fmt.Errorf("scan steam libraries: %w", err)
	}

	if _, err := c.cache.Write(games); err != nil {
		return games, err
	}

	c.logger.Debug("game cache written", "path", c.cache.Path(), "games", len(games))
	return games, nil
}
