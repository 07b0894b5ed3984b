package gamecache

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/volmix/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

const (
	cacheFileMode   = 0o644
	cacheDirMode    = 0o755
	tempFilePattern = ".games-*.cache.tmp"
)

var (
	ErrCacheStale     = errors.New("game cache is stale")
	ErrCacheMalformed = errors.New("game cache is malformed")
	ErrCacheWrite     = errors.New("write game cache")
)

// naive timestamps written without a zone are read as local time.
var legacyTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
}

type Entry struct {
	Timestamp time.Time
	Games     domain.GameSet
}

// Cache is the timestamped game list on disk: the first line holds the scan
// time, every following line one lowercase game name.
type Cache struct {
	fs     afero.Fs
	path   string
	expiry time.Duration
	clock  clockwork.Clock
}

func NewCache(fs afero.Fs, path string, expiry time.Duration, clock clockwork.Clock) *Cache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Cache{fs: fs, path: filepath.Clean(path), expiry: expiry, clock: clock}
}

func (c *Cache) Path() string {
	return c.path
}

// Read returns the cached entry. A missing file surfaces os.ErrNotExist; an
// entry older than the expiry returns ErrCacheStale along with the entry.
func (c *Cache) Read() (Entry, error) {
	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		return Entry{}, fmt.Errorf("read game cache: %w", err)
	}

	entry, err := parseCache(string(data))
	if err != nil {
		return Entry{}, err
	}

	if age := c.clock.Since(entry.Timestamp); age > c.expiry {
		return entry, fmt.Errorf("%w: age %s exceeds %s", ErrCacheStale, age.Round(time.Second), c.expiry)
	}

	return entry, nil
}

func (c *Cache) Write(games domain.GameSet) (Entry, error) {
	entry := Entry{Timestamp: c.clock.Now(), Games: games}

	if err := c.fs.MkdirAll(filepath.Dir(c.path), cacheDirMode); err != nil {
		return entry, fmt.Errorf("%w: create cache directory: %w", ErrCacheWrite, err)
	}

	tempFile, err := afero.TempFile(c.fs, filepath.Dir(c.path), tempFilePattern)
	if err != nil {
		return entry, fmt.Errorf("%w: create temp file: %w", ErrCacheWrite, err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = c.fs.Remove(tempName)
		}
	}()

	if _, err := tempFile.WriteString(formatCache(entry)); err != nil {
		_ = tempFile.Close()
		return entry, fmt.Errorf("%w: write temp file: %w", ErrCacheWrite, err)
	}

	if err := tempFile.Close(); err != nil {
		return entry, fmt.Errorf("%w: close temp file: %w", ErrCacheWrite, err)
	}

	if err := c.fs.Rename(tempName, c.path); err != nil {
		return entry, fmt.Errorf("%w: replace cache file: %w", ErrCacheWrite, err)
	}

	cleanup = false

	if err := c.fs.Chmod(c.path, cacheFileMode); err != nil {
		return entry, fmt.Errorf("%w: chmod cache file: %w", ErrCacheWrite, err)
	}

	return entry, nil
}

func formatCache(entry Entry) string {
	lines := append([]string{entry.Timestamp.Format(time.RFC3339Nano)}, entry.Games.Sorted()...)
	return strings.Join(lines, "\n") + "\n"
}

func parseCache(raw string) (Entry, error) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return Entry{}, fmt.Errorf("%w: missing timestamp", ErrCacheMalformed)
	}

	timestamp, err := parseTimestamp(strings.TrimSpace(lines[0]))
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrCacheMalformed, err)
	}

	games := domain.NewGameSet()
	for _, line := range lines[1:] {
		games.Add(line)
	}

	return Entry{Timestamp: timestamp, Games: games}, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return parsed, nil
	}

	for _, layout := range legacyTimestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparsable timestamp %q", raw)
}
