package gamecache

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bnema/volmix/internal/domain"
	"github.com/spf13/afero"
)

const (
	executableExt = ".exe"
	maxScanDepth  = 3
)

// Scanner collects game executable names from Steam library folders.
type Scanner struct {
	fs         afero.Fs
	exclusions []*regexp.Regexp
	logger     *slog.Logger
}

func NewScanner(fs afero.Fs, exclusions []*regexp.Regexp, logger *slog.Logger) *Scanner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scanner{fs: fs, exclusions: exclusions, logger: logger}
}

func InstallRoot(libraryFolder string) string {
	return filepath.Join(libraryFolder, "steamapps", "common")
}

// FolderScanned reports one finished library folder. Err is set when the
// folder was skipped.
type FolderScanned struct {
	Folder string
	Index  int
	Total  int
	Games  int
	Err    error
}

// Scan walks every library's install root. Folders that cannot be read are
// logged and skipped.
func (s *Scanner) Scan(ctx context.Context, libraryFolders []string) (domain.GameSet, error) {
	return s.ScanWithProgress(ctx, libraryFolders, nil)
}

// ScanWithProgress is Scan with a callback after each folder. progress may be
// nil.
func (s *Scanner) ScanWithProgress(ctx context.Context, libraryFolders []string, progress func(FolderScanned)) (domain.GameSet, error) {
	games := domain.NewGameSet()
	for i, folder := range libraryFolders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root := InstallRoot(folder)
		err := s.scanRoot(ctx, root, games)
		if err != nil {
			s.logger.Warn("skip steam library folder", "folder", folder, "error", err)
		}
		if progress != nil {
			progress(FolderScanned{Folder: folder, Index: i + 1, Total: len(libraryFolders), Games: len(games), Err: err})
		}
	}

	return games, nil
}

func (s *Scanner) scanRoot(ctx context.Context, root string, games domain.GameSet) error {
	return afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == root {
				return err
			}
			s.logger.Debug("skip unreadable path", "path", path, "error", err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if dirDepth(root, path) >= maxScanDepth {
				return filepath.SkipDir
			}
			return nil
		}

		name, ok := executableName(info.Name())
		if !ok || excluded(name, s.exclusions) {
			return nil
		}

		games.Add(name)
		return nil
	})
}

func executableName(fileName string) (string, bool) {
	ext := filepath.Ext(fileName)
	if !strings.EqualFold(ext, executableExt) {
		return "", false
	}

	name := strings.TrimSuffix(fileName, ext)
	if name == "" {
		return "", false
	}
	return name, true
}

func dirDepth(root, dir string) int {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
