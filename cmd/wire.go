package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/volmix/internal/adapters/audio/memory"
	"github.com/bnema/volmix/internal/adapters/audio/pulse"
	"github.com/bnema/volmix/internal/adapters/config"
	"github.com/bnema/volmix/internal/adapters/gamecache"
	"github.com/bnema/volmix/internal/adapters/render/overlay"
	"github.com/bnema/volmix/internal/adapters/window/xdotool"
	"github.com/bnema/volmix/internal/application"
	"github.com/bnema/volmix/internal/domain"
	"github.com/bnema/volmix/internal/logging"
	"github.com/bnema/volmix/internal/ports"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	errUnknownBackend     = errors.New("unknown audio backend")
	errInvalidFakeSession = errors.New("invalid fake session")
)

const (
	logFileMode = 0o644
	logDirMode  = 0o755
)

type app struct {
	cfg     config.Config
	logger  *slog.Logger
	audio   ports.AudioSessionProvider
	catalog *gamecache.Catalog
	mixer   *application.Mixer
	labeler *application.Labeler
	closers []func() error
}

func withApp(flags *rootFlags, run func(cmd *cobra.Command, app *app) error) func(*cobra.Command, []string) error {
	return withAppLogging(flags, stderrLogs, run)
}

// logSink decides where one command's logs go. release runs after the app is
// closed.
type logSink func(cmd *cobra.Command, flags *rootFlags) (out io.Writer, release func() error, err error)

func withAppLogging(flags *rootFlags, logs logSink, run func(cmd *cobra.Command, app *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) (err error) {
		out, release, err := logs(cmd, flags)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, release())
		}()

		a, err := wireApp(cmd, flags, out)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, a.close())
		}()

		return run(cmd, a)
	}
}

func stderrLogs(cmd *cobra.Command, flags *rootFlags) (io.Writer, func() error, error) {
	if flags.logFile != "" {
		return openLogFile(flags.logFile)
	}
	return cmd.ErrOrStderr(), func() error { return nil }, nil
}

// overlayLogs keeps log lines off the alt screen. They go to --log-file, or
// are held and written to stderr once the overlay has exited.
func overlayLogs(cmd *cobra.Command, flags *rootFlags) (io.Writer, func() error, error) {
	if flags.logFile != "" {
		return openLogFile(flags.logFile)
	}
	deferred := &logging.Deferred{}
	return deferred, func() error { return deferred.Flush(cmd.ErrOrStderr()) }, nil
}

func openLogFile(path string) (io.Writer, func() error, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(filepath.Dir(path), logDirMode); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}

func wireApp(cmd *cobra.Command, flags *rootFlags, logOut io.Writer) (*app, error) {
	cfg, logger, err := loadConfig(cmd, flags, logOut)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	audio, titles, err := a.wireAudio(flags)
	if err != nil {
		return nil, err
	}
	a.audio = audio

	catalog, err := wireCatalog(cfg, logger)
	if err != nil {
		_ = a.close()
		return nil, err
	}
	a.catalog = catalog

	mixerCfg := application.MixerConfig{
		Rules:    cfg.Controls,
		Capacity: cfg.ButtonCount,
		FgColor:  cfg.FgColor,
		BgColor:  cfg.BgColor,
	}
	if cfg.AutoFill {
		autoFill := cfg.AutoFillControl
		mixerCfg.AutoFill = &autoFill
	}

	a.mixer = application.NewMixer(mixerCfg, audio, catalog, logger)
	a.labeler = application.NewLabeler(titles, logger)

	return a, nil
}

// loadConfig sets up logging on out from the flags, then raises it to debug
// when the config asks for it and --log-level was not given.
func loadConfig(cmd *cobra.Command, flags *rootFlags, out io.Writer) (config.Config, *slog.Logger, error) {
	logger := logging.InitLogger(flags.logLevel, flags.logFormat, out)

	path, err := configPath(flags)
	if err != nil {
		return config.Config{}, nil, err
	}

	cfg, err := config.Load(viper.New(), nil, path, logger)
	if err != nil {
		return config.Config{}, nil, err
	}
	if cfg.Debug && !cmd.Flag("log-level").Changed {
		logger = logging.InitLogger("debug", flags.logFormat, out)
	}

	return cfg, logger, nil
}

func configPath(flags *rootFlags) (string, error) {
	if flags.configPath != "" {
		return flags.configPath, nil
	}
	return config.DefaultPath()
}

func (a *app) wireAudio(flags *rootFlags) (ports.AudioSessionProvider, ports.WindowTitleResolver, error) {
	switch flags.backend {
	case backendMemory:
		provider := memory.NewProvider()
		for _, raw := range flags.fakeSessions {
			session, volume, err := parseFakeSession(raw)
			if err != nil {
				return nil, nil, err
			}
			provider.Add(session, volume)
		}
		return provider, xdotool.None{}, nil
	case backendPulse:
		provider, err := pulse.Connect(flags.pulseServer)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, provider.Close)

		titles, err := xdotool.New()
		if err != nil {
			a.logger.Debug("window titles unavailable", "error", err)
			return provider, xdotool.None{}, nil
		}
		return provider, titles, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnknownBackend, flags.backend)
	}
}

func wireCatalog(cfg config.Config, logger *slog.Logger) (*gamecache.Catalog, error) {
	exclusions, err := gamecache.CompileExclusions(cfg.SteamappExclusions, cfg.OverrideSteamappExclusions)
	if err != nil {
		return nil, fmt.Errorf("load steamapp exclusions: %w", err)
	}

	fs := afero.NewOsFs()
	scanner := gamecache.NewScanner(fs, exclusions, logger)
	cache := gamecache.NewCache(fs, cfg.GameCacheFile, cfg.GameCacheTimeout, clockwork.NewRealClock())

	return gamecache.NewCatalog(scanner, cache, cfg.SteamLibraryFolders, cfg.ForceGameScan, logger), nil
}

func (a *app) renderOptions() overlay.RenderOptions {
	return overlay.RenderOptions{
		Debug:            a.cfg.Debug,
		ShowProcessCount: a.cfg.ShowProcessCount,
		MinWidth:         a.cfg.MinWidth,
		SpacerPosition:   a.cfg.SpacerPosition,
	}
}

func (a *app) close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// parseFakeSession reads process[:pid[:volume]].
func parseFakeSession(raw string) (domain.Session, float64, error) {
	parts := strings.Split(raw, ":")
	if len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
		return domain.Session{}, 0, fmt.Errorf("%w: %q", errInvalidFakeSession, raw)
	}

	session := domain.Session{ProcessName: parts[0]}
	volume := 1.0

	if len(parts) > 1 {
		pid, err := strconv.Atoi(parts[1])
		if err != nil {
			return domain.Session{}, 0, fmt.Errorf("%w: pid %q", errInvalidFakeSession, parts[1])
		}
		session.PID = pid
	}
	if len(parts) > 2 {
		v, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return domain.Session{}, 0, fmt.Errorf("%w: volume %q", errInvalidFakeSession, parts[2])
		}
		volume = v
	}

	return session, volume, nil
}
