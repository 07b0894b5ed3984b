package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/volmix/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	DefaultFileName  = "conf.json"
	configDirName    = "volmix"
	configFileMode   = 0o644
	configDirMode    = 0o755
	tempFilePattern  = ".conf-*.tmp"
	defaultCacheFile = "games.cache"

	FormatJSON = "json"
	FormatTOML = "toml"
)

// Config is the validated, immutable configuration. It is built once at
// startup and handed to every component by value.
type Config struct {
	Path string

	Debug            bool
	Monitor          int
	ButtonCount      int
	AutoClose        bool
	CloseOnDeselect  bool
	FgColor          string
	BgColor          string
	ShowProcessCount bool
	MinWidth         int
	SpacerPosition   int

	AutoFill        bool
	AutoFillControl domain.Rule
	Controls        []domain.Rule

	SteamLibraryFolders        []string
	ForceGameScan              bool
	GameCacheTimeout           time.Duration
	GameCacheFile              string
	SteamappExclusions         []string
	OverrideSteamappExclusions bool
}

func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, configDirName, DefaultFileName), nil
}

// DefaultSteamLibraryFolders returns the platform's usual Steam install.
func DefaultSteamLibraryFolders() []string {
	if programFiles := os.Getenv("ProgramFiles(x86)"); programFiles != "" {
		return []string{filepath.Join(programFiles, "Steam")}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return []string{}
	}
	return []string{filepath.Join(home, ".local", "share", "Steam")}
}

func defaultSchema() fileSchema {
	return fileSchema{
		Debug:                 false,
		Monitor:               1,
		ButtonCount:           8,
		AutoClose:             true,
		CloseOnDeselect:       true,
		FgColor:               "#111",
		BgColor:               "#eee",
		ShowProcessCount:      true,
		MinWidth:              432,
		SpacerPosition:        0,
		AutoFill:              true,
		SteamLibraryFolders:   DefaultSteamLibraryFolders(),
		GetSteamGames:         false,
		SteamGameCacheTimeout: 7200,
		SteamGameCacheFile:    defaultCacheFile,
		SteamappExclusions:    []string{},
		AutoFillControl: &controlSchema{
			Name:       "App",
			Targets:    []string{domain.TokenAll},
			UseAppName: true,
			OnlyFirst:  true,
		},
		Controls: []controlSchema{
			{Name: "Game", Targets: []string{domain.TokenSteamGame}, UseAppName: true},
			{Name: "Discord", Targets: []string{"discord"}},
		},
	}
}

func registerDefaults(v *viper.Viper, d fileSchema) {
	v.SetDefault("debug", d.Debug)
	v.SetDefault("monitor", d.Monitor)
	v.SetDefault("button_count", d.ButtonCount)
	v.SetDefault("auto_close", d.AutoClose)
	v.SetDefault("close_on_deselect", d.CloseOnDeselect)
	v.SetDefault("fg_color", d.FgColor)
	v.SetDefault("bg_color", d.BgColor)
	v.SetDefault("show_process_count", d.ShowProcessCount)
	v.SetDefault("min_width", d.MinWidth)
	v.SetDefault("spacer_position", d.SpacerPosition)
	v.SetDefault("auto_fill", d.AutoFill)
	v.SetDefault("steam_library_folders", d.SteamLibraryFolders)
	v.SetDefault("get_steam_games", d.GetSteamGames)
	v.SetDefault("steam_game_cache_timeout", d.SteamGameCacheTimeout)
	v.SetDefault("steam_game_cache_file", d.SteamGameCacheFile)
	v.SetDefault("steamapp_exlusions", d.SteamappExclusions)
	v.SetDefault("override_steamapp_exlusions", d.OverrideSteamappExclusions)
}

// Load reads the config file at path. A missing file is created with the
// defaults; an unreadable or malformed one is logged and replaced by the
// defaults in memory. Invalid control patterns are the only fatal error. A
// nil fs means the OS filesystem.
func Load(v *viper.Viper, fs afero.Fs, path string, logger *slog.Logger) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path: %w", err)
	}

	defaults := defaultSchema()
	registerDefaults(v, defaults)
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType(formatForPath(path))

	fromFile := false
	if _, statErr := fs.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		logger.Info("creating default config file", "path", path)
		if err := WriteDefaults(fs, path); err != nil {
			logger.Warn("write default config", "path", path, "error", err)
		}
	} else if err := v.ReadInConfig(); err != nil {
		logger.Warn("config unreadable, using defaults", "path", path, "error", err)
	} else {
		fromFile = true
	}

	var schema fileSchema
	if err := v.Unmarshal(&schema); err != nil {
		logger.Warn("config has invalid values, using defaults", "path", path, "error", err)
		schema = defaults
		fromFile = false
	}

	if !fromFile || !v.InConfig("controls") {
		schema.Controls = defaults.Controls
	}
	if !fromFile || !v.InConfig("auto_fill_control") || schema.AutoFillControl == nil {
		schema.AutoFillControl = defaults.AutoFillControl
	}
	if fromFile && v.InConfig("control_count") && !v.InConfig("button_count") {
		schema.ButtonCount = schema.ControlCount
	}

	return build(schema, defaults, path, logger)
}

func build(s fileSchema, d fileSchema, path string, logger *slog.Logger) (Config, error) {
	if s.ButtonCount < 1 {
		logger.Warn("button_count must be positive, using default", "value", s.ButtonCount, "default", d.ButtonCount)
		s.ButtonCount = d.ButtonCount
	}
	if s.SteamGameCacheTimeout < 0 {
		logger.Warn("steam_game_cache_timeout must not be negative, using default", "value", s.SteamGameCacheTimeout)
		s.SteamGameCacheTimeout = d.SteamGameCacheTimeout
	}
	if s.FgColor == "" {
		s.FgColor = d.FgColor
	}
	if s.BgColor == "" {
		s.BgColor = d.BgColor
	}

	controls := make([]domain.Rule, 0, len(s.Controls))
	for _, entry := range s.Controls {
		rule, err := toRule(entry, fmt.Sprintf("Control %d", len(controls)+1), s.FgColor, s.BgColor)
		if err != nil {
			return Config{}, fmt.Errorf("load controls from %s: %w", path, err)
		}
		controls = append(controls, rule)
	}

	autoFill, err := toRule(*s.AutoFillControl, "App", s.FgColor, s.BgColor)
	if err != nil {
		return Config{}, fmt.Errorf("load auto_fill_control from %s: %w", path, err)
	}

	return Config{
		Path:                       path,
		Debug:                      s.Debug,
		Monitor:                    s.Monitor,
		ButtonCount:                s.ButtonCount,
		AutoClose:                  s.AutoClose,
		CloseOnDeselect:            s.CloseOnDeselect,
		FgColor:                    s.FgColor,
		BgColor:                    s.BgColor,
		ShowProcessCount:           s.ShowProcessCount,
		MinWidth:                   s.MinWidth,
		SpacerPosition:             s.SpacerPosition,
		AutoFill:                   s.AutoFill,
		AutoFillControl:            autoFill,
		Controls:                   controls,
		SteamLibraryFolders:        append([]string{}, s.SteamLibraryFolders...),
		ForceGameScan:              s.GetSteamGames,
		GameCacheTimeout:           time.Duration(s.SteamGameCacheTimeout) * time.Minute,
		GameCacheFile:              resolveRelative(path, s.SteamGameCacheFile),
		SteamappExclusions:         append([]string{}, s.SteamappExclusions...),
		OverrideSteamappExclusions: s.OverrideSteamappExclusions,
	}, nil
}

func toRule(entry controlSchema, fallbackName, fg, bg string) (domain.Rule, error) {
	name := entry.Name
	if name == "" {
		name = fallbackName
	}
	if entry.FgColor == "" {
		entry.FgColor = fg
	}
	if entry.BgColor == "" {
		entry.BgColor = bg
	}

	return domain.NewRule(domain.RuleSpec{
		Name:        name,
		Targets:     entry.Targets,
		UseAppTitle: entry.UseAppTitle,
		UseAppName:  entry.UseAppName,
		OnlyFirst:   entry.OnlyFirst,
		Exclude:     entry.Exclude,
		Master:      entry.Master,
		FgColor:     entry.FgColor,
		BgColor:     entry.BgColor,
		BgColor2:    entry.BgColor2,
	})
}

func fromRule(rule domain.Rule) controlSchema {
	return controlSchema{
		Name:        rule.Name,
		Targets:     rule.Targets(),
		UseAppTitle: rule.UseAppTitle,
		UseAppName:  rule.UseAppName,
		OnlyFirst:   rule.OnlyFirst,
		Exclude:     rule.Exclude,
		Master:      rule.Master,
		FgColor:     rule.FgColor,
		BgColor:     rule.BgColor,
		BgColor2:    rule.BgColor2,
	}
}

func toSchema(cfg Config) fileSchema {
	controls := make([]controlSchema, 0, len(cfg.Controls))
	for _, rule := range cfg.Controls {
		controls = append(controls, fromRule(rule))
	}
	autoFill := fromRule(cfg.AutoFillControl)

	return fileSchema{
		Debug:                      cfg.Debug,
		Monitor:                    cfg.Monitor,
		ButtonCount:                cfg.ButtonCount,
		AutoClose:                  cfg.AutoClose,
		CloseOnDeselect:            cfg.CloseOnDeselect,
		FgColor:                    cfg.FgColor,
		BgColor:                    cfg.BgColor,
		ShowProcessCount:           cfg.ShowProcessCount,
		MinWidth:                   cfg.MinWidth,
		SpacerPosition:             cfg.SpacerPosition,
		AutoFill:                   cfg.AutoFill,
		SteamLibraryFolders:        cfg.SteamLibraryFolders,
		GetSteamGames:              cfg.ForceGameScan,
		SteamGameCacheTimeout:      int(cfg.GameCacheTimeout / time.Minute),
		SteamGameCacheFile:         cfg.GameCacheFile,
		SteamappExclusions:         cfg.SteamappExclusions,
		OverrideSteamappExclusions: cfg.OverrideSteamappExclusions,
		AutoFillControl:            &autoFill,
		Controls:                   controls,
	}
}

// Encode writes cfg in the given format ("json" or "toml").
func Encode(w io.Writer, cfg Config, format string) error {
	data, err := marshal(toSchema(cfg), format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteDefaults creates the config file at path with the built-in defaults,
// encoded according to the file extension. The file is replaced atomically.
func WriteDefaults(fs afero.Fs, path string) error {
	data, err := marshal(defaultSchema(), formatForPath(path))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := afero.TempFile(fs, dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = fs.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := fs.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	cleanup = false

	if err := fs.Chmod(path, configFileMode); err != nil {
		return fmt.Errorf("chmod config file: %w", err)
	}

	return nil
}

func marshal(schema fileSchema, format string) ([]byte, error) {
	switch format {
	case FormatTOML:
		data, err := toml.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("encode toml config: %w", err)
		}
		return data, nil
	case FormatJSON, "":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "    ")
		if err := enc.Encode(schema); err != nil {
			return nil, fmt.Errorf("encode json config: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

func formatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

func resolveRelative(configPath, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(configPath), path)
}
