package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bnema/volmix/internal/domain"
	"github.com/bnema/volmix/internal/ports"
)

var ErrControlIndexOutOfRange = errors.New("control index out of range")

type MixerConfig struct {
	Rules    []domain.Rule
	AutoFill *domain.Rule
	Capacity int
	FgColor  string
	BgColor  string
}

// Mixer runs resolution passes and volume changes. Passes and adjustments
// are serialized.
type Mixer struct {
	mu       sync.Mutex
	cfg      MixerConfig
	audio    ports.AudioSessionProvider
	games    ports.GameCatalog
	actuator *VolumeActuator
	logger   *slog.Logger
}

func NewMixer(cfg MixerConfig, audio ports.AudioSessionProvider, games ports.GameCatalog, logger *slog.Logger) *Mixer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Mixer{
		cfg:      cfg,
		audio:    audio,
		games:    games,
		actuator: NewVolumeActuator(audio, logger),
		logger:   logger,
	}
}

func (m *Mixer) Rules() []domain.Rule {
	if m.cfg.AutoFill == nil {
		return ExpandAutoFill(m.cfg.Rules, domain.Rule{}, 0)
	}
	return ExpandAutoFill(m.cfg.Rules, *m.cfg.AutoFill, m.cfg.Capacity)
}

// Controls performs one resolution pass against a fresh session snapshot.
func (m *Mixer) Controls(ctx context.Context) ([]domain.ActiveControl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	games := m.loadGames(ctx)

	sessions, err := m.audio.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list audio sessions: %w", err)
	}
	m.logger.Debug("audio sessions listed", "count", len(sessions))

	controls := Resolve(m.Rules(), sessions, games, m.cfg.Capacity)
	for i := range controls {
		controls[i].Rule = controls[i].Rule.WithDefaultColors(m.cfg.FgColor, m.cfg.BgColor)
		if _, err := m.actuator.Refresh(ctx, &controls[i]); err != nil {
			m.logger.Warn("read control volume", "control", controls[i].Rule.Name, "error", err)
		}
	}

	return controls, nil
}

func (m *Mixer) Adjust(ctx context.Context, control *domain.ActiveControl, delta float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.actuator.Adjust(ctx, control, delta)
}

// AdjustByIndex resolves the controls and adjusts the one at the 1-based
// index used for number-key selection.
func (m *Mixer) AdjustByIndex(ctx context.Context, cmd AdjustVolumeCommand) (domain.ActiveControl, error) {
	controls, err := m.Controls(ctx)
	if err != nil {
		return domain.ActiveControl{}, err
	}

	if cmd.Index < 1 || cmd.Index > len(controls) {
		return domain.ActiveControl{}, fmt.Errorf("%w: %d (have %d)", ErrControlIndexOutOfRange, cmd.Index, len(controls))
	}

	control := controls[cmd.Index-1]
	_, err = m.Adjust(ctx, &control, cmd.Delta)
	return control, err
}

func (m *Mixer) loadGames(ctx context.Context) domain.GameSet {
	if m.games == nil {
		return domain.NewGameSet()
	}

	games, err := m.games.Load(ctx)
	if err != nil {
		m.logger.Warn("game catalog degraded", "error", err)
	}
	if games == nil {
		return domain.NewGameSet()
	}

	return games
}
