package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bnema/volmix/internal/domain"
	"github.com/bnema/volmix/internal/ports"
)

type VolumeActuator struct {
	audio  ports.AudioSessionProvider
	logger *slog.Logger
}

func NewVolumeActuator(audio ports.AudioSessionProvider, logger *slog.Logger) *VolumeActuator {
	if logger == nil {
		logger = slog.Default()
	}

	return &VolumeActuator{audio: audio, logger: logger}
}

// Adjust adds delta to every target of control, clamped to [0,1], and stores
// the last written value in control.Volume. Targets that fail are skipped;
// their errors are returned joined once all other targets were processed.
func (a *VolumeActuator) Adjust(ctx context.Context, control *domain.ActiveControl, delta float64) (float64, error) {
	if control == nil {
		return 0, errors.New("control is nil")
	}

	if control.Rule.Master {
		return a.adjustMaster(ctx, control, delta)
	}

	if len(control.Sessions) == 0 {
		return control.Volume, nil
	}

	var errs []error
	for _, session := range control.Sessions {
		if err := a.adjustSession(ctx, control, session, delta); err != nil {
			a.logger.Warn("skip audio session",
				"control", control.Rule.Name,
				"process", session.ProcessName,
				"pid", session.PID,
				"error", err,
			)
			errs = append(errs, err)
		}
		if control.Rule.OnlyFirst {
			break
		}
	}

	return control.Volume, errors.Join(errs...)
}

// Refresh re-reads the control's volume without changing it.
func (a *VolumeActuator) Refresh(ctx context.Context, control *domain.ActiveControl) (float64, error) {
	return a.Adjust(ctx, control, 0)
}

func (a *VolumeActuator) adjustMaster(ctx context.Context, control *domain.ActiveControl, delta float64) (float64, error) {
	current, err := a.audio.MasterVolume(ctx)
	if err != nil {
		a.logger.Warn("read master volume", "error", err)
		return control.Volume, fmt.Errorf("%w: read master volume: %w", domain.ErrTargetUnavailable, err)
	}

	next := domain.ClampVolume(current + delta)
	if err := a.audio.SetMasterVolume(ctx, next); err != nil {
		a.logger.Warn("write master volume", "error", err)
		return control.Volume, fmt.Errorf("%w: write master volume: %w", domain.ErrTargetUnavailable, err)
	}

	control.Volume = next
	return next, nil
}

func (a *VolumeActuator) adjustSession(ctx context.Context, control *domain.ActiveControl, session domain.Session, delta float64) error {
	current, err := a.audio.SessionVolume(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("%w: read %s (pid %d): %w", domain.ErrTargetUnavailable, session.ProcessName, session.PID, err)
	}

	next := domain.ClampVolume(current + delta)
	if err := a.audio.SetSessionVolume(ctx, session.ID, next); err != nil {
		return fmt.Errorf("%w: write %s (pid %d): %w", domain.ErrTargetUnavailable, session.ProcessName, session.PID, err)
	}

	control.Volume = next
	return nil
}
