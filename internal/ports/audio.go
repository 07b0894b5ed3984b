package ports

import (
	"context"

	"github.com/bnema/volmix/internal/domain"
)

// AudioSessionProvider is the audio subsystem collaborator: it enumerates
// active sessions and reads/writes scalar volumes in [0,1].
type AudioSessionProvider interface {
	Sessions(ctx context.Context) ([]domain.Session, error)
	SessionVolume(ctx context.Context, id domain.SessionID) (float64, error)
	SetSessionVolume(ctx context.Context, id domain.SessionID, volume float64) error
	MasterVolume(ctx context.Context) (float64, error)
	SetMasterVolume(ctx context.Context, volume float64) error
}

// WindowTitleResolver maps a process id to its top-level window title. An
// empty title with a nil error means the process has no window.
type WindowTitleResolver interface {
	Title(ctx context.Context, pid int) (string, error)
}
