package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/volmix/internal/domain"
	"github.com/bnema/volmix/internal/ports"
)

// Provider is an in-process audio backend. Sessions keep insertion order.
type Provider struct {
	mu       sync.RWMutex
	order    []domain.SessionID
	sessions map[domain.SessionID]domain.Session
	volumes  map[domain.SessionID]float64
	master   float64
	failing  map[domain.SessionID]error
}

var _ ports.AudioSessionProvider = (*Provider)(nil)

func NewProvider() *Provider {
	return &Provider{
		sessions: map[domain.SessionID]domain.Session{},
		volumes:  map[domain.SessionID]float64{},
		failing:  map[domain.SessionID]error{},
		master:   1,
	}
}

// Add registers a session with a starting volume. A missing ID is derived
// from the pid and process name.
func (p *Provider) Add(session domain.Session, volume float64) domain.Session {
	p.mu.Lock()
	defer p.mu.Unlock()

	session.ProcessName = domain.NormalizeProcessName(session.ProcessName)
	if session.ID == "" {
		session.ID = domain.SessionID(fmt.Sprintf("%d:%s", session.PID, session.ProcessName))
	}

	if _, ok := p.sessions[session.ID]; !ok {
		p.order = append(p.order, session.ID)
	}
	p.sessions[session.ID] = session
	p.volumes[session.ID] = domain.ClampVolume(volume)

	return session
}

// Remove simulates a session that terminated after being enumerated.
func (p *Provider) Remove(id domain.SessionID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.sessions, id)
	delete(p.volumes, id)
	for i, existing := range p.order {
		if existing == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Fail makes every volume call for id return err until cleared with nil.
func (p *Provider) Fail(id domain.SessionID, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err == nil {
		delete(p.failing, id)
		return
	}
	p.failing[id] = err
}

func (p *Provider) SetMaster(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.master = domain.ClampVolume(volume)
}

func (p *Provider) Sessions(ctx context.Context) ([]domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]domain.Session, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.sessions[id])
	}
	return out, nil
}

func (p *Provider) SessionVolume(ctx context.Context, id domain.SessionID) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if err, ok := p.failing[id]; ok {
		return 0, err
	}
	volume, ok := p.volumes[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return volume, nil
}

func (p *Provider) SetSessionVolume(ctx context.Context, id domain.SessionID, volume float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err, ok := p.failing[id]; ok {
		return err
	}
	if _, ok := p.volumes[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	p.volumes[id] = domain.ClampVolume(volume)
	return nil
}

func (p *Provider) MasterVolume(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.master, nil
}

func (p *Provider) SetMasterVolume(ctx context.Context, volume float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.master = domain.ClampVolume(volume)
	return nil
}
