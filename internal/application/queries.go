package application

import (
	"context"

	"github.com/bnema/volmix/internal/domain"
)

type ControlStatus struct {
	Index     int
	Name      string
	Text      string
	Master    bool
	Volume    float64
	Processes []string
}

func (l *Labeler) Statuses(ctx context.Context, controls []domain.ActiveControl, opts DisplayOptions) []ControlStatus {
	statuses := make([]ControlStatus, 0, len(controls))
	for i, control := range controls {
		processes := make([]string, 0, len(control.Sessions))
		for _, session := range control.Sessions {
			processes = append(processes, session.ProcessName)
		}

		statuses = append(statuses, ControlStatus{
			Index:     i + 1,
			Name:      control.Rule.Name,
			Text:      l.Text(ctx, control, opts),
			Master:    control.Rule.Master,
			Volume:    control.Volume,
			Processes: processes,
		})
	}
	return statuses
}
