package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bnema/volmix/internal/domain"
	"github.com/bnema/volmix/internal/ports"
)

type DisplayOptions struct {
	Focused          bool
	Debug            bool
	ShowProcessCount bool
}

// Labeler derives the on-screen text of a control from its rule flags.
type Labeler struct {
	titles ports.WindowTitleResolver
	logger *slog.Logger
}

func NewLabeler(titles ports.WindowTitleResolver, logger *slog.Logger) *Labeler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Labeler{titles: titles, logger: logger}
}

func (l *Labeler) Title(ctx context.Context, control domain.ActiveControl) string {
	if len(control.Sessions) != 1 {
		return control.Rule.Name
	}

	session := control.Sessions[0]
	label := session.Label()
	rule := control.Rule

	switch {
	case rule.UseAppTitle && rule.UseAppName:
		title := l.windowTitle(ctx, session)
		if title == "" {
			return label
		}
		if strings.Contains(title, label) {
			return title
		}
		return label + ": " + title
	case rule.UseAppTitle:
		return l.windowTitle(ctx, session)
	case rule.UseAppName:
		if session.DisplayName != "" {
			return session.DisplayName
		}
		return label
	default:
		return rule.Name
	}
}

// Titles resolves the title of every control in one pass. Window lookups are
// external calls, so callers that redraw often should keep the result.
func (l *Labeler) Titles(ctx context.Context, controls []domain.ActiveControl) []string {
	titles := make([]string, len(controls))
	for i, control := range controls {
		titles[i] = l.Title(ctx, control)
	}
	return titles
}

func (l *Labeler) Text(ctx context.Context, control domain.ActiveControl, opts DisplayOptions) string {
	return FormatText(control, l.Title(ctx, control), opts)
}

// FormatText renders a control line around an already resolved title.
func FormatText(control domain.ActiveControl, title string, opts DisplayOptions) string {
	count := len(control.Sessions)

	if opts.Debug && opts.Focused {
		target, process := "Master", "master"
		if !control.Rule.Master && count > 0 {
			target = control.Sessions[0].DisplayName
			if target == "" {
				target = title
			}
			process = control.Sessions[0].ProcessName
		}
		return fmt.Sprintf("%s %s %q %s (%d)",
			control.Rule.Name,
			strconv.FormatFloat(control.Volume, 'f', -1, 64),
			target,
			process,
			count,
		)
	}

	if opts.ShowProcessCount && opts.Focused && count > 1 {
		return fmt.Sprintf("%s - %d%% (%d)", title, control.Percent(), count)
	}

	return fmt.Sprintf("%s - %d%%", title, control.Percent())
}

func (l *Labeler) windowTitle(ctx context.Context, session domain.Session) string {
	if l.titles == nil {
		return ""
	}

	title, err := l.titles.Title(ctx, session.PID)
	if err != nil {
		l.logger.Debug("resolve window title", "pid", session.PID, "error", err)
		return ""
	}

	return title
}
