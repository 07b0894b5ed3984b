package overlay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bnema/volmix/internal/application"
	"github.com/bnema/volmix/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedOverlayModel = errors.New("unexpected final bubbletea model type")

// Mixer is the part of the application the overlay drives.
type Mixer interface {
	Controls(ctx context.Context) ([]domain.ActiveControl, error)
	Adjust(ctx context.Context, control *domain.ActiveControl, delta float64) (float64, error)
}

type Options struct {
	RenderOptions
	AutoClose       bool
	CloseOnDeselect bool
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "louder")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "quieter")),
		Select:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "select")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "close")),
	}
}

type controlsMsg struct {
	controls []domain.ActiveControl
	titles   []string
	err      error
}

type model struct {
	ctx      context.Context
	mixer    Mixer
	labeler  *application.Labeler
	opts     Options
	keys     keyMap
	styles   styles
	logger   *slog.Logger
	controls []domain.ActiveControl
	titles   []string
	focused  int
	warning  string
}

func newModel(ctx context.Context, mixer Mixer, labeler *application.Labeler, opts Options, logger *slog.Logger) model {
	if logger == nil {
		logger = slog.Default()
	}

	return model{
		ctx:     ctx,
		mixer:   mixer,
		labeler: labeler,
		opts:    opts,
		keys:    defaultKeyMap(),
		styles:  newStyles(),
		logger:  logger,
		focused: -1,
	}
}

func (m model) Init() tea.Cmd {
	return m.loadControls
}

func (m model) loadControls() tea.Msg {
	controls, err := m.mixer.Controls(m.ctx)
	if err != nil {
		return controlsMsg{err: err}
	}
	return controlsMsg{controls: controls, titles: m.labeler.Titles(m.ctx, controls)}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case controlsMsg:
		if msg.err != nil {
			m.warning = msg.err.Error()
			m.logger.Error("resolve controls", "error", msg.err)
			return m, nil
		}
		m.warning = ""
		m.controls = msg.controls
		m.titles = msg.titles
		if m.focused >= len(m.controls) {
			m.focused = -1
		}
		return m, nil
	case tea.BlurMsg:
		if m.opts.AutoClose {
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadControls
	case key.Matches(msg, m.keys.Select):
		return m.selectControl(int(msg.Runes[0]-'0') - 1)
	case key.Matches(msg, m.keys.Up):
		return m.adjust(application.VolumeStep), nil
	case key.Matches(msg, m.keys.Down):
		return m.adjust(-application.VolumeStep), nil
	default:
		return m, nil
	}
}

func (m model) selectControl(index int) (tea.Model, tea.Cmd) {
	if index < 0 || index >= len(m.controls) {
		return m, nil
	}

	if m.focused == index {
		m.focused = -1
		if m.opts.CloseOnDeselect {
			return m, tea.Quit
		}
		return m, nil
	}

	m.focused = index
	return m, nil
}

func (m model) adjust(delta float64) model {
	if m.focused < 0 || m.focused >= len(m.controls) {
		return m
	}

	controls := append([]domain.ActiveControl(nil), m.controls...)
	control := &controls[m.focused]
	if _, err := m.mixer.Adjust(m.ctx, control, delta); err != nil {
		m.logger.Warn("adjust volume", "control", control.Rule.Name, "error", err)
	}

	m.controls = controls
	return m
}

func (m model) View() string {
	opts := m.opts.RenderOptions
	if m.warning != "" {
		opts.Warning = m.warning
	}

	rows := buildRows(m.controls, m.titles, m.focused, opts)
	view := renderView(rows, opts, m.styles)

	return view + "\n" + m.styles.help.Render(helpLine(m.keys))
}

func helpLine(keys keyMap) string {
	bindings := []key.Binding{keys.Select, keys.Up, keys.Down, keys.Refresh, keys.Quit}
	line := ""
	for i, b := range bindings {
		if i > 0 {
			line += "  "
		}
		line += b.Help().Key + " " + b.Help().Desc
	}
	return line
}

// Run shows the overlay until the user dismisses it.
func Run(ctx context.Context, mixer Mixer, labeler *application.Labeler, opts Options, logger *slog.Logger, progOpts ...tea.ProgramOption) error {
	options := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	}, progOpts...)

	p := tea.NewProgram(newModel(ctx, mixer, labeler, opts, logger), options...)

	finalModel, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return err
	}

	if _, ok := finalModel.(model); !ok {
		return ErrUnexpectedOverlayModel
	}

	return nil
}
