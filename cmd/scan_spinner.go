package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bnema/volmix/internal/adapters/gamecache"
	"github.com/bnema/volmix/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type folderScannedMsg gamecache.FolderScanned

type scanFinishedMsg struct {
	games domain.GameSet
	err   error
}

// scanProgress tracks a library rescan folder by folder.
type scanProgress struct {
	spinner spinner.Model
	folders int
	scanned int
	skipped int
	games   int
	last    string

	result   domain.GameSet
	err      error
	finished bool
}

var (
	scanFolderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7"))
	scanSkipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
)

func newScanProgress(folders int) scanProgress {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))),
	)
	return scanProgress{spinner: s, folders: folders}
}

func (m scanProgress) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m scanProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case folderScannedMsg:
		m.scanned = msg.Index
		m.folders = msg.Total
		m.games = msg.Games
		m.last = msg.Folder
		if msg.Err != nil {
			m.skipped++
		}
		return m, nil
	case scanFinishedMsg:
		m.finished = true
		m.result = msg.games
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m scanProgress) View() string {
	if m.finished {
		return ""
	}

	line := fmt.Sprintf("%s Scanning Steam libraries %d/%d, %d games", m.spinner.View(), m.scanned, m.folders, m.games)
	if m.skipped > 0 {
		line += scanSkipStyle.Render(fmt.Sprintf(" (%d skipped)", m.skipped))
	}
	if m.last != "" {
		line += "\n  " + scanFolderStyle.Render(filepath.Base(m.last))
	}
	return line
}

// refreshWithProgress rescans the catalog while drawing per-folder progress
// on output.
func refreshWithProgress(ctx context.Context, output io.Writer, catalog *gamecache.Catalog) (domain.GameSet, error) {
	p := tea.NewProgram(
		newScanProgress(len(catalog.Folders())),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	go func() {
		games, err := catalog.RefreshWithProgress(ctx, func(e gamecache.FolderScanned) {
			p.Send(folderScannedMsg(e))
		})
		p.Send(scanFinishedMsg{games: games, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	result, ok := final.(scanProgress)
	if !ok {
		return nil, fmt.Errorf("unexpected scan progress model %T", final)
	}
	return result.result, result.err
}
