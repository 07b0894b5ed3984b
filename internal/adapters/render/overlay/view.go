package overlay

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bnema/volmix/internal/application"
	"github.com/bnema/volmix/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// cellWidthPx converts the desktop min_width setting into terminal columns.
const cellWidthPx = 9

const barWidth = 24

type RenderOptions struct {
	Debug            bool
	ShowProcessCount bool
	MinWidth         int
	SpacerPosition   int
	Warning          string
}

type row struct {
	index   int
	text    string
	control domain.ActiveControl
	focused bool
}

// Render draws the resolved controls once, without focus.
func Render(ctx context.Context, controls []domain.ActiveControl, labeler *application.Labeler, opts RenderOptions) string {
	titles := labeler.Titles(ctx, controls)
	return renderView(buildRows(controls, titles, -1, opts), opts, newStyles())
}

func buildRows(controls []domain.ActiveControl, titles []string, focused int, opts RenderOptions) []row {
	rows := make([]row, 0, len(controls))
	for i, control := range controls {
		title := control.Rule.Name
		if i < len(titles) {
			title = titles[i]
		}
		rows = append(rows, row{
			index: i + 1,
			text: application.FormatText(control, title, application.DisplayOptions{
				Focused:          i == focused,
				Debug:            opts.Debug,
				ShowProcessCount: opts.ShowProcessCount,
			}),
			control: control,
			focused: i == focused,
		})
	}
	return rows
}

func renderView(rows []row, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Volume Mixer"),
		s.header.Render(fmt.Sprintf("controls: %d", len(rows))),
	}

	if len(rows) == 0 {
		lines = append(lines, s.empty.Render("No audio sessions matched any control."))
	}

	spacerAt := spacerIndex(opts.SpacerPosition, len(rows))
	minCells := opts.MinWidth / cellWidthPx

	for i, r := range rows {
		if i == spacerAt {
			lines = append(lines, "")
		}
		lines = append(lines, renderRow(r, minCells, s))
	}

	if opts.Warning != "" {
		lines = append(lines, s.warning.Render(opts.Warning))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRow(r row, minCells int, s styles) string {
	index := s.index.Render(fmt.Sprintf("%d", r.index))

	if r.focused {
		label := s.focused.Width(minCells).Render(r.text)
		return lipgloss.JoinHorizontal(lipgloss.Top,
			s.marker.Render("▶ "),
			index,
			" ",
			label,
			" ",
			renderVolumeBar(r.control.Volume, barWidth, s),
		)
	}

	label := rowStyle(r.control.Rule).Width(minCells).Render(r.text)
	return lipgloss.JoinHorizontal(lipgloss.Top, "  ", index, " ", label)
}

func renderVolumeBar(volume float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * domain.ClampVolume(volume)))
	empty := width - filled

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", empty)),
		s.barBracket.Render("]"),
	)
}

// spacerIndex returns the row before which a blank line goes, or -1. A
// position of n places the gap before the n-th control.
func spacerIndex(position, rows int) int {
	if position <= 0 || rows == 0 {
		return -1
	}
	return min(rows-1, position-1)
}
