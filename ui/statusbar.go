package ui

import (
	"fmt"
	"math"
	"strings"

	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/readlater/internal/playback"
)

func (m model) statusBarView(b *strings.Builder) {
	const (
		minPercent               float64 = 0.0
		maxPercent               float64 = 1.0
		percentToStringMagnitude float64 = 100.0
	)

	logo := logoView()

	// Playback settings
	cfg := m.common.svc.Player.Config()
	settings := " " + rateLabel(cfg.Rate) + " • " + cfg.Language
	if cfg.Voice != "" {
		settings += " • " + cfg.Voice
	}
	if m.state == statePreview {
		percent := math.Max(minPercent, math.Min(maxPercent, m.preview.scrollPercent()))
		settings += fmt.Sprintf(" • %3.f%%", percent*percentToStringMagnitude)
	}
	settings = statusBarNoteStyle(settings + " ")

	helpNote := statusBarHelpStyle(" ? Help ")

	// Note
	style := statusBarNoteStyle
	var note string
	switch {
	case m.statusMessage != "":
		note = m.statusMessage
		style = statusBarMessageStyle
		if m.statusIsError {
			style = statusBarErrorStyle
		}
	case m.player.state.Active():
		note = m.player.note()
		if m.player.state == playback.StateRequesting {
			break
		}
		if a, ok := m.common.svc.Articles.Get(m.player.articleID); ok {
			note += ": " + a.Title
		}
	case m.player.failed():
		note = m.player.note()
		style = statusBarErrorStyle
	}
	if m.fetching > 0 {
		note = m.spinner.View() + " " + note
	}
	if icon := m.player.compact(); icon != "" {
		note = icon + " " + note
	}

	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(settings)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	note = style(note)

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(settings)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := style(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		settings,
		helpNote,
	)
}

func (m model) helpView() string {
	var col1, col2 [][2]string

	switch m.state {
	case statePreview:
		col1 = [][2]string{
			{"k/↑", "up"},
			{"j/↓", "down"},
			{"g/home", "go to top"},
			{"G/end", "go to bottom"},
			{"enter", "read aloud"},
			{"esc", "back to list"},
		}
	default:
		col1 = [][2]string{
			{"k/↑", "up"},
			{"j/↓", "down"},
			{"a", "add by URL"},
			{"t", "add text"},
			{"p", "preview"},
			{"d", "delete"},
			{"/", "find"},
			{"q", "quit"},
		}
	}
	col2 = [][2]string{
		{"enter", "read aloud"},
		{"space", "pause/resume"},
		{"s", "stop"},
		{"+/-", "rate"},
		{"v", "next voice"},
		{"L", "next language"},
		{"T", "toggle theme"},
	}

	rows := max(len(col1), len(col2))
	var s strings.Builder
	s.WriteString("\n")
	for i := 0; i < rows; i++ {
		s.WriteString(helpEntry(col1, i, 22))
		s.WriteString(helpEntry(col2, i, 0))
		if i+1 < rows {
			s.WriteString("\n")
		}
	}

	out := indent(s.String(), 2)

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(out, "\n")
		for i := range lines {
			l := ansi.PrintableRuneWidth(lines[i])
			lines[i] += strings.Repeat(" ", max(m.common.width-l, 0))
		}
		out = strings.Join(lines, "\n")
	}
	return helpViewStyle(out)
}

func helpEntry(col [][2]string, i, width int) string {
	if i >= len(col) {
		return strings.Repeat(" ", width)
	}
	key := fmt.Sprintf("%-8s", col[i][0])
	entry := helpKeyStyle(key) + " " + helpDescStyle(col[i][1])
	if pad := width - runewidth.StringWidth(key) - 1 - runewidth.StringWidth(col[i][1]); pad > 0 {
		entry += strings.Repeat(" ", pad)
	}
	return entry
}
