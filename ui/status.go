package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgnsrekt/readlater/internal/playback"
)

// playerStatus tracks what the playback controller last reported.
type playerStatus struct {
	state     playback.StateType
	articleID string
	message   string
	err       error
}

func (s *playerStatus) update(st playback.Status) {
	s.state = st.State
	s.articleID = st.ArticleID
	s.message = st.Message
	s.err = st.Err
}

// playing reports whether id is the article being spoken.
func (s playerStatus) playing(id string) bool {
	return s.state.Active() && s.articleID == id
}

// compact returns the indicator shown in the status bar.
func (s playerStatus) compact() string {
	icon := s.icon()
	if icon == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(s.color()).Render(icon)
}

func (s playerStatus) icon() string {
	switch s.state {
	case playback.StatePlaying:
		return "▶"
	case playback.StatePaused:
		return "⏸"
	case playback.StateRequesting:
		return "⟳"
	case playback.StateError:
		return "✗"
	default:
		return ""
	}
}

func (s playerStatus) color() lipgloss.TerminalColor {
	switch s.state {
	case playback.StatePlaying:
		return green
	case playback.StatePaused:
		return lipgloss.Color("#FFFF00")
	case playback.StateRequesting:
		return lipgloss.Color("#00AAFF")
	case playback.StateError:
		return red
	default:
		return gray
	}
}

// note is the human readable text for the status bar.
func (s playerStatus) note() string {
	var perr *playback.Error
	switch {
	case errors.As(s.err, &perr):
		return perr.UserMessage()
	case s.err != nil && s.message == "":
		return s.err.Error()
	default:
		return s.message
	}
}

func (s playerStatus) failed() bool {
	return s.err != nil
}

func rateLabel(rate float64) string {
	return fmt.Sprintf("%.1fx", rate)
}
