package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	normalDim   = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray        = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray     = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	darkGray    = lipgloss.AdaptiveColor{Light: "#DDDADA", Dark: "#3C3C3C"}
	brightGray  = lipgloss.AdaptiveColor{Light: "#847A85", Dark: "#979797"}
	fuchsia     = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	dullFuchsia = lipgloss.AdaptiveColor{Light: "#F793FF", Dark: "#AD58B4"}
	cream       = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	green       = lipgloss.Color("#04B575")
	red         = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	yellowGreen = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"}

	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(lipgloss.Color("#5A56E0")).
			Padding(0, 1)

	selectedTitleStyle = lipgloss.NewStyle().
				Foreground(fuchsia).
				Render

	selectedMetaStyle = lipgloss.NewStyle().
				Foreground(dullFuchsia).
				Render

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"}).
			Render

	metaStyle = lipgloss.NewStyle().
			Foreground(normalDim).
			Render

	subtleStyle = lipgloss.NewStyle().
			Foreground(gray).
			Render

	dividerStyle = lipgloss.NewStyle().
			Foreground(darkGray).
			Render

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(yellowGreen).
			Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(brightGray).
			Render

	helpDescStyle = lipgloss.NewStyle().
			Foreground(midGray).
			Render
)

func logoView() string {
	return logoStyle.Render("readlater")
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle(exitMsg),
	)
	return "\n" + indent(s, 3)
}
