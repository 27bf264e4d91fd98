package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

type addMode int

const (
	addURL addMode = iota
	addText
)

// addModel holds the add-by-URL and add-by-text forms.
type addModel struct {
	common *commonModel
	mode   addMode

	urlInput   textinput.Model
	titleInput textinput.Model
	body       textarea.Model
	focusBody  bool
}

func newAddModel(common *commonModel) addModel {
	ui := textinput.New()
	ui.Prompt = "URL: "
	ui.Placeholder = "https://example.com/article"
	ui.PromptStyle = ui.PromptStyle.Foreground(yellowGreen)
	ui.CharLimit = 2048

	ti := textinput.New()
	ti.Prompt = "Title: "
	ti.Placeholder = "optional"
	ti.PromptStyle = ti.PromptStyle.Foreground(yellowGreen)
	ti.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "Paste the text to read aloud…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0

	return addModel{
		common:     common,
		urlInput:   ui,
		titleInput: ti,
		body:       ta,
	}
}

func (m *addModel) setSize(w, h int) {
	m.urlInput.Width = max(10, w-12)
	m.titleInput.Width = max(10, w-14)
	m.body.SetWidth(max(10, w-6))
	m.body.SetHeight(max(3, h-10))
}

func (m *addModel) open(mode addMode) tea.Cmd {
	m.mode = mode
	m.urlInput.Reset()
	m.titleInput.Reset()
	m.body.Reset()
	m.focusBody = false

	if mode == addURL {
		return m.urlInput.Focus()
	}
	m.body.Blur()
	return m.titleInput.Focus()
}

func (m *addModel) close() {
	m.urlInput.Blur()
	m.titleInput.Blur()
	m.body.Blur()
}

// pasteURL fills the URL field from the system clipboard.
func (m *addModel) pasteURL() error {
	s, err := clipboard.ReadAll()
	if err != nil {
		log.Debug("Could not read clipboard", "error", err)
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	m.urlInput.SetValue(strings.TrimSpace(s))
	m.urlInput.CursorEnd()
	return nil
}

func (m *addModel) toggleFocus() tea.Cmd {
	m.focusBody = !m.focusBody
	if m.focusBody {
		m.titleInput.Blur()
		return m.body.Focus()
	}
	m.body.Blur()
	return m.titleInput.Focus()
}

func (m addModel) url() string {
	return strings.TrimSpace(m.urlInput.Value())
}

func (m addModel) text() (title, body string) {
	return strings.TrimSpace(m.titleInput.Value()), m.body.Value()
}

func (m addModel) update(msg tea.Msg) (addModel, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.mode == addURL:
		m.urlInput, cmd = m.urlInput.Update(msg)
	case m.focusBody:
		m.body, cmd = m.body.Update(msg)
	default:
		m.titleInput, cmd = m.titleInput.Update(msg)
	}
	return m, cmd
}

func (m addModel) view() string {
	var b strings.Builder
	fmt.Fprintln(&b)

	if m.mode == addURL {
		fmt.Fprintln(&b, "  "+titleStyle("Add an article by URL"))
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "  "+m.urlInput.View())
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "  "+subtleStyle("enter save • ctrl+v paste • esc cancel"))
		return b.String()
	}

	fmt.Fprintln(&b, "  "+titleStyle("Add an article from text"))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "  "+m.titleInput.View())
	fmt.Fprintln(&b)
	fmt.Fprint(&b, indent(m.body.View(), 2))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "  "+subtleStyle("tab switch field • ctrl+s save • esc cancel"))
	return b.String()
}
