package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readlater/internal/article"
	"github.com/dgnsrekt/readlater/internal/prefs"
)

type previewRenderedMsg struct {
	id      string
	content string
}

// previewModel shows a single article rendered with glamour.
type previewModel struct {
	common   *commonModel
	viewport viewport.Model
	article  article.Article
}

func newPreviewModel(common *commonModel) previewModel {
	return previewModel{
		common:   common,
		viewport: viewport.New(0, 0),
	}
}

func (m *previewModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = max(0, h-statusBarHeight)
}

func (m *previewModel) load(a article.Article) tea.Cmd {
	m.article = a
	m.viewport.SetContent("")
	m.viewport.GotoTop()
	return renderPreview(*m.common, a, m.viewport.Width)
}

func (m *previewModel) unload() {
	m.article = article.Article{}
	m.viewport.SetContent("")
}

func (m previewModel) update(msg tea.Msg) (previewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case previewRenderedMsg:
		if msg.id == m.article.ID {
			m.viewport.SetContent(msg.content)
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "home", "g":
			m.viewport.GotoTop()
			return m, nil
		case "end", "G":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m previewModel) view() string {
	return m.viewport.View()
}

func (m previewModel) scrollPercent() float64 {
	return m.viewport.ScrollPercent()
}

// articleMarkdown lays an article out for rendering.
func articleMarkdown(a article.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", a.Title)
	if a.URL != "" {
		fmt.Fprintf(&b, "<%s>\n\n", a.URL)
	}
	b.WriteString(a.Content)
	return b.String()
}

func renderPreview(common commonModel, a article.Article, width int) tea.Cmd {
	return func() tea.Msg {
		md := articleMarkdown(a)
		if !common.cfg.GlamourEnabled {
			return previewRenderedMsg{id: a.ID, content: md}
		}

		out, err := glamourRender(common, md, width)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return previewRenderedMsg{id: a.ID, content: md}
		}
		return previewRenderedMsg{id: a.ID, content: out}
	}
}

func glamourRender(common commonModel, md string, width int) (string, error) {
	width = max(0, min(int(common.cfg.GlamourMaxWidth), width)) //nolint:gosec

	r, err := glamour.NewTermRenderer(
		glamourStyle(common.cfg.GlamourStyle, common.theme),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return out, nil
}

// glamourStyle picks the configured style, or dark/light from the theme.
func glamourStyle(style string, theme prefs.Theme) glamour.TermRendererOption {
	if style != "" && style != styles.AutoStyle {
		return glamour.WithStylePath(style)
	}
	if theme == prefs.ThemeLight {
		return glamour.WithStandardStyle(styles.LightStyle)
	}
	return glamour.WithStandardStyle(styles.DarkStyle)
}

// applyTheme points lipgloss's adaptive colors at theme.
func applyTheme(theme prefs.Theme) {
	lipgloss.SetHasDarkBackground(theme != prefs.ThemeLight)
}
