package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"

	"github.com/dgnsrekt/readlater/internal/article"
)

const (
	listTopPadding = 2
	linesPerItem   = 3
)

// articleSource adapts a slice of articles for fuzzy matching.
type articleSource []article.Article

func (s articleSource) String(i int) string {
	a := s[i]
	return a.Title + " " + a.Source()
}

func (s articleSource) Len() int { return len(s) }

type listModel struct {
	common *commonModel

	articles []article.Article
	visible  []article.Article
	cursor   int
	offset   int

	filterInput textinput.Model
	filtering   bool
}

func newListModel(common *commonModel) listModel {
	fi := textinput.New()
	fi.Prompt = "Find: "
	fi.PromptStyle = fi.PromptStyle.Foreground(yellowGreen)
	fi.Cursor.Style = fi.Cursor.Style.Foreground(fuchsia)
	fi.CharLimit = 80

	return listModel{
		common:      common,
		filterInput: fi,
	}
}

// setArticles replaces the list, keeping the cursor on the same article
// when it is still present.
func (m *listModel) setArticles(items []article.Article) {
	selected, hadSelection := m.selected()
	m.articles = items
	m.applyFilter()

	if hadSelection {
		for i, a := range m.visible {
			if a.ID == selected.ID {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
}

func (m *listModel) applyFilter() {
	term := strings.TrimSpace(m.filterInput.Value())
	if term == "" {
		m.visible = m.articles
		return
	}

	matches := fuzzy.FindFrom(term, articleSource(m.articles))
	visible := make([]article.Article, 0, len(matches))
	for _, match := range matches {
		visible = append(visible, m.articles[match.Index])
	}
	m.visible = visible
}

func (m listModel) filterApplied() bool {
	return strings.TrimSpace(m.filterInput.Value()) != ""
}

func (m *listModel) startFiltering() tea.Cmd {
	m.filtering = true
	return m.filterInput.Focus()
}

func (m *listModel) stopFiltering(keep bool) {
	m.filtering = false
	m.filterInput.Blur()
	if !keep {
		m.filterInput.Reset()
	}
	m.applyFilter()
	m.cursor = 0
	m.offset = 0
}

func (m listModel) selected() (article.Article, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return article.Article{}, false
	}
	return m.visible[m.cursor], true
}

func (m *listModel) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *listModel) clampCursor() {
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	per := m.perPage()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+per {
		m.offset = m.cursor - per + 1
	}
}

func (m listModel) perPage() int {
	// header, filter line and the status bar
	avail := m.common.height - listTopPadding - 2 - statusBarHeight
	return max(1, avail/linesPerItem)
}

func (m listModel) update(msg tea.Msg) (listModel, tea.Cmd) {
	if !m.filtering {
		return m, nil
	}

	before := m.filterInput.Value()
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if m.filterInput.Value() != before {
		m.applyFilter()
		m.cursor = 0
		m.offset = 0
	}
	return m, cmd
}

func (m listModel) view(status playerStatus) string {
	var b strings.Builder

	fmt.Fprint(&b, strings.Repeat("\n", listTopPadding-1))
	switch {
	case m.filtering || m.filterApplied():
		fmt.Fprintln(&b, "  "+m.filterInput.View())
	default:
		fmt.Fprintln(&b, "  "+subtleStyle(m.countLabel()))
	}
	fmt.Fprintln(&b)

	if len(m.visible) == 0 {
		empty := "No articles yet. Press a to add a URL or t to paste text."
		if m.filterApplied() {
			empty = "Nothing matched."
		}
		fmt.Fprintln(&b, "  "+subtleStyle(empty))
		return b.String()
	}

	end := min(len(m.visible), m.offset+m.perPage())
	for i := m.offset; i < end; i++ {
		fmt.Fprint(&b, m.itemView(m.visible[i], i == m.cursor, status.playing(m.visible[i].ID)))
	}
	return b.String()
}

func (m listModel) countLabel() string {
	switch n := len(m.articles); n {
	case 1:
		return "1 article"
	default:
		return fmt.Sprintf("%d articles", n)
	}
}

func (m listModel) itemView(a article.Article, selected, playing bool) string {
	width := max(10, m.common.width-4)

	gutter := " "
	if selected {
		gutter = selectedTitleStyle("│")
	}
	if playing {
		gutter = promptStyle("♪")
	}

	title := truncate.StringWithTail(a.Title, uint(width), ellipsis) //nolint:gosec
	meta := a.Source() + " • " + humanize.Time(a.SavedDate)
	if excerptWidth := width - runewidth.StringWidth(meta) - 3; excerptWidth > 10 {
		meta += " • " + a.Excerpt(excerptWidth)
	}
	meta = truncate.StringWithTail(meta, uint(width), ellipsis) //nolint:gosec

	if selected {
		title = selectedTitleStyle(title)
		meta = selectedMetaStyle(meta)
	} else {
		title = titleStyle(title)
		meta = metaStyle(meta)
	}

	return fmt.Sprintf(" %s %s\n %s %s\n\n", gutter, title, gutter, meta)
}
