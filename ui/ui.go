// Package ui provides the terminal interface for readlater.
package ui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	te "github.com/muesli/termenv"

	"github.com/dgnsrekt/readlater/internal/acquire"
	"github.com/dgnsrekt/readlater/internal/article"
	"github.com/dgnsrekt/readlater/internal/playback"
	"github.com/dgnsrekt/readlater/internal/prefs"
	"github.com/dgnsrekt/readlater/internal/share"
	"github.com/dgnsrekt/readlater/internal/speech"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "saved!"
	ellipsis             = "…"
	statusBarHeight      = 1
	rateStep             = 0.1
)

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, svc Services) *tea.Program {
	log.Debug(
		"Starting readlater",
		"glamour", cfg.GlamourEnabled,
		"share_file", cfg.ShareFile,
		"articles", svc.Articles.Len(),
	)

	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, svc), opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	articleAddedMsg struct {
		article article.Article
		err     error
	}
	playbackMsg             playback.Status
	voicesChangedMsg        struct{}
	playSubmittedMsg        struct{ err error }
	statusMessageTimeoutMsg int
)

// state is the top-level application state.
type state int

const (
	stateBrowse state = iota
	stateAdd
	stateConfirm
	statePreview
)

func (s state) String() string {
	return map[state]string{
		stateBrowse:  "browsing articles",
		stateAdd:     "adding an article",
		stateConfirm: "confirming truncation",
		statePreview: "previewing an article",
	}[s]
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	svc    Services
	theme  prefs.Theme
	width  int
	height int
}

// pendingPlay is an article waiting for the user to accept truncation.
type pendingPlay struct {
	id     string
	title  string
	length int
	limit  int
	from   state
}

type model struct {
	common   *commonModel
	state    state
	fatalErr error
	showHelp bool

	// Sub-models
	list    listModel
	add     addModel
	preview previewModel
	spinner spinner.Model

	fetching int
	player   playerStatus
	pending  pendingPlay
	share    *shareWatcher

	statusMessage string
	statusIsError bool
	statusSeq     int
}

func newModel(cfg Config, svc Services) model {
	theme, ok := svc.Prefs.Theme()
	if !ok {
		theme = prefs.ThemeLight
		if te.HasDarkBackground() {
			theme = prefs.ThemeDark
		}
	}
	applyTheme(theme)

	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{svc.Player.Config().Language}
	}

	common := &commonModel{
		cfg:   cfg,
		svc:   svc,
		theme: theme,
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(fuchsia)

	m := model{
		common:  common,
		state:   stateBrowse,
		list:    newListModel(common),
		add:     newAddModel(common),
		preview: newPreviewModel(common),
		spinner: sp,
		share:   newShareWatcher(cfg.ShareFile),
	}
	m.list.setArticles(svc.Articles.Articles())
	return m
}

func (m model) Init() tea.Cmd {
	svc := m.common.svc
	return tea.Batch(
		waitForPlayback(svc.Player.Updates()),
		waitForVoices(svc.Engine.VoicesChanged()),
		takeShare(svc.Inbox),
		watchShares(m.share),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, m.quit()
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Ctrl+C always quits no matter where in the application you are.
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		return m.handleKey(msg)

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.add.setSize(msg.Width, msg.Height)
		m.preview.setSize(msg.Width, msg.Height)
		m.list.clampCursor()
		if m.state == statePreview {
			cmds = append(cmds, renderPreview(*m.common, m.preview.article, m.preview.viewport.Width))
		}

	case errMsg:
		m.fatalErr = msg.err

	case spinner.TickMsg:
		if m.fetching > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case articleAddedMsg:
		m.fetching = max(0, m.fetching-1)
		if msg.err != nil {
			log.Warn("Could not add article", "error", msg.err)
			cmds = append(cmds, m.showError(addErrorMessage(msg.err)))
			break
		}
		m.list.setArticles(m.common.svc.Articles.Articles())
		m.list.cursor = 0
		m.list.clampCursor()
		note := "Saved “" + msg.article.Title + "”"
		if m.common.svc.Acquirer.IsPlaceholder(msg.article.Content) {
			note = "Saved, but no readable text was found on the page"
		}
		cmds = append(cmds, m.showStatus(note))

	case playSubmittedMsg:
		if msg.err != nil {
			cmds = append(cmds, m.showError(playErrorMessage(msg.err)))
		}

	case playbackMsg:
		st := playback.Status(msg)
		m.player.update(st)
		switch {
		case st.Err != nil:
			cmds = append(cmds, m.showError(m.player.note()))
		case st.State == playback.StateIdle && st.Message != "":
			cmds = append(cmds, m.showStatus(st.Message))
		}
		cmds = append(cmds, waitForPlayback(m.common.svc.Player.Updates()))

	case voicesChangedMsg:
		m.resolveVoice()
		cmds = append(cmds, waitForVoices(m.common.svc.Engine.VoicesChanged()))

	case shareChangedMsg:
		cmds = append(cmds, takeShare(m.common.svc.Inbox), watchShares(m.share))

	case shareReceivedMsg:
		target, ok := share.ExtractURL(string(msg))
		if !ok {
			log.Info("Ignoring share without a link", "payload", string(msg))
			cmds = append(cmds, m.showError("Shared text had no link"))
			break
		}
		cmds = append(cmds, m.startFetch(target))

	case statusMessageTimeoutMsg:
		if int(msg) == m.statusSeq {
			m.statusMessage = ""
			m.statusIsError = false
		}

	case previewRenderedMsg:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.update(msg)
		return m, cmd
	}

	// Process children
	var cmd tea.Cmd
	switch m.state {
	case stateBrowse:
		m.list, cmd = m.list.update(msg)
	case stateAdd:
		m.add, cmd = m.add.update(msg)
	case statePreview:
		m.preview, cmd = m.preview.update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateAdd:
		return m.handleAddKey(msg)
	case stateConfirm:
		return m.handleConfirmKey(msg)
	case statePreview:
		return m.handlePreviewKey(msg)
	}

	if m.list.filtering {
		switch msg.String() {
		case "esc":
			m.list.stopFiltering(false)
			return m, nil
		case "enter", "tab":
			m.list.stopFiltering(true)
			return m, nil
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.update(msg)
		return m, cmd
	}

	if cmd, ok := m.handlePlayerKey(msg); ok {
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, m.quit()
	case "ctrl+z":
		return m, tea.Suspend
	case "esc":
		if m.list.filterApplied() {
			m.list.stopFiltering(false)
		}
	case "?":
		m.showHelp = !m.showHelp
	case "k", "up":
		m.list.moveCursor(-1)
	case "j", "down":
		m.list.moveCursor(1)
	case "home", "g":
		m.list.cursor = 0
		m.list.clampCursor()
	case "end", "G":
		m.list.cursor = len(m.list.visible) - 1
		m.list.clampCursor()
	case "/":
		return m, m.list.startFiltering()
	case "a":
		m.state = stateAdd
		return m, m.add.open(addURL)
	case "t":
		m.state = stateAdd
		return m, m.add.open(addText)
	case "enter":
		if a, ok := m.list.selected(); ok {
			return m, m.requestPlay(a, stateBrowse)
		}
	case "p":
		if a, ok := m.list.selected(); ok {
			m.state = statePreview
			return m, m.preview.load(a)
		}
	case "d", "delete":
		if a, ok := m.list.selected(); ok {
			return m, m.deleteArticle(a)
		}
	}
	return m, nil
}

// handlePlayerKey handles the keys shared by the list and the preview.
func (m *model) handlePlayerKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	player := m.common.svc.Player

	switch msg.String() {
	case " ":
		if err := player.Pause(); err != nil {
			return m.showError(err.Error()), true
		}
	case "s":
		player.Stop()
	case "+", "=":
		return m.changeRate(rateStep), true
	case "-", "_":
		return m.changeRate(-rateStep), true
	case "v":
		return m.nextVoice(), true
	case "L":
		return m.nextLanguage(), true
	case "T":
		return m.toggleTheme(), true
	default:
		return nil, false
	}
	return nil, true
}

func (m model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.add.close()
		m.state = stateBrowse
		return m, nil

	case "ctrl+v":
		if m.add.mode == addURL {
			if err := m.add.pasteURL(); err != nil {
				return m, m.showError(err.Error())
			}
			return m, nil
		}

	case "tab", "shift+tab":
		if m.add.mode == addText {
			return m, m.add.toggleFocus()
		}

	case "enter":
		if m.add.mode == addURL {
			target := m.add.url()
			if target == "" {
				return m, nil
			}
			m.add.close()
			m.state = stateBrowse
			return m, m.startFetch(target)
		}
		if !m.add.focusBody {
			return m, m.add.toggleFocus()
		}

	case "ctrl+s":
		if m.add.mode == addText {
			title, body := m.add.text()
			if strings.TrimSpace(body) == "" {
				return m, m.showError("Nothing to save: the text is empty")
			}
			m.add.close()
			m.state = stateBrowse
			return m, saveText(m.common.svc, title, body)
		}
	}

	var cmd tea.Cmd
	m.add, cmd = m.add.update(msg)
	return m, cmd
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.pending
	switch msg.String() {
	case "y", "Y":
		m.state = p.from
		m.pending = pendingPlay{}
		return m, playArticle(m.common.svc.Player, p.id, true)
	case "n", "N", "esc", "q":
		m.state = p.from
		m.pending = pendingPlay{}
		return m, m.showStatus("Playback cancelled")
	}
	return m, nil
}

func (m model) handlePreviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "p":
		m.preview.unload()
		m.state = stateBrowse
		return m, nil
	case "enter":
		return m, m.requestPlay(m.preview.article, statePreview)
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}

	if cmd, ok := m.handlePlayerKey(msg); ok {
		return m, cmd
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.update(msg)
	return m, cmd
}

// requestPlay starts playback, asking first when the article will be cut.
func (m *model) requestPlay(a article.Article, from state) tea.Cmd {
	player := m.common.svc.Player
	if n, needed := player.NeedsConfirmation(a.ID); needed {
		m.pending = pendingPlay{
			id:     a.ID,
			title:  a.Title,
			length: n,
			limit:  player.Config().MaxChars,
			from:   from,
		}
		m.state = stateConfirm
		return nil
	}
	return playArticle(player, a.ID, false)
}

func (m *model) startFetch(target string) tea.Cmd {
	m.fetching++
	return tea.Batch(
		m.showStatus("Fetching "+target),
		m.spinner.Tick,
		fetchArticle(m.common.svc, target),
	)
}

func (m *model) deleteArticle(a article.Article) tea.Cmd {
	svc := m.common.svc
	if m.player.playing(a.ID) {
		svc.Player.Stop()
	}

	removed, err := svc.Articles.RemoveByID(a.ID)
	if err != nil {
		log.Error("Could not delete article", "id", a.ID, "error", err)
		return m.showError("Could not delete: " + err.Error())
	}
	if !removed {
		return nil
	}
	m.list.setArticles(svc.Articles.Articles())
	return m.showStatus("Deleted “" + a.Title + "”")
}

func (m *model) changeRate(delta float64) tea.Cmd {
	svc := m.common.svc
	rate := svc.Player.Config().Rate + delta
	rate = math.Round(rate*10) / 10
	rate = math.Max(prefs.MinRate, math.Min(prefs.MaxRate, rate))

	svc.Player.SetRate(rate)
	if err := svc.Prefs.SetRate(rate); err != nil {
		log.Warn("Could not save speech rate", "error", err)
	}
	return m.showStatus("Rate " + rateLabel(rate) + " (applies to the next playback)")
}

func (m *model) nextVoice() tea.Cmd {
	svc := m.common.svc
	lang := svc.Player.Config().Language
	voices := speech.FilterVoices(svc.Engine.Voices(), lang)
	if len(voices) == 0 {
		return m.showError("No voices available for " + lang)
	}

	i, _ := svc.Prefs.VoiceIndex()
	i = (i + 1) % len(voices)
	if err := svc.Prefs.SetVoiceIndex(i); err != nil {
		log.Warn("Could not save voice", "error", err)
	}
	svc.Player.SetVoice(voices[i].ID)
	return m.showStatus(fmt.Sprintf("Voice %s (%d/%d)", voices[i].Name, i+1, len(voices)))
}

func (m *model) nextLanguage() tea.Cmd {
	svc := m.common.svc
	langs := m.common.cfg.Languages
	i := slices.Index(langs, svc.Player.Config().Language)
	lang := langs[(i+1)%len(langs)]

	svc.Player.SetLanguage(lang)
	if err := svc.Prefs.SetLanguage(lang); err != nil {
		log.Warn("Could not save language", "error", err)
	}
	if err := svc.Prefs.SetVoiceIndex(0); err != nil {
		log.Warn("Could not save voice", "error", err)
	}
	m.resolveVoice()
	return m.showStatus("Language " + lang)
}

// resolveVoice points the player at the saved voice for its language.
func (m *model) resolveVoice() {
	svc := m.common.svc
	lang := svc.Player.Config().Language
	v, ok := svc.Prefs.Voice(svc.Engine.Voices(), lang)
	if !ok {
		svc.Player.SetVoice("")
		return
	}
	log.Debug("Selected voice", "voice", v.ID, "lang", lang)
	svc.Player.SetVoice(v.ID)
}

func (m *model) toggleTheme() tea.Cmd {
	m.common.theme = m.common.theme.Toggle()
	applyTheme(m.common.theme)
	if err := m.common.svc.Prefs.SetTheme(m.common.theme); err != nil {
		log.Warn("Could not save theme", "error", err)
	}

	cmds := []tea.Cmd{m.showStatus("Theme " + string(m.common.theme))}
	if m.state == statePreview {
		cmds = append(cmds, renderPreview(*m.common, m.preview.article, m.preview.viewport.Width))
	}
	return tea.Batch(cmds...)
}

func (m *model) showStatus(msg string) tea.Cmd {
	return m.setStatus(msg, false)
}

func (m *model) showError(msg string) tea.Cmd {
	return m.setStatus(msg, true)
}

func (m *model) setStatus(msg string, isError bool) tea.Cmd {
	m.statusSeq++
	m.statusMessage = msg
	m.statusIsError = isError
	seq := m.statusSeq
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg(seq)
	})
}

func (m model) quit() tea.Cmd {
	m.common.svc.Player.Stop()
	m.share.close()
	return tea.Quit
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	var body string
	switch m.state {
	case stateAdd:
		body = m.add.view()
	case stateConfirm:
		body = m.confirmView()
	case statePreview:
		body = m.preview.view()
	default:
		body = m.list.view(m.player)
	}

	var b strings.Builder
	b.WriteString(body)

	// Push the status bar to the bottom
	used := strings.Count(body, "\n")
	help := ""
	if m.showHelp {
		help = m.helpView()
		used += strings.Count(help, "\n") + 1
	}
	if pad := m.common.height - used - statusBarHeight; pad > 0 {
		b.WriteString(strings.Repeat("\n", pad))
	}
	m.statusBarView(&b)
	if help != "" {
		b.WriteString("\n" + help)
	}
	return b.String()
}

func (m model) confirmView() string {
	p := m.pending
	s := fmt.Sprintf("%s\n\n“%s” is %d characters long.\nOnly the first %d can be read aloud.\n\n%s",
		titleStyle("Read a shortened version?"),
		p.title, p.length, p.limit,
		promptStyle("y")+subtleStyle(" read the first part • ")+promptStyle("n")+subtleStyle(" cancel"),
	)
	return "\n" + indent(s, 2)
}

// COMMANDS

func waitForPlayback(ch <-chan playback.Status) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return playbackMsg(st)
	}
}

func waitForVoices(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return voicesChangedMsg{}
	}
}

func fetchArticle(svc Services, target string) tea.Cmd {
	return func() tea.Msg {
		a, err := svc.Acquirer.FetchArticle(context.Background(), target)
		if err != nil {
			return articleAddedMsg{err: err}
		}
		if err := svc.Articles.InsertFront(a); err != nil {
			return articleAddedMsg{err: fmt.Errorf("unable to save article: %w", err)}
		}
		return articleAddedMsg{article: a}
	}
}

func saveText(svc Services, title, body string) tea.Cmd {
	return func() tea.Msg {
		a := svc.Acquirer.CreateFromText(title, body)
		if err := svc.Articles.InsertFront(a); err != nil {
			return articleAddedMsg{err: fmt.Errorf("unable to save article: %w", err)}
		}
		return articleAddedMsg{article: a}
	}
}

func playArticle(player *playback.Controller, id string, acceptTruncation bool) tea.Cmd {
	return func() tea.Msg {
		confirm := func(int, int) bool { return acceptTruncation }
		return playSubmittedMsg{err: player.Play(id, confirm)}
	}
}

// ETC

func addErrorMessage(err error) string {
	var aerr *acquire.Error
	if errors.As(err, &aerr) {
		switch aerr.Kind {
		case acquire.KindInvalidURL:
			return "That doesn't look like a web address"
		case acquire.KindStatus:
			return fmt.Sprintf("The page could not be fetched (HTTP %d)", aerr.Status)
		case acquire.KindNetwork:
			return "The page could not be reached"
		}
	}
	return "Could not add article: " + err.Error()
}

func playErrorMessage(err error) string {
	var perr *playback.Error
	switch {
	case errors.Is(err, playback.ErrNothingToSpeak):
		return "There is nothing to read in this article"
	case errors.Is(err, playback.ErrArticleNotFound):
		return "That article no longer exists"
	case errors.Is(err, playback.ErrTruncationDeclined):
		return "Playback cancelled"
	case errors.As(err, &perr):
		return perr.UserMessage()
	default:
		return err.Error()
	}
}
