package ui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/dgnsrekt/readlater/internal/share"
)

type (
	// shareReceivedMsg carries a payload taken from the share inbox.
	shareReceivedMsg string
	// shareChangedMsg means the inbox file was written.
	shareChangedMsg struct{}
)

// shareWatcher reports writes to the share inbox file.
type shareWatcher struct {
	path    string
	watcher *fsnotify.Watcher
}

func newShareWatcher(path string) *shareWatcher {
	if path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("error creating fsnotify watcher", "error", err)
		return nil
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		log.Error("error adding dir to fsnotify watcher", "dir", dir, "error", err)
		_ = w.Close()
		return nil
	}
	log.Info("fsnotify watching share inbox", "path", path)
	return &shareWatcher{path: path, watcher: w}
}

// wait blocks until the inbox file is created or written.
func (s *shareWatcher) wait() tea.Msg {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			return shareChangedMsg{}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "path", s.path, "error", err)
		}
	}
}

func (s *shareWatcher) close() {
	if s == nil {
		return
	}
	if err := s.watcher.Close(); err != nil {
		log.Debug("fsnotify close failed", "error", err)
	}
}

func watchShares(s *shareWatcher) tea.Cmd {
	if s == nil {
		return nil
	}
	return s.wait
}

// takeShare consumes the pending share, if any.
func takeShare(inbox *share.Inbox) tea.Cmd {
	if inbox == nil {
		return nil
	}
	return func() tea.Msg {
		payload, ok, err := inbox.Take()
		if err != nil {
			log.Warn("Could not read share inbox", "error", err)
			return nil
		}
		if !ok {
			return nil
		}
		return shareReceivedMsg(payload)
	}
}
