package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/readlater/internal/article"
	"github.com/dgnsrekt/readlater/internal/playback"
)

const listTitleWidth = 60

var (
	addText  bool
	addTitle string
	listJSON bool
	truncOK  bool

	addCmd = &cobra.Command{
		Use:   "add [URL | TEXT]",
		Short: "Save an article from a URL or from text",
		Long: paragraph(fmt.Sprintf("\n%s an article. With --text the argument, or stdin when there is none, is saved as the body.",
			keyword("Save"))),
		Example: paragraph("readlater add https://example.com/post\necho 'Some notes' | readlater add --text --title Notes"),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				if addText {
					body, err := textBody(cmd.InOrStdin(), args)
					if err != nil {
						return err
					}
					return saveText(a, cmd.OutOrStdout(), addTitle, body)
				}
				if len(args) == 0 {
					return errors.New("a URL is required")
				}
				return saveURL(cmd.Context(), a, cmd.OutOrStdout(), args[0])
			})
		},
	}

	listCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved articles, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(a *app) error {
				return listArticles(a, cmd.OutOrStdout(), listJSON)
			})
		},
	}

	rmCmd = &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a saved article",
		Long:    paragraph("\nDelete a saved article by its ID or an unambiguous ID prefix."),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				return removeArticle(a, cmd.OutOrStdout(), args[0])
			})
		},
	}

	speakCmd = &cobra.Command{
		Use:   "speak ID",
		Short: "Read a saved article aloud",
		Long: paragraph(fmt.Sprintf("\n%s a saved article and wait for it to finish. Articles longer than speech.max_chars need --truncate.",
			keyword("Read aloud"))),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(func(a *app) error {
				return speakArticle(ctx, a, cmd.OutOrStdout(), args[0], truncOK)
			})
		},
	}

	shareCmd = &cobra.Command{
		Use:   "share PAYLOAD",
		Short: "Hand a shared link to a running readlater",
		Long: paragraph("\nStore a shared payload. The first URL in it is fetched by the TUI, " +
			"right away when one is running or on the next start."),
		Example: paragraph("readlater share \"Look at this https://example.com/post\""),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				return queueShare(a, cmd.OutOrStdout(), strings.Join(args, " "))
			})
		},
	}
)

func init() {
	addCmd.Flags().BoolVar(&addText, "text", false, "save text instead of fetching a URL")
	addCmd.Flags().StringVar(&addTitle, "title", "", "title for text articles")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print articles as JSON")
	speakCmd.Flags().BoolVar(&truncOK, "truncate", false, "read only the first speech.max_chars characters of long articles")
}

func textBody(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("unable to read stdin: %w", err)
	}
	return string(b), nil
}

func saveText(a *app, w io.Writer, title, body string) error {
	if strings.TrimSpace(body) == "" {
		return errors.New("nothing to save: the text is empty")
	}
	art := a.acq.CreateFromText(title, body)
	if err := a.repo.InsertFront(art); err != nil {
		return fmt.Errorf("unable to save article: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Saved %s (%s)\n", art.Title, art.ID)
	return nil
}

func saveURL(ctx context.Context, a *app, w io.Writer, url string) error {
	art, err := a.acq.FetchArticle(ctx, url)
	if err != nil {
		return err
	}
	if err := a.repo.InsertFront(art); err != nil {
		return fmt.Errorf("unable to save article: %w", err)
	}
	if a.acq.IsPlaceholder(art.Content) {
		log.Warn("No readable text found", "url", url)
	}
	_, _ = fmt.Fprintf(w, "Saved %s (%s)\n", art.Title, art.ID)
	return nil
}

func listArticles(a *app, w io.Writer, asJSON bool) error {
	articles := a.repo.Articles()

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if articles == nil {
			articles = []article.Article{}
		}
		return enc.Encode(articles)
	}

	if len(articles) == 0 {
		_, _ = fmt.Fprintln(w, "No articles saved.")
		return nil
	}
	for _, art := range articles {
		title := truncate.StringWithTail(art.Title, listTitleWidth, "…")
		_, _ = fmt.Fprintf(w, "%s  %-14s  %s  %s\n",
			art.ID, humanize.Time(art.SavedDate), title, art.Source())
	}
	return nil
}

// resolveID finds the article whose ID is id or starts with it.
func resolveID(a *app, id string) (article.Article, error) {
	if art, ok := a.repo.Get(id); ok {
		return art, nil
	}

	var found []article.Article
	for _, art := range a.repo.Articles() {
		if strings.HasPrefix(art.ID, id) {
			found = append(found, art)
		}
	}
	switch len(found) {
	case 0:
		return article.Article{}, fmt.Errorf("no article with id %q", id)
	case 1:
		return found[0], nil
	default:
		return article.Article{}, fmt.Errorf("id %q matches %d articles", id, len(found))
	}
}

func removeArticle(a *app, w io.Writer, id string) error {
	art, err := resolveID(a, id)
	if err != nil {
		return err
	}
	if _, err := a.repo.RemoveByID(art.ID); err != nil {
		return fmt.Errorf("unable to delete article: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Deleted %s\n", art.Title)
	return nil
}

func queueShare(a *app, w io.Writer, payload string) error {
	if err := a.inbox.Put(payload); err != nil {
		return fmt.Errorf("unable to store share: %w", err)
	}
	_, _ = fmt.Fprintln(w, "Shared.")
	return nil
}

func speakArticle(ctx context.Context, a *app, w io.Writer, id string, allowTruncate bool) error {
	art, err := resolveID(a, id)
	if err != nil {
		return err
	}

	player, engine, err := a.newPlayer()
	if err != nil {
		return err
	}
	a.awaitVoices(ctx, player, engine)
	a.loadDictionary(ctx, player)

	confirm := func(length, limit int) bool {
		if allowTruncate {
			log.Info("Reading the beginning of a long article", "length", length, "limit", limit)
		}
		return allowTruncate
	}
	if err := player.Play(art.ID, confirm); err != nil {
		if errors.Is(err, playback.ErrTruncationDeclined) {
			return fmt.Errorf("%s is too long to read in full: rerun with --truncate", art.Title)
		}
		return err
	}
	_, _ = fmt.Fprintf(w, "Reading %s\n", art.Title)

	return waitForPlayback(ctx, player)
}

// waitForPlayback blocks until the session ends or ctx is done.
func waitForPlayback(ctx context.Context, player *playback.Controller) error {
	for {
		select {
		case <-ctx.Done():
			player.Stop()
			return nil
		case st := <-player.Updates():
			log.Debug("Playback", "state", st.State, "message", st.Message)
			switch st.State {
			case playback.StateIdle:
				if st.Err != nil {
					return st.Err
				}
				return nil
			case playback.StateError:
				var perr *playback.Error
				if errors.As(st.Err, &perr) {
					return errors.New(perr.UserMessage())
				}
				if st.Err == nil {
					return errors.New(st.Message)
				}
				return st.Err
			}
		}
	}
}
