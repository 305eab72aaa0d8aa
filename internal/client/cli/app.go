// Package cli is the interactive terminal frontend: a small REPL over the
// session manager and the feed, notification, and search services.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"

	"github.com/itd-social/itd-client/internal/client/config"
	"github.com/itd-social/itd-client/internal/client/services"
	"github.com/itd-social/itd-client/internal/client/session"
)

type App struct {
	config  *config.Config
	session *session.Manager
	posts   *services.PostService
	users   *services.UserService
	notifs  *services.NotificationService
	search  *services.SearchService
	poller  *services.NotificationPoller

	feed   *services.PostList
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(
	cfg *config.Config,
	sess *session.Manager,
	posts *services.PostService,
	users *services.UserService,
	notifs *services.NotificationService,
	search *services.SearchService,
	poller *services.NotificationPoller,
) *App {
	return &App{
		config:  cfg,
		session: sess,
		posts:   posts,
		users:   users,
		notifs:  notifs,
		search:  search,
		poller:  poller,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

// Run starts the badge poller and drops into the REPL. It returns when the
// user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.poller.Run(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == session.StateAuthenticated ||
		a.session.IsLoggedIn(context.Background())
}

// status renders the prompt decoration: username and unread badge.
func (a *App) status() string {
	s := ""
	if name, err := a.session.Username(context.Background()); err == nil && name != "" {
		s = "@" + name
	}
	if a.session.State() == session.StateOtpPending {
		s += " [otp]"
	}
	if n := a.poller.Count(); n > 0 {
		s += " *" + strconv.Itoa(n)
	}
	return s
}
