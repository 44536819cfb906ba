package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mushfiqur07/roadeside-sub002/internal/api"
	"github.com/Mushfiqur07/roadeside-sub002/internal/chat"
	"github.com/Mushfiqur07/roadeside-sub002/internal/config"
	"github.com/Mushfiqur07/roadeside-sub002/internal/history"
	"github.com/Mushfiqur07/roadeside-sub002/internal/lifecycle"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/internal/nav"
	"github.com/Mushfiqur07/roadeside-sub002/internal/realtime"
	"github.com/Mushfiqur07/roadeside-sub002/internal/session"
	"github.com/Mushfiqur07/roadeside-sub002/internal/ui"
	"github.com/Mushfiqur07/roadeside-sub002/pkg/logger"
)

// app holds the explicitly injected singletons; nothing reaches for
// ambient globals.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	notifier   ui.Notifier
	client     *api.Client
	session    *session.Session
	channel    *realtime.Channel
	controller *lifecycle.Controller
	views      *history.Views
	chat       *chat.Surface
	routes     *nav.Table
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stderr",
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	notifier := ui.NewLogNotifier(log)
	sess := session.New(session.NewFileStore(cfg.Session.TokenFile), log)
	client := api.NewClient(cfg.API, sess, log)
	sess.Bind(client)

	a := &app{
		cfg:        cfg,
		log:        log,
		notifier:   notifier,
		client:     client,
		session:    sess,
		channel:    realtime.NewChannel(cfg.Realtime, notifier, log),
		controller: lifecycle.NewController(client.Requests, func() *models.Principal { return sess.Current().User }, notifier, log),
		views:      history.NewViews(client.History, client.Payments, log),
		chat:       chat.NewSurface(client.Chat, log),
		routes:     nav.DefaultTable(),
	}
	return a, nil
}

// requireAuth restores the session and fails the command when no
// principal is available.
func (a *app) requireAuth(ctx context.Context) (*models.Principal, error) {
	if err := a.session.Restore(ctx); err != nil {
		return nil, err
	}
	state := a.session.Current()
	if !state.IsAuthenticated {
		return nil, fmt.Errorf("not logged in; run `roadside login` first")
	}
	return state.User, nil
}

func main() {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:   "roadside",
		Short: "Roadside assistance marketplace client",
		Long: `Terminal client for the roadside assistance marketplace:
request mechanics, track the service lifecycle, pay (simulated),
chat, and browse history.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.requestCmd(),
		a.payCmd(),
		a.verifyCmd(),
		a.historyCmd(),
		a.chatCmd(),
		a.routeCmd(),
		a.watchCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
