package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"eventplanner/internal/config"
	"eventplanner/internal/eventform"
	"eventplanner/internal/pocketbase"
	"eventplanner/internal/session"
)

func main() {
	app := &cli.App{
		Name:  "eventplanner",
		Usage: "Plan events, join them and publish them to your calendars.",
		Commands: []*cli.Command{
			registerCommand(),
			loginCommand(),
			logoutCommand(),
			eventsCommand(),
			groupsCommand(),
			calendarCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// appEnv is what every command needs: settings, a logger, the stored session
// and a record store client authenticated with it.
type appEnv struct {
	cfg      *config.Config
	logger   *slog.Logger
	session  *session.Session
	client   *pocketbase.Client
	location *time.Location
}

func loadEnv() (*appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := setupLogger(cfg.Log.Level)

	loc, err := time.LoadLocation(cfg.Calendar.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", cfg.Calendar.TimeZone, err)
	}

	sess, err := session.Load(cfg.Store.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.Token != "" && !sess.Valid() {
		logger.Warn("Stored session has expired, continuing anonymously", "file", cfg.Store.SessionFile)
		sess = &session.Session{}
	}

	return &appEnv{
		cfg:      cfg,
		logger:   logger,
		session:  sess,
		client:   pocketbase.NewClient(logger, cfg.Store.BaseURL, cfg.Store.Timeout, sess),
		location: loc,
	}, nil
}

// navigator stands in for the router of a graphical host.
func (e *appEnv) navigator() eventform.Navigator {
	return eventform.NavigatorFunc(func(path string) {
		e.logger.Info("Navigating", "path", path)
	})
}

// requireViewer fails when nobody is logged in.
func (e *appEnv) requireViewer() (string, error) {
	id := e.session.CurrentUserID()
	if id == "" {
		return "", fmt.Errorf("not logged in, run 'eventplanner login' first")
	}
	return id, nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
