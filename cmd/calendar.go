package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"

	"eventplanner/internal/calendar"
)

func calendarCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendar",
		Usage: "Publish your events to CalDAV and Google calendars.",
		Subcommands: []*cli.Command{
			calendarAuthCommand(),
			calendarPublishCommand(),
		},
	}
}

func calendarAuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorise a Google account to receive events.",
		Action: func(c *cli.Context) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			cfg := env.cfg.Calendar
			if !cfg.GoogleEnabled() {
				return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
			}
			env.logger.Info("Starting Google authentication flow")

			oauthCfg := calendar.OAuthConfig(cfg.GoogleClientID, cfg.GoogleSecret)
			authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			reader := bufio.NewReader(os.Stdin)
			authCode, err := prompt(reader, "Enter Authorization Code: ")
			if err != nil {
				return err
			}

			token, err := calendar.TokenFromWeb(c.Context, oauthCfg, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			accountName, err := prompt(reader, "Enter a name for this account (e.g., 'personal', 'work'): ")
			if err != nil {
				return err
			}
			tokenFile := calendar.TokenPath(cfg.GoogleTokenDir, accountName)

			if err := calendar.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			env.logger.Info("Saved Google token", "file", tokenFile)
			return nil
		},
	}
}

func calendarPublishCommand() *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Publish the events you own or joined that are not published yet.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Log what would be published without making changes."},
			&cli.IntFlag{Name: "watch", Value: 300, Usage: "Publish every N seconds instead of once."},
		},
		Action: func(c *cli.Context) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			viewer, err := env.requireViewer()
			if err != nil {
				return err
			}
			if c.Bool("dry-run") {
				env.logger.Info("Performing a dry run, no changes will be made")
			}

			targets, err := publishTargets(c, env)
			if err != nil {
				return err
			}
			if len(targets) == 0 && !c.Bool("dry-run") {
				return fmt.Errorf("no calendar configured, set CALDAV_ENDPOINT or GOOGLE_CLIENT_ID and run 'calendar auth'")
			}

			p, err := calendar.NewPublisher(calendar.PublisherConfig{
				Logger:    env.logger,
				Source:    env.client,
				Targets:   targets,
				StateFile: env.cfg.Calendar.StateFile,
				DryRun:    c.Bool("dry-run"),
				TimeZone:  env.location,
			})
			if err != nil {
				return fmt.Errorf("failed to create publisher: %w", err)
			}

			if !c.IsSet("watch") {
				_, err := p.Publish(c.Context, viewer)
				return err
			}

			interval := time.Duration(c.Int("watch")) * time.Second
			env.logger.Info("Starting watcher", "interval", interval)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				if _, err := p.Publish(c.Context, viewer); err != nil {
					env.logger.Error("Publish run failed", "error", err)
				}
				select {
				case <-c.Context.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
}

func publishTargets(c *cli.Context, env *appEnv) ([]calendar.Target, error) {
	cfg := env.cfg.Calendar
	var targets []calendar.Target

	if cfg.CalDAVEnabled() {
		client, err := calendar.NewCalDAVClient(c.Context, env.logger, calendar.CalDAVConfig{
			Endpoint:     cfg.CalDAVEndpoint,
			Username:     cfg.CalDAVUsername,
			Password:     cfg.CalDAVPassword,
			CalendarName: cfg.CalDAVCalendar,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create caldav client: %w", err)
		}
		targets = append(targets, client)
	}

	if cfg.GoogleEnabled() {
		accounts, err := calendar.TokenAccounts(cfg.GoogleTokenDir)
		if err != nil {
			return nil, fmt.Errorf("could not look for google accounts: %w", err)
		}
		if len(accounts) == 0 {
			env.logger.Warn("No Google accounts authorised, run 'calendar auth'")
		}
		for _, acc := range accounts {
			client, err := calendar.NewGoogleClient(c.Context, env.logger, calendar.GoogleConfig{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleSecret,
				Account:      acc,
				TokenDir:     cfg.GoogleTokenDir,
				CalendarID:   cfg.GoogleCalendarID,
				TimeZone:     env.location,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create google client for account %s: %w", acc, err)
			}
			targets = append(targets, client)
		}
	}

	env.logger.Info("Initialized calendar targets", "count", len(targets))
	return targets, nil
}
