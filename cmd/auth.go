package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"eventplanner/internal/account"
	"eventplanner/internal/session"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in with a username or e-mail and a password.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "identity", Aliases: []string{"u"}, Required: true, Usage: "Username or e-mail."},
			passwordFlag(),
		},
		Action: func(c *cli.Context) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			password, err := passwordFrom(c)
			if err != nil {
				return err
			}

			auth, err := env.client.AuthWithPassword(c.Context, c.String("identity"), password)
			if err != nil {
				return err
			}
			return saveSession(env, session.New(auth.Token, auth.Record))
		},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and log in with it.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "surname", Required: true},
			passwordFlag(),
		},
		Action: func(c *cli.Context) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			password, err := passwordFrom(c)
			if err != nil {
				return err
			}

			sess, err := account.Register(c.Context, env.client, account.Registration{
				Username: c.String("username"),
				Email:    c.String("email"),
				Password: password,
				Name:     c.String("name"),
				Surname:  c.String("surname"),
			})
			if errors.Is(err, account.ErrWeakPassword) {
				fmt.Fprintln(os.Stderr, "The password needs "+strings.Join(account.UnmetRequirements(password), ", ")+".")
			}
			if err != nil {
				return err
			}
			return saveSession(env, sess)
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored session.",
		Action: func(c *cli.Context) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			if err := session.Clear(env.cfg.Store.SessionFile); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			env.logger.Info("Logged out")
			return nil
		},
	}
}

func passwordFlag() cli.Flag {
	return &cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"EVENTS_PASSWORD"}, Usage: "Password; prompted for when omitted."}
}

func passwordFrom(c *cli.Context) (string, error) {
	if password := c.String("password"); password != "" {
		return password, nil
	}
	return prompt(bufio.NewReader(os.Stdin), "Password: ")
}

func saveSession(env *appEnv, sess *session.Session) error {
	if err := session.Save(env.cfg.Store.SessionFile, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	env.logger.Info("Logged in", "user", sess.CurrentUserID(), "file", env.cfg.Store.SessionFile)
	return nil
}

// prompt prints label and reads one trimmed line. A closed stdin is an
// error, not an empty answer.
func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
