package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"eventplanner/internal/groups"
)

func groupsCommand() *cli.Command {
	return &cli.Command{
		Name:  "groups",
		Usage: "Manage the groups private events are shared with.",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List groups.",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "mine", Usage: "Only groups you own."}},
				Action: withGroups(listGroups),
			},
			{
				Name:      "show",
				Usage:     "Show a group and its members.",
				ArgsUsage: "<group-id>",
				Action:    withGroups(showGroup),
			},
			{
				Name:      "create",
				Usage:     "Create a group with you as its first member.",
				ArgsUsage: "<name>",
				Action:    withGroups(createGroup),
			},
			{
				Name:      "rename",
				Usage:     "Rename a group you own.",
				ArgsUsage: "<group-id> <name>",
				Action:    withGroups(renameGroup),
			},
			{
				Name:      "delete",
				Usage:     "Delete a group you own.",
				ArgsUsage: "<group-id>",
				Action:    withGroups(deleteGroup),
			},
		},
	}
}

func withGroups(fn func(*cli.Context, *appEnv, *groups.Service) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		env, err := loadEnv()
		if err != nil {
			return err
		}
		svc := groups.NewService(groups.ServiceConfig{Store: env.client, Identity: env.session, Logger: env.logger})
		return fn(c, env, svc)
	}
}

func listGroups(c *cli.Context, _ *appEnv, svc *groups.Service) error {
	list := svc.List
	if c.Bool("mine") {
		list = svc.Owned
	}
	all, err := list(c.Context)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMEMBERS\t")
	for _, g := range all {
		fmt.Fprintf(w, "%s\t%s\t%d\t\n", g.ID, g.Name, len(g.Members))
	}
	return w.Flush()
}

func showGroup(c *cli.Context, _ *appEnv, svc *groups.Service) error {
	g, err := svc.Get(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	members, err := svc.Members(c.Context, g)
	if err != nil {
		return err
	}

	fmt.Println(g.Name)
	for _, u := range members {
		marker := " "
		if u.ID == g.Owner {
			marker = "*"
		}
		fmt.Printf("%s %s (%s)\n", marker, u.DisplayName(), u.ID)
	}
	return nil
}

func createGroup(c *cli.Context, env *appEnv, svc *groups.Service) error {
	g, err := svc.Create(c.Context, strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return err
	}
	env.logger.Info("Created group", "id", g.ID, "name", g.Name)
	fmt.Println(g.ID)
	return nil
}

func renameGroup(c *cli.Context, env *appEnv, svc *groups.Service) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: groups rename <group-id> <name>")
	}
	g, err := svc.Rename(c.Context, c.Args().First(), strings.Join(c.Args().Tail(), " "))
	if err != nil {
		return err
	}
	env.logger.Info("Renamed group", "id", g.ID, "name", g.Name)
	return nil
}

func deleteGroup(c *cli.Context, env *appEnv, svc *groups.Service) error {
	id := c.Args().First()
	if err := svc.Delete(c.Context, id); err != nil {
		return err
	}
	env.logger.Info("Deleted group", "id", id)
	return nil
}
