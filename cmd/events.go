package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"eventplanner/internal/calendar"
	"eventplanner/internal/eventform"
	"eventplanner/internal/groups"
	"eventplanner/internal/membership"
	"eventplanner/internal/models"
)

var inputLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Browse, create and manage events.",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List events.",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "mine", Usage: "Only events you own or joined."}},
				Action: listEvents,
			},
			{
				Name:      "show",
				Usage:     "Show one event and its roster.",
				ArgsUsage: "<event-id>",
				Action:    showEvent,
			},
			{
				Name:   "create",
				Usage:  "Create an event.",
				Flags:  draftFlags(),
				Action: createEvent,
			},
			{
				Name:      "edit",
				Usage:     "Edit an event you own. Only the given flags change.",
				ArgsUsage: "<event-id>",
				Flags:     draftFlags(),
				Action:    editEvent,
			},
			{
				Name:      "delete",
				Usage:     "Delete an event you own.",
				ArgsUsage: "<event-id>",
				Action:    deleteEvent,
			},
			{
				Name:      "join",
				Usage:     "Join an event, or leave it if you already joined.",
				ArgsUsage: "<event-id>",
				Action:    toggleMembership,
			},
			{
				Name:      "export",
				Usage:     "Export events as iCalendar.",
				ArgsUsage: "[event-id...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write to this file instead of stdout."},
				},
				Action: exportEvents,
			},
		},
	}
}

func draftFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title"},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "place"},
		&cli.StringFlag{Name: "from", Usage: "Start, e.g. 2026-11-03 18:00 (PRIMARY_TIMEZONE) or RFC 3339."},
		&cli.StringFlag{Name: "to", Usage: "End, same formats as --from."},
		&cli.StringSliceFlag{Name: "image", Usage: "Image file; repeat for more. Replaces the current images."},
		&cli.Float64Flag{Name: "lat", Usage: "Latitude of the map pin."},
		&cli.Float64Flag{Name: "lon", Usage: "Longitude of the map pin."},
		&cli.BoolFlag{Name: "private"},
		&cli.StringFlag{Name: "group", Usage: "Id of the group a private event is shared with; empty clears it."},
	}
}

func listEvents(c *cli.Context) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	viewer := env.session.CurrentUserID()

	events, err := env.client.ListAllEvents(c.Context, "")
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPLACE\tFROM\tMEMBERS\t")
	for _, ev := range events {
		if c.Bool("mine") && ev.Owner != viewer && !ev.HasMember(viewer) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t\n", ev.ID, ev.Title, ev.Place, formatLocal(ev.FromDate, env.location), len(ev.Members))
	}
	return w.Flush()
}

func showEvent(c *cli.Context) error {
	id, err := argEventID(c)
	if err != nil {
		return err
	}
	env, err := loadEnv()
	if err != nil {
		return err
	}

	ev, err := env.client.GetEvent(c.Context, id)
	if err != nil {
		return err
	}
	card := membership.NewCard(env.logger, env.client, env.session, id)
	if err := card.Mount(c.Context); err != nil {
		return err
	}
	state := card.State()

	fmt.Printf("%s\n%s\n\n", ev.Title, ev.Description)
	fmt.Printf("Place:    %s (%.5f, %.5f)\n", ev.Place, ev.Location.Lat, ev.Location.Lon)
	fmt.Printf("When:     %s - %s\n", formatLocal(ev.FromDate, env.location), formatLocal(ev.ToDate, env.location))
	if ev.IsPrivate {
		group := "-"
		if ev.Group != nil {
			group = ev.Group.Name
		}
		fmt.Printf("Private:  shared with %s\n", group)
	}
	for _, img := range ev.Images {
		fmt.Printf("Image:    %s\n", env.client.FileURL(ev.CollectionID, ev.ID, img))
	}
	fmt.Printf("Members:  %d\n", len(state.Members))
	switch {
	case state.IsOwner:
		fmt.Println("You own this event.")
	case state.IsMember:
		fmt.Println("You joined this event.")
	case state.CanToggle():
		fmt.Println("Join with: eventplanner events join " + id)
	}
	return nil
}

func createEvent(c *cli.Context) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	if _, err := env.requireViewer(); err != nil {
		return err
	}

	loader := eventform.NewEventLoader(eventform.LoaderConfig{
		Source:    env.client,
		Identity:  env.session,
		Navigator: env.navigator(),
		Logger:    env.logger,
	})
	store, mode, err := loader.LoadDraft(c.Context, "")
	if err != nil {
		return err
	}
	return submitDraft(c, env, store, mode)
}

func editEvent(c *cli.Context) error {
	id, err := argEventID(c)
	if err != nil {
		return err
	}
	env, err := loadEnv()
	if err != nil {
		return err
	}

	loader := eventform.NewEventLoader(eventform.LoaderConfig{
		Source:    env.client,
		Identity:  env.session,
		Navigator: env.navigator(),
		Logger:    env.logger,
	})
	store, mode, err := loader.LoadDraft(c.Context, id)
	if err != nil {
		return err
	}
	if _, ok := mode.(eventform.Edit); !ok {
		return fmt.Errorf("%w: %s", eventform.ErrNotFound, id)
	}
	return submitDraft(c, env, store, mode)
}

func submitDraft(c *cli.Context, env *appEnv, store *eventform.DraftStore, mode eventform.Mode) error {
	if err := applyDraftFlags(c, env, store); err != nil {
		return err
	}

	controller := eventform.NewSubmissionController(eventform.ControllerConfig{
		Draft:     store,
		Writer:    env.client,
		Navigator: env.navigator(),
		Mode:      mode,
		Logger:    env.logger,
	})
	ev, err := controller.Submit(c.Context)
	var invalid *eventform.InvalidDraftError
	if errors.As(err, &invalid) {
		for _, msg := range invalid.Errors.Messages() {
			fmt.Fprintln(os.Stderr, msg)
		}
		return errors.New("the event was not saved")
	}
	if err != nil {
		return err
	}
	fmt.Println(ev.ID)
	return nil
}

// applyDraftFlags copies the flags the user set into the draft.
func applyDraftFlags(c *cli.Context, env *appEnv, store *eventform.DraftStore) error {
	if c.IsSet("title") {
		store.SetTitle(c.String("title"))
	}
	if c.IsSet("description") {
		store.SetDescription(c.String("description"))
	}
	if c.IsSet("place") {
		store.SetPlace(c.String("place"))
	}
	for name, set := range map[string]func(*time.Time){"from": store.SetWindowStart, "to": store.SetWindowEnd} {
		if !c.IsSet(name) {
			continue
		}
		t, err := parseLocal(c.String(name), env.location)
		if err != nil {
			return fmt.Errorf("invalid --%s: %w", name, err)
		}
		set(t)
	}
	if c.IsSet("image") {
		images, err := readImages(c.StringSlice("image"))
		if err != nil {
			return err
		}
		for len(store.Draft().Images) > 0 {
			store.RemoveImage(0)
		}
		store.AddImages(images...)
	}
	if c.IsSet("lat") || c.IsSet("lon") {
		at := store.Location()
		if c.IsSet("lat") {
			at.Lat = c.Float64("lat")
		}
		if c.IsSet("lon") {
			at.Lon = c.Float64("lon")
		}
		eventform.NewLocationPicker(env.logger, store).Attach(pinSurface{at: at})
	}
	if c.IsSet("private") {
		store.SetPrivate(c.Bool("private"))
	}
	if c.IsSet("group") {
		if c.String("group") == "" {
			store.SetGroup(nil)
		} else {
			svc := groups.NewService(groups.ServiceConfig{Store: env.client, Identity: env.session, Logger: env.logger})
			g, err := svc.Get(c.Context, c.String("group"))
			if err != nil {
				return err
			}
			store.SetGroup(g)
		}
	}
	return nil
}

// pinSurface is a map without a screen: it clicks once, where the flags say.
type pinSurface struct {
	at models.Coordinate
}

func (s pinSurface) RenderMap(_ models.Coordinate, _ int, onPointerClick func(models.Coordinate)) {
	onPointerClick(s.at)
}

func deleteEvent(c *cli.Context) error {
	id, err := argEventID(c)
	if err != nil {
		return err
	}
	env, err := loadEnv()
	if err != nil {
		return err
	}

	loader := eventform.NewEventLoader(eventform.LoaderConfig{
		Source:    env.client,
		Identity:  env.session,
		Navigator: env.navigator(),
		Logger:    env.logger,
	})
	ev, err := loader.Load(c.Context, id)
	if err != nil {
		return err
	}

	controller := eventform.NewSubmissionController(eventform.ControllerConfig{
		Draft:     eventform.NewDraftStore(eventform.DraftFromEvent(ev), nil),
		Writer:    env.client,
		Navigator: env.navigator(),
		Mode:      eventform.Edit{EventID: ev.ID},
		Logger:    env.logger,
	})
	return controller.Delete(c.Context)
}

func toggleMembership(c *cli.Context) error {
	id, err := argEventID(c)
	if err != nil {
		return err
	}
	env, err := loadEnv()
	if err != nil {
		return err
	}

	card := membership.NewCard(env.logger, env.client, env.session, id)
	if err := card.Mount(c.Context); err != nil {
		return err
	}
	state, err := card.Toggle(c.Context)
	if err != nil {
		return err
	}
	if state.IsMember {
		fmt.Printf("Joined. %d members.\n", len(state.Members))
	} else {
		fmt.Printf("Left. %d members.\n", len(state.Members))
	}
	return nil
}

func exportEvents(c *cli.Context) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	var events []*models.Event
	if c.NArg() > 0 {
		for _, id := range c.Args().Slice() {
			ev, err := env.client.GetEvent(c.Context, id)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
	} else {
		viewer, err := env.requireViewer()
		if err != nil {
			return err
		}
		all, err := env.client.ListAllEvents(c.Context, "")
		if err != nil {
			return err
		}
		for i := range all {
			if all[i].Owner == viewer || all[i].HasMember(viewer) {
				events = append(events, &all[i])
			}
		}
	}

	people := make(calendar.Directory)
	for _, ev := range events {
		for _, uid := range append([]string{ev.Owner}, ev.Members...) {
			if _, ok := people[uid]; ok {
				continue
			}
			u, err := env.client.GetUser(c.Context, uid)
			if err != nil {
				env.logger.Warn("Could not resolve user for export", "userID", uid, "error", err)
				continue
			}
			people[uid] = *u
		}
	}

	var out io.Writer = os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}
	if err := calendar.Export(out, people, events...); err != nil {
		return err
	}
	env.logger.Info("Exported events", "count", len(events))
	return nil
}

func argEventID(c *cli.Context) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", fmt.Errorf("missing event id")
	}
	return id, nil
}

func readImages(paths []string) ([]models.Attachment, error) {
	images := make([]models.Attachment, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		images = append(images, models.Attachment{Filename: filepath.Base(p), Data: data})
	}
	return images, nil
}

func parseLocal(s string, loc *time.Location) (*time.Time, error) {
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised time %q", s)
}

func formatLocal(t models.DateTime, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format("2006-01-02 15:04")
}
