// Package membership keeps the "interested users" roster of a displayed event
// in step with the record store.
//
// A Card never trusts its own computation of the roster after a write: every
// toggle is followed by a re-read, and the re-read roster is what the card
// shows. Concurrent viewers therefore converge on whatever the store kept.
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"eventplanner/internal/models"
	"eventplanner/internal/session"
)

var (
	ErrNotMounted     = errors.New("card is not mounted")
	ErrNoViewer       = errors.New("log in to join events")
	ErrOwnerToggle    = errors.New("the owner cannot join or leave their own event")
	ErrToggleInFlight = errors.New("membership change already in progress")
)

// Store is the subset of the record store a card needs.
type Store interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateEventMembers(ctx context.Context, id string, members []string) (*models.Event, error)
}

// State is what a card renders.
type State struct {
	Mounted    bool
	Members    []string
	ViewerID   string
	Viewer     *models.User
	IsMember   bool
	IsOwner    bool
	Processing bool
}

// CanToggle reports whether the join/leave control is enabled.
func (s State) CanToggle() bool {
	return s.Mounted && !s.IsOwner && !s.Processing && s.ViewerID != ""
}

// Card synchronises the roster of one event for one viewer.
type Card struct {
	mu       sync.Mutex
	store    Store
	identity session.Identity
	eventID  string
	logger   *slog.Logger
	state    State
}

// NewCard creates an unmounted card for eventID.
func NewCard(logger *slog.Logger, store Store, identity session.Identity, eventID string) *Card {
	if identity == nil {
		identity = session.Anonymous
	}
	return &Card{
		store:    store,
		identity: identity,
		eventID:  eventID,
		logger:   logger.With("eventID", eventID),
	}
}

// EventID returns the id of the event the card shows.
func (c *Card) EventID() string {
	return c.eventID
}

// State returns a copy of the rendered state.
func (c *Card) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Card) snapshot() State {
	s := c.state
	s.Members = slices.Clone(c.state.Members)
	return s
}

// Mount loads the event roster and the viewer's profile. The profile is for
// display only, so failing to fetch it is logged and ignored; failing to
// fetch the event fails the mount.
func (c *Card) Mount(ctx context.Context) error {
	viewerID := c.identity.CurrentUserID()

	var (
		ev     *models.Event
		viewer *models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ev, err = c.store.GetEvent(gctx, c.eventID)
		return err
	})
	if viewerID != "" {
		g.Go(func() error {
			u, err := c.store.GetUser(gctx, viewerID)
			if err != nil {
				c.logger.Warn("Failed to fetch viewer profile", "viewer", viewerID, "error", err)
				return nil
			}
			viewer = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Error("Failed to load event roster", "error", err)
		return fmt.Errorf("failed to load event %s: %w", c.eventID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Mounted = true
	c.state.ViewerID = viewerID
	c.state.Viewer = viewer
	c.applyLocked(ev)
	return nil
}

// Toggle joins the viewer to the event, or removes them if already on the
// roster, then re-reads the event. The re-read roster becomes the state even
// when it differs from the one written. On any failure the previous state is
// kept and the toggle may be retried.
//
// Only one toggle per card runs at a time; a second call while one is in
// flight returns ErrToggleInFlight without sending anything.
func (c *Card) Toggle(ctx context.Context) (State, error) {
	c.mu.Lock()
	if !c.state.Mounted {
		c.mu.Unlock()
		return State{}, ErrNotMounted
	}
	viewerID := c.state.ViewerID
	switch {
	case viewerID == "":
		defer c.mu.Unlock()
		return c.snapshot(), ErrNoViewer
	case c.state.IsOwner:
		defer c.mu.Unlock()
		return c.snapshot(), ErrOwnerToggle
	case c.state.Processing:
		defer c.mu.Unlock()
		return c.snapshot(), ErrToggleInFlight
	}
	roster := ToggledRoster(c.state.Members, viewerID)
	c.state.Processing = true
	c.mu.Unlock()

	// Writes outlive ctx.
	if _, err := c.store.UpdateEventMembers(context.WithoutCancel(ctx), c.eventID, roster); err != nil {
		c.logger.Error("Failed to update roster", "viewer", viewerID, "error", err)
		return c.finish(nil), fmt.Errorf("failed to update roster: %w", err)
	}

	ev, err := c.store.GetEvent(ctx, c.eventID)
	if err != nil {
		c.logger.Error("Failed to re-read roster", "viewer", viewerID, "error", err)
		return c.finish(nil), fmt.Errorf("failed to re-read roster: %w", err)
	}
	c.logger.Debug("Roster synchronised", "written", len(roster), "stored", len(ev.Members))
	return c.finish(ev), nil
}

// finish clears the processing flag and, when ev is non-nil, adopts its roster.
func (c *Card) finish(ev *models.Event) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Processing = false
	if ev != nil {
		c.applyLocked(ev)
	}
	return c.snapshot()
}

func (c *Card) applyLocked(ev *models.Event) {
	viewerID := c.state.ViewerID
	c.state.Members = slices.Clone(ev.Members)
	c.state.IsMember = ev.HasMember(viewerID)
	c.state.IsOwner = viewerID != "" && ev.Owner == viewerID
}

// ToggledRoster returns members without viewerID if present, otherwise with
// viewerID prepended. members is not modified.
func ToggledRoster(members []string, viewerID string) []string {
	if slices.Contains(members, viewerID) {
		out := make([]string, 0, len(members))
		for _, m := range members {
			if m != viewerID {
				out = append(out, m)
			}
		}
		return out
	}
	return append([]string{viewerID}, members...)
}
