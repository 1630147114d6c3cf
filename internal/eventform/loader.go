package eventform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"eventplanner/internal/models"
	"eventplanner/internal/session"
)

// EventListPath is where the host lands after a save, a delete or a refused
// edit.
const EventListPath = "/app/home"

// maxParallelDownloads bounds concurrent image downloads while loading.
const maxParallelDownloads = 4

// Navigator is the host's router.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate calls f(path).
func (f NavigatorFunc) Navigate(path string) { f(path) }

// EventSource reads events and their attachments.
type EventSource interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	DownloadFile(ctx context.Context, collectionID, recordID, filename string) ([]byte, error)
}

// LoaderConfig holds the loader's collaborators.
type LoaderConfig struct {
	Source    EventSource
	Identity  session.Identity
	Navigator Navigator
	Logger    *slog.Logger
	Now       func() time.Time
}

// EventLoader fetches an event for editing and checks that the viewer owns it.
type EventLoader struct {
	source   EventSource
	identity session.Identity
	nav      Navigator
	logger   *slog.Logger
	now      func() time.Time
}

// NewEventLoader creates a loader.
func NewEventLoader(cfg LoaderConfig) *EventLoader {
	identity := cfg.Identity
	if identity == nil {
		identity = session.Anonymous
	}
	return &EventLoader{
		source:   cfg.Source,
		identity: identity,
		nav:      cfg.Navigator,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

// Load fetches the event and authorizes the viewer. Any fetch failure is
// reported as ErrNotFound; a viewer who is not the owner, or no viewer at all,
// gets ErrNotOwner.
func (l *EventLoader) Load(ctx context.Context, eventID string) (*models.Event, error) {
	if eventID == "" {
		return nil, ErrNotFound
	}
	ev, err := l.source.GetEvent(ctx, eventID)
	if err != nil {
		l.logger.Error("Failed to fetch event", "eventID", eventID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	viewer := l.identity.CurrentUserID()
	if viewer == "" || viewer != ev.Owner {
		l.logger.Warn("Refusing to edit event owned by another user", "eventID", eventID, "viewer", viewer)
		return nil, ErrNotOwner
	}
	return ev, nil
}

// LoadDraft prepares a draft for eventID. Without an id, or when the event
// cannot be fetched, it returns a blank draft in Create mode. When the viewer
// does not own the event it navigates to the event list and returns
// ErrNotOwner.
func (l *EventLoader) LoadDraft(ctx context.Context, eventID string) (*DraftStore, Mode, error) {
	ev, err := l.Load(ctx, eventID)
	switch {
	case errors.Is(err, ErrNotOwner):
		if l.nav != nil {
			l.nav.Navigate(EventListPath)
		}
		return nil, nil, err
	case errors.Is(err, ErrNotFound):
		if eventID != "" {
			l.logger.Info("Event not available, starting a new one", "eventID", eventID)
		}
		return NewDraftStore(NewDraft(l.identity.CurrentUserID()), l.now), Create{}, nil
	case err != nil:
		return nil, nil, err
	}

	draft := DraftFromEvent(ev)
	images, err := l.fetchImages(ctx, ev)
	if err != nil {
		l.logger.Error("Failed to fetch event images", "eventID", ev.ID, "error", err)
	} else {
		draft.Images = images
	}
	return NewDraftStore(draft, l.now), Edit{EventID: ev.ID}, nil
}

// fetchImages downloads every attachment of ev, keeping their order.
func (l *EventLoader) fetchImages(ctx context.Context, ev *models.Event) ([]models.Attachment, error) {
	images := make([]models.Attachment, len(ev.Images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDownloads)
	for i, name := range ev.Images {
		g.Go(func() error {
			data, err := l.source.DownloadFile(gctx, ev.CollectionID, ev.ID, name)
			if err != nil {
				return err
			}
			images[i] = models.Attachment{Filename: name, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
