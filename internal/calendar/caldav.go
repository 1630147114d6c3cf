package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"

	"github.com/emersion/go-webdav/caldav"

	"eventplanner/internal/models"
)

// basicAuthTransport adds Basic Auth and the client identity to each request.
type basicAuthTransport struct {
	username  string
	password  string
	transport http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	req.Header.Set("User-Agent", "eventplanner/1.0")
	return t.transport.RoundTrip(req)
}

// CalDAVConfig holds the connection settings of a CalDAV account.
type CalDAVConfig struct {
	Endpoint     string
	Username     string
	Password     string
	CalendarName string
}

// CalDAVClient publishes events into one calendar of a CalDAV server.
type CalDAVClient struct {
	client       *caldav.Client
	logger       *slog.Logger
	calendarPath string
}

// NewCalDAVClient connects to the server and looks up the configured calendar.
func NewCalDAVClient(ctx context.Context, logger *slog.Logger, cfg CalDAVConfig) (*CalDAVClient, error) {
	httpClient := &http.Client{Transport: &basicAuthTransport{
		username:  cfg.Username,
		password:  cfg.Password,
		transport: http.DefaultTransport,
	}}

	client, err := caldav.NewClient(httpClient, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	c := &CalDAVClient{client: client, logger: logger}

	logger.Info("Finding CalDAV calendar", "calendarName", cfg.CalendarName)
	calendarPath, err := c.findCalendar(ctx, cfg.CalendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", cfg.CalendarName, err)
	}
	c.calendarPath = calendarPath
	logger.Info("Found CalDAV calendar", "path", calendarPath)

	return c, nil
}

// Name identifies the target in logs.
func (c *CalDAVClient) Name() string {
	return "caldav"
}

// PublishEvent stores the event as <uid>.ics, replacing any earlier copy.
func (c *CalDAVClient) PublishEvent(ctx context.Context, ev *models.Event, people Directory) error {
	uid := UID(ev.ID)
	c.logger.Debug("Publishing event to CalDAV", "eventTitle", ev.Title, "uid", uid)

	objectPath := path.Join(c.calendarPath, uid+".ics")
	if _, err := c.client.PutCalendarObject(ctx, objectPath, NewCalendar(people, ev)); err != nil {
		return fmt.Errorf("failed to put event on CalDAV server: %w", err)
	}

	c.logger.Info("Published event to CalDAV", "eventTitle", ev.Title)
	return nil
}

// findCalendar walks principal, home set and calendar list to find the
// calendar with the given display name.
func (c *CalDAVClient) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.client.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.client.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name {
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("no calendar found with name '%s'", name)
}
