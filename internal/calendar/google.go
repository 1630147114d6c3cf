package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"eventplanner/internal/models"
)

const (
	oobRedirectURL  = "urn:ietf:wg:oauth:2.0:oob"
	tokenFilePrefix = "token-"
)

// GoogleClient publishes events into a Google calendar.
type GoogleClient struct {
	service    *gcal.Service
	logger     *slog.Logger
	account    string
	calendarID string
	timeZone   *time.Location
}

// GoogleConfig holds the settings of one authorised Google account.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	Account      string
	TokenDir     string
	CalendarID   string
	TimeZone     *time.Location
}

// NewGoogleClient builds a client from the stored token of cfg.Account.
// Extra options are passed to the calendar service.
func NewGoogleClient(ctx context.Context, logger *slog.Logger, cfg GoogleConfig, opts ...option.ClientOption) (*GoogleClient, error) {
	token, err := tokenFromFile(TokenPath(cfg.TokenDir, cfg.Account))
	if err != nil {
		return nil, fmt.Errorf("could not load token for account %s: %w. Please run the 'calendar auth' command first", cfg.Account, err)
	}

	httpClient := OAuthConfig(cfg.ClientID, cfg.ClientSecret).Client(ctx, token)
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	tz := cfg.TimeZone
	if tz == nil {
		tz = time.UTC
	}
	return &GoogleClient{service: service, logger: logger, account: cfg.Account, calendarID: calendarID, timeZone: tz}, nil
}

// Name identifies the target in logs.
func (c *GoogleClient) Name() string {
	return "google-" + c.account
}

// PublishEvent imports the event keyed by its UID. Importing an event whose
// UID is already present updates it in place.
func (c *GoogleClient) PublishEvent(ctx context.Context, ev *models.Event, people Directory) error {
	c.logger.Debug("Publishing event to Google Calendar", "eventTitle", ev.Title, "calendarID", c.calendarID)

	if _, err := c.service.Events.Import(c.calendarID, c.toGoogleEvent(ev, people)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to import event: %w", err)
	}

	c.logger.Info("Published event to Google Calendar", "eventTitle", ev.Title, "calendarID", c.calendarID)
	return nil
}

func (c *GoogleClient) toGoogleEvent(ev *models.Event, people Directory) *gcal.Event {
	item := &gcal.Event{
		ICalUID:     UID(ev.ID),
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Place,
		Start:       c.dateTime(ev.FromDate),
		End:         c.dateTime(ev.ToDate),
	}
	if ev.IsPrivate {
		item.Visibility = "private"
	}
	if u, ok := people[ev.Owner]; ok && u.Email != "" {
		item.Organizer = &gcal.EventOrganizer{Email: u.Email, DisplayName: u.DisplayName()}
	}
	for _, id := range ev.Members {
		if u, ok := people[id]; ok && u.Email != "" {
			item.Attendees = append(item.Attendees, &gcal.EventAttendee{Email: u.Email, DisplayName: u.DisplayName()})
		}
	}
	return item
}

func (c *GoogleClient) dateTime(t models.DateTime) *gcal.EventDateTime {
	if t.IsZero() {
		return nil
	}
	return &gcal.EventDateTime{
		DateTime: t.In(c.timeZone).Format(time.RFC3339),
		TimeZone: c.timeZone.String(),
	}
}

// OAuthConfig returns the desktop-app OAuth2 configuration for the calendar API.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  oobRedirectURL,
		Scopes:       []string{gcal.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
}

// TokenFromWeb exchanges an authorisation code for a token.
func TokenFromWeb(ctx context.Context, config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(ctx, authCode)
}

// TokenPath returns where the token of an account is kept.
func TokenPath(dir, account string) string {
	return filepath.Join(dir, tokenFilePrefix+account+".json")
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// TokenAccounts lists the accounts that have a token file in dir.
func TokenAccounts(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var accounts []string
	for _, file := range files {
		name := file.Name()
		if strings.HasPrefix(name, tokenFilePrefix) && strings.HasSuffix(name, ".json") {
			accounts = append(accounts, strings.TrimSuffix(strings.TrimPrefix(name, tokenFilePrefix), ".json"))
		}
	}
	return accounts, nil
}
