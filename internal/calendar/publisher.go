package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"eventplanner/internal/models"
)

// PublishState records which events have been published.
// The key is the event id and the value is the calendar UID.
type PublishState map[string]string

// Target is a calendar events are published to.
type Target interface {
	Name() string
	PublishEvent(ctx context.Context, ev *models.Event, people Directory) error
}

// EventSource supplies the events and profiles to publish.
type EventSource interface {
	ListAllEvents(ctx context.Context, filter string) ([]models.Event, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// PublisherConfig holds configuration for the publisher
type PublisherConfig struct {
	Logger    *slog.Logger
	Source    EventSource
	Targets   []Target
	StateFile string
	DryRun    bool
	TimeZone  *time.Location
}

// Report summarises one publishing run.
type Report struct {
	Published int
	Skipped   int
	Failed    int
}

// Publisher pushes the viewer's events to every configured calendar.
type Publisher struct {
	logger    *slog.Logger
	source    EventSource
	targets   []Target
	stateFile string
	state     PublishState
	dryRun    bool
	timeZone  *time.Location
	people    Directory
}

// NewPublisher creates a publisher and loads its state file.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	state, err := loadState(cfg.StateFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load publish state: %w", err)
		}
		cfg.Logger.Info("No publish state file found, starting fresh", "file", cfg.StateFile)
		state = make(PublishState)
	}

	tz := cfg.TimeZone
	if tz == nil {
		tz = time.UTC
	}
	return &Publisher{
		logger:    cfg.Logger,
		source:    cfg.Source,
		targets:   cfg.Targets,
		stateFile: cfg.StateFile,
		state:     state,
		dryRun:    cfg.DryRun,
		timeZone:  tz,
		people:    make(Directory),
	}, nil
}

// Publish sends every event the viewer owns or joined that has not been
// published yet. A failing event is logged and retried on the next run.
func (p *Publisher) Publish(ctx context.Context, viewerID string) (Report, error) {
	var report Report
	if viewerID == "" {
		return report, errors.New("no logged-in user")
	}
	p.logger.Info("Starting publish run", "targets", len(p.targets), "dryRun", p.dryRun)

	events, err := p.source.ListAllEvents(ctx, "")
	if err != nil {
		return report, fmt.Errorf("failed to fetch events: %w", err)
	}

	for i := range events {
		ev := &events[i]
		if ev.Owner != viewerID && !ev.HasMember(viewerID) {
			continue
		}
		if _, done := p.state[ev.ID]; done {
			p.logger.Debug("Event already published, skipping", "title", ev.Title, "id", ev.ID)
			report.Skipped++
			continue
		}
		if err := p.publishEvent(ctx, ev); err != nil {
			p.logger.Error("Failed to publish event", "title", ev.Title, "error", err)
			report.Failed++
			continue
		}
		report.Published++
	}

	if !p.dryRun {
		if err := p.saveState(); err != nil {
			p.logger.Error("Failed to save publish state", "error", err)
		}
	}

	p.logger.Info("Publish run finished", "published", report.Published, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

// State returns a copy of the publish state.
func (p *Publisher) State() PublishState {
	out := make(PublishState, len(p.state))
	for k, v := range p.state {
		out[k] = v
	}
	return out
}

func (p *Publisher) publishEvent(ctx context.Context, ev *models.Event) error {
	ev.FromDate = models.NewDateTime(ev.FromDate.In(p.timeZone))
	ev.ToDate = models.NewDateTime(ev.ToDate.In(p.timeZone))
	uid := UID(ev.ID)

	if p.dryRun {
		p.logger.Info("[DRY RUN] Would publish event", "title", ev.Title, "startTime", ev.FromDate.Time, "uid", uid)
		return nil
	}

	people := p.directory(ctx, ev)
	var errs []error
	for _, target := range p.targets {
		if err := target.PublishEvent(ctx, ev, people); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target.Name(), err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	p.state[ev.ID] = uid
	return nil
}

// directory resolves the owner and roster of ev, caching profiles across events.
func (p *Publisher) directory(ctx context.Context, ev *models.Event) Directory {
	ids := append([]string{ev.Owner}, ev.Members...)
	for _, id := range ids {
		if _, ok := p.people[id]; ok || id == "" {
			continue
		}
		u, err := p.source.GetUser(ctx, id)
		if err != nil {
			p.logger.Warn("Could not resolve user for calendar entry", "userID", id, "error", err)
			continue
		}
		p.people[id] = *u
	}
	return p.people
}

func loadState(path string) (PublishState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var state PublishState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state == nil {
		state = make(PublishState)
	}
	return state, nil
}

func (p *Publisher) saveState() error {
	data, err := json.MarshalIndent(p.state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.stateFile, data, 0o600)
}
