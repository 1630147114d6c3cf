package eventform

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"eventplanner/internal/models"
)

// Mode says whether the form creates a new event or edits an existing one.
type Mode interface {
	isMode()
}

// Create is the mode of a form for a new event.
type Create struct{}

// Edit is the mode of a form for the existing event EventID.
type Edit struct {
	EventID string
}

func (Create) isMode() {}
func (Edit) isMode()   {}

// State is the submission state of a form.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EventWriter persists events.
type EventWriter interface {
	CreateEvent(ctx context.Context, form *models.Form) (*models.Event, error)
	UpdateEvent(ctx context.Context, id string, form *models.Form) (*models.Event, error)
	ClearEventImages(ctx context.Context, id string) error
	DeleteEvent(ctx context.Context, id string) error
}

// ControllerConfig holds the controller's collaborators.
type ControllerConfig struct {
	Draft     *DraftStore
	Writer    EventWriter
	Navigator Navigator
	Mode      Mode
	Logger    *slog.Logger
}

// SubmissionController sends a draft to the record store.
type SubmissionController struct {
	mu     sync.Mutex
	store  *DraftStore
	writer EventWriter
	nav    Navigator
	mode   Mode
	state  State
	logger *slog.Logger
}

// NewSubmissionController creates a controller in the Idle state. A nil mode
// means Create.
func NewSubmissionController(cfg ControllerConfig) *SubmissionController {
	mode := cfg.Mode
	if mode == nil {
		mode = Create{}
	}
	c := &SubmissionController{
		store:  cfg.Draft,
		writer: cfg.Writer,
		nav:    cfg.Navigator,
		mode:   mode,
		state:  StateIdle,
		logger: cfg.Logger,
	}
	cfg.Draft.OnChange(func(ValidationErrors) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state != StateSubmitting {
			c.state = StateValidating
		}
	})
	return c
}

// State returns the current submission state.
func (c *SubmissionController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mode returns the form mode.
func (c *SubmissionController) Mode() Mode {
	return c.mode
}

// Submit validates the draft and, if valid, saves it: one create call in
// Create mode; in Edit mode an update clearing the images followed by an
// update with the full payload. On success it navigates to the event list.
//
// An invalid draft yields *InvalidDraftError without any request. A failed
// request leaves the draft untouched so the user can retry.
//
// The writes are not cancelled with ctx. If ctx is done by the time they
// return, the save still counts but no navigation happens.
func (c *SubmissionController) Submit(ctx context.Context) (*models.Event, error) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	errs := c.store.Revalidate()
	if !errs.Valid() {
		c.state = StateInvalid
		c.mu.Unlock()
		return nil, &InvalidDraftError{Errors: errs}
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	form := c.store.ToPayload()
	writeCtx := context.WithoutCancel(ctx)

	var (
		ev  *models.Event
		err error
	)
	switch m := c.mode.(type) {
	case Edit:
		if err = c.writer.ClearEventImages(writeCtx, m.EventID); err == nil {
			ev, err = c.writer.UpdateEvent(writeCtx, m.EventID, form)
		}
	default:
		ev, err = c.writer.CreateEvent(writeCtx, form)
	}
	if err != nil {
		c.setState(StateFailed)
		c.logger.Error("Failed to save event", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	c.setState(StateSucceeded)
	c.navigateUnlessGone(ctx)
	return ev, nil
}

// Delete removes the edited event and navigates to the event list. It is
// only available in Edit mode. On failure the user stays on the form.
func (c *SubmissionController) Delete(ctx context.Context) error {
	m, ok := c.mode.(Edit)
	if !ok {
		return ErrNotEditing
	}
	if err := c.writer.DeleteEvent(context.WithoutCancel(ctx), m.EventID); err != nil {
		c.setState(StateFailed)
		c.logger.Error("Failed to delete event", "eventID", m.EventID, "error", err)
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	c.setState(StateSucceeded)
	c.navigateUnlessGone(ctx)
	return nil
}

func (c *SubmissionController) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *SubmissionController) navigateUnlessGone(ctx context.Context) {
	if ctx.Err() != nil {
		c.logger.Debug("Form closed before the request finished, not navigating")
		return
	}
	if c.nav != nil {
		c.nav.Navigate(EventListPath)
	}
}
