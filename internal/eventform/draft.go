package eventform

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"eventplanner/internal/models"
)

// Draft is the editable, not yet persisted state of an event.
type Draft struct {
	Title       string
	Description string
	Images      []models.Attachment
	WindowStart *time.Time
	WindowEnd   *time.Time
	Place       string
	OwnerID     string
	Location    models.Coordinate
	IsPrivate   bool
	Group       *models.Group
}

// NewDraft returns a blank draft for a new event owned by ownerID.
func NewDraft(ownerID string) *Draft {
	return &Draft{
		OwnerID:  ownerID,
		Location: DefaultCenter,
	}
}

// DraftFromEvent copies the content fields of an existing event. Images are
// left empty; they are downloaded separately.
func DraftFromEvent(ev *models.Event) *Draft {
	d := &Draft{
		Title:       ev.Title,
		Description: ev.Description,
		WindowStart: ev.FromDate.Ptr(),
		WindowEnd:   ev.ToDate.Ptr(),
		Place:       ev.Place,
		OwnerID:     ev.Owner,
		Location:    ev.Location,
		IsPrivate:   ev.IsPrivate,
		Group:       ev.Group,
	}
	if d.Location == (models.Coordinate{}) {
		d.Location = DefaultCenter
	}
	if d.Group != nil && d.Group.ID == "" {
		d.Group = nil
	}
	return d
}

func (d *Draft) clone() Draft {
	c := *d
	c.Images = slices.Clone(d.Images)
	if d.WindowStart != nil {
		t := *d.WindowStart
		c.WindowStart = &t
	}
	if d.WindowEnd != nil {
		t := *d.WindowEnd
		c.WindowEnd = &t
	}
	if d.Group != nil {
		g := *d.Group
		g.Members = slices.Clone(d.Group.Members)
		c.Group = &g
	}
	return c
}

// DraftStore owns one draft and keeps its validation result current. Every
// mutation re-validates and then notifies OnChange subscribers.
type DraftStore struct {
	mu        sync.Mutex
	draft     Draft
	errors    ValidationErrors
	now       func() time.Time
	listeners []func(ValidationErrors)
}

// NewDraftStore wraps d. now is the validation clock; nil means time.Now.
func NewDraftStore(d *Draft, now func() time.Time) *DraftStore {
	if now == nil {
		now = time.Now
	}
	s := &DraftStore{draft: d.clone(), now: now}
	s.errors = Validate(&s.draft, now())
	return s
}

// OnChange registers fn to run after every mutation with the fresh errors.
func (s *DraftStore) OnChange(fn func(ValidationErrors)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Draft returns a copy of the current draft.
func (s *DraftStore) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.clone()
}

// Errors returns the validation result of the last mutation.
func (s *DraftStore) Errors() ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(ValidationErrors, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// Valid reports whether the last validation passed.
func (s *DraftStore) Valid() bool {
	return s.Errors().Valid()
}

// Revalidate validates against the current clock without mutating anything.
// Time-dependent rules can flip between mutations, so submission calls this.
func (s *DraftStore) Revalidate() ValidationErrors {
	s.mu.Lock()
	s.errors = Validate(&s.draft, s.now())
	s.mu.Unlock()
	return s.Errors()
}

// Location returns the draft's coordinate.
func (s *DraftStore) Location() models.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Location
}

// mutate applies fn under the lock, re-validates and notifies subscribers
// outside of it.
func (s *DraftStore) mutate(fn func(d *Draft)) {
	s.mu.Lock()
	fn(&s.draft)
	s.errors = Validate(&s.draft, s.now())
	errs := make(ValidationErrors, len(s.errors))
	for k, v := range s.errors {
		errs[k] = v
	}
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(errs)
	}
}

func (s *DraftStore) SetTitle(title string) {
	s.mutate(func(d *Draft) { d.Title = title })
}

func (s *DraftStore) SetDescription(description string) {
	s.mutate(func(d *Draft) { d.Description = description })
}

func (s *DraftStore) SetPlace(place string) {
	s.mutate(func(d *Draft) { d.Place = place })
}

func (s *DraftStore) SetOwner(ownerID string) {
	s.mutate(func(d *Draft) { d.OwnerID = ownerID })
}

// SetWindowStart sets or, with nil, clears the start.
func (s *DraftStore) SetWindowStart(start *time.Time) {
	s.mutate(func(d *Draft) { d.WindowStart = copyTime(start) })
}

// SetWindowEnd sets or, with nil, clears the end.
func (s *DraftStore) SetWindowEnd(end *time.Time) {
	s.mutate(func(d *Draft) { d.WindowEnd = copyTime(end) })
}

// AddImages appends images after the ones already present. Uploads never
// replace earlier images.
func (s *DraftStore) AddImages(images ...models.Attachment) {
	s.mutate(func(d *Draft) { d.Images = append(d.Images, images...) })
}

// RemoveImage drops the image at index. Out-of-range indexes are ignored.
func (s *DraftStore) RemoveImage(index int) {
	s.mutate(func(d *Draft) {
		if index < 0 || index >= len(d.Images) {
			return
		}
		d.Images = slices.Delete(d.Images, index, index+1)
	})
}

// SetLocation replaces the single coordinate of the event.
func (s *DraftStore) SetLocation(lat, lon float64) {
	s.mutate(func(d *Draft) { d.Location = models.Coordinate{Lat: lat, Lon: lon} })
}

func (s *DraftStore) SetPrivate(private bool) {
	s.mutate(func(d *Draft) { d.IsPrivate = private })
}

// SetGroup sets or, with nil, clears the group a private event is shared with.
func (s *DraftStore) SetGroup(g *models.Group) {
	s.mutate(func(d *Draft) {
		if g == nil {
			d.Group = nil
			return
		}
		c := *g
		c.Members = slices.Clone(g.Members)
		d.Group = &c
	})
}

// SetField is the untyped setter used by form hosts. The image field appends;
// every other field is replaced. A value of the wrong type leaves the draft
// untouched.
func (s *DraftStore) SetField(field Field, value any) error {
	switch field {
	case FieldTitle, FieldDescription, FieldPlace, FieldOwner:
		v, ok := value.(string)
		if !ok {
			return fieldTypeError(field, value)
		}
		switch field {
		case FieldTitle:
			s.SetTitle(v)
		case FieldDescription:
			s.SetDescription(v)
		case FieldPlace:
			s.SetPlace(v)
		default:
			s.SetOwner(v)
		}
	case FieldImages:
		switch v := value.(type) {
		case []models.Attachment:
			s.AddImages(v...)
		case models.Attachment:
			s.AddImages(v)
		case nil:
			// An empty file picker selection adds nothing.
		default:
			return fieldTypeError(field, value)
		}
	case FieldWindowStart, FieldWindowEnd:
		t, ok := timeValue(value)
		if !ok {
			return fieldTypeError(field, value)
		}
		if field == FieldWindowStart {
			s.SetWindowStart(t)
		} else {
			s.SetWindowEnd(t)
		}
	case FieldLocation:
		c, ok := value.(models.Coordinate)
		if !ok {
			return fieldTypeError(field, value)
		}
		s.SetLocation(c.Lat, c.Lon)
	case FieldPrivate:
		b, ok := value.(bool)
		if !ok {
			return fieldTypeError(field, value)
		}
		s.SetPrivate(b)
	case FieldGroup:
		switch g := value.(type) {
		case *models.Group:
			s.SetGroup(g)
		case nil:
			s.SetGroup(nil)
		default:
			return fieldTypeError(field, value)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func fieldTypeError(field Field, value any) error {
	return fmt.Errorf("%w %s: %T", ErrFieldType, field, value)
}

func timeValue(value any) (*time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case *time.Time:
		return v, true
	case time.Time:
		return &v, true
	default:
		return nil, false
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
