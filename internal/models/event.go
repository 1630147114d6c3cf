package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Event is an event record as held by the remote record store.
// Field names on the wire follow the store's "events" collection schema.
type Event struct {
	ID             string     `json:"id"`
	CollectionID   string     `json:"collectionId"`
	CollectionName string     `json:"collectionName,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Images         []string   `json:"image"` // File names, resolved through the files endpoint
	FromDate       DateTime   `json:"from_date"`
	ToDate         DateTime   `json:"to_date"`
	Place          string     `json:"place"`
	Owner          string     `json:"owner"`
	Location       Coordinate `json:"location"`
	Members        []string   `json:"users"` // Roster of interested user ids
	IsPrivate      bool       `json:"isPrivate"`
	Group          *Group     `json:"group"`
	Created        DateTime   `json:"created"`
	Updated        DateTime   `json:"updated"`
}

// HasMember reports whether userID is on the event's roster.
func (e *Event) HasMember(userID string) bool {
	if userID == "" {
		return false
	}
	return slices.Contains(e.Members, userID)
}

// Coordinate is a single geographic point. It travels as a two-element
// [lat, lon] JSON array.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate lies within WGS84 bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// MarshalJSON encodes the coordinate as [lat, lon].
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lon})
}

// UnmarshalJSON accepts [lat, lon] or null.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("invalid coordinate: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("invalid coordinate: expected 2 values, got %d", len(pair))
	}
	c.Lat, c.Lon = pair[0], pair[1]
	return nil
}

// storeTimeLayout is the timestamp format the record store emits.
const storeTimeLayout = "2006-01-02 15:04:05.000Z07:00"

// DateTime is a nullable timestamp. The zero value encodes as an empty string,
// which is how the record store represents an unset date field.
type DateTime struct {
	time.Time
}

// NewDateTime wraps t.
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

// Ptr returns nil for an unset timestamp.
func (d DateTime) Ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// MarshalJSON encodes the timestamp in the store's layout.
func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.UTC().Format(storeTimeLayout))
}

// UnmarshalJSON accepts the store's layout, RFC 3339, an empty string or null.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{storeTimeLayout, "2006-01-02 15:04:05Z07:00", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}
