// Package calendar publishes events to external calendars.
package calendar

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"eventplanner/internal/models"
)

const productID = "-//eventplanner//EN"

var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://eventplanner/events"))

// Directory maps user ids to profiles. It supplies the e-mail addresses for
// ORGANIZER and ATTENDEE properties; users missing from it are left out.
type Directory map[string]models.User

// UID returns the calendar UID of an event. The same event id always yields
// the same UID, so republishing overwrites instead of duplicating.
func UID(eventID string) string {
	return uuid.NewSHA1(uidNamespace, []byte(eventID)).String() + "@eventplanner"
}

// ToICal converts an event to a VEVENT component.
func ToICal(ev *models.Event, people Directory) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, UID(ev.ID))
	ve.Props.SetText(ical.PropSummary, ev.Title)

	stamp := ev.Updated.Time
	if stamp.IsZero() {
		stamp = time.Now()
	}
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	if !ev.FromDate.IsZero() {
		ve.Props.SetDateTime(ical.PropDateTimeStart, ev.FromDate.Time)
	}
	if !ev.ToDate.IsZero() {
		ve.Props.SetDateTime(ical.PropDateTimeEnd, ev.ToDate.Time)
	}

	if ev.Description != "" {
		ve.Props.SetText(ical.PropDescription, ev.Description)
	}
	if ev.Place != "" {
		ve.Props.SetText(ical.PropLocation, ev.Place)
	}
	if ev.Location.Valid() {
		// GEO is a structured value; SetText would escape the separator.
		geo := ical.NewProp(ical.PropGeo)
		geo.Value = strconv.FormatFloat(ev.Location.Lat, 'f', -1, 64) + ";" +
			strconv.FormatFloat(ev.Location.Lon, 'f', -1, 64)
		ve.Props.Set(geo)
	}
	if ev.IsPrivate {
		ve.Props.SetText(ical.PropClass, "PRIVATE")
	}

	if u, ok := people[ev.Owner]; ok && u.Email != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.SetText(fmt.Sprintf("mailto:%s", u.Email))
		p.Params.Set(ical.ParamCommonName, u.DisplayName())
		ve.Props.Set(p)
	}
	for _, id := range ev.Members {
		u, ok := people[id]
		if !ok || u.Email == "" {
			continue
		}
		p := ical.NewProp(ical.PropAttendee)
		p.SetText(fmt.Sprintf("mailto:%s", u.Email))
		p.Params.Set(ical.ParamCommonName, u.DisplayName())
		ve.Props.Add(p)
	}
	return ve
}

// NewCalendar wraps events into a VCALENDAR.
func NewCalendar(people Directory, events ...*models.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	for _, ev := range events {
		cal.Children = append(cal.Children, ToICal(ev, people))
	}
	return cal
}

// Export writes events as an iCalendar stream.
func Export(w io.Writer, people Directory, events ...*models.Event) error {
	if err := ical.NewEncoder(w).Encode(NewCalendar(people, events...)); err != nil {
		return fmt.Errorf("failed to encode events to iCal format: %w", err)
	}
	return nil
}
