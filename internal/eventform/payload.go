package eventform

import (
	"encoding/json"
	"strconv"
	"time"

	"eventplanner/internal/models"
)

// isoLayout matches what browsers send for Date.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// ToPayload renders the draft as the multipart form the record store accepts
// for creating and updating events.
func (s *DraftStore) ToPayload() *models.Form {
	d := s.Draft()
	return d.payload()
}

func (d *Draft) payload() *models.Form {
	form := &models.Form{}
	form.Add(string(FieldTitle), d.Title)
	form.Add(string(FieldDescription), d.Description)
	if d.WindowStart != nil {
		form.Add(string(FieldWindowStart), formatISO(*d.WindowStart))
	}
	if d.WindowEnd != nil {
		form.Add(string(FieldWindowEnd), formatISO(*d.WindowEnd))
	}
	form.Add(string(FieldPlace), d.Place)
	if d.OwnerID != "" {
		form.Add(string(FieldOwner), d.OwnerID)
	}
	for _, img := range d.Images {
		form.AddFile(string(FieldImages), img)
	}
	location, _ := json.Marshal(d.Location)
	form.Add(string(FieldLocation), string(location))
	form.Add(string(FieldPrivate), strconv.FormatBool(d.IsPrivate))
	group, _ := json.Marshal(d.Group)
	form.Add(string(FieldGroup), string(group))
	return form
}

func formatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}
