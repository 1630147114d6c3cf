package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_UnmarshalStoreRecord(t *testing.T) {
	t.Parallel()

	raw := `{
		"id": "ev1",
		"collectionId": "col1",
		"title": "Concert",
		"image": ["a.png", "b.png"],
		"from_date": "2030-05-01 18:00:00.000Z",
		"to_date": "",
		"owner": "u1",
		"location": [50.6594, 14.0416],
		"users": ["u2", "u3"],
		"isPrivate": true,
		"group": {"id": "g1", "name": "Friends", "owner": "u1", "users": ["u1"]}
	}`

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))

	assert.Equal(t, []string{"a.png", "b.png"}, ev.Images)
	assert.Equal(t, time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC), ev.FromDate.UTC())
	assert.True(t, ev.ToDate.IsZero())
	assert.Nil(t, ev.ToDate.Ptr())
	assert.Equal(t, Coordinate{Lat: 50.6594, Lon: 14.0416}, ev.Location)
	assert.True(t, ev.HasMember("u2"))
	assert.False(t, ev.HasMember("u1"))
	assert.False(t, ev.HasMember(""))
	require.NotNil(t, ev.Group)
	assert.Equal(t, "Friends", ev.Group.Name)
}

func TestDateTime_AcceptsRFC3339(t *testing.T) {
	t.Parallel()

	var d DateTime
	require.NoError(t, json.Unmarshal([]byte(`"2030-05-01T18:00:00Z"`), &d))
	assert.Equal(t, 2030, d.Year())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"tomorrow"`), &d))
}

func TestCoordinate_RejectsWrongArity(t *testing.T) {
	t.Parallel()

	var c Coordinate
	assert.Error(t, json.Unmarshal([]byte(`[1, 2, 3]`), &c))

	out, err := json.Marshal(Coordinate{Lat: 1.5, Lon: -2})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, -2]`, string(out))
}

func TestForm_KeepsPartOrder(t *testing.T) {
	t.Parallel()

	var f Form
	f.Add("title", "Concert")
	f.AddFile("image", Attachment{Filename: "a.png", Data: []byte("a")})
	f.AddFile("image", Attachment{Filename: "b.png", Data: []byte("b")})
	f.Add("place", "Prague")

	parts := f.Parts()
	require.Len(t, parts, 4)
	assert.Equal(t, "title", parts[0].Name)
	assert.Equal(t, "place", parts[3].Name)

	files := f.Files("image")
	require.Len(t, files, 2)
	assert.Equal(t, "b.png", files[1].Filename)

	v, ok := f.Value("place")
	assert.True(t, ok)
	assert.Equal(t, "Prague", v)
	assert.Empty(t, f.Values("image"))
}

func TestGroup_AcceptsObjectOrID(t *testing.T) {
	t.Parallel()
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"id":"e1","group":"g7"}`), &ev))
	require.NotNil(t, ev.Group)
	assert.Equal(t, "g7", ev.Group.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"e2","group":{"id":"g8","name":"Friends","users":["u1"]}}`), &ev))
	assert.Equal(t, "Friends", ev.Group.Name)
	assert.True(t, ev.Group.HasMember("u1"))
}
