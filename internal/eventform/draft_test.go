package eventform

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner/internal/models"
)

func img(name string) models.Attachment {
	return models.Attachment{Filename: name, Data: []byte(name)}
}

func names(images []models.Attachment) []string {
	out := make([]string, len(images))
	for i, a := range images {
		out[i] = a.Filename
	}
	return out
}

func fixedClock() time.Time { return testNow }

// ============================================================================
// DraftStore Mutation Tests
// ============================================================================

func TestDraftStore_ImagesAreAppended(t *testing.T) {
	t.Parallel()
	s := NewDraftStore(NewDraft("u1"), fixedClock)

	require.NoError(t, s.SetField(FieldImages, []models.Attachment{img("a"), img("b")}))
	require.NoError(t, s.SetField(FieldImages, []models.Attachment{img("c")}))

	assert.Equal(t, []string{"a", "b", "c"}, names(s.Draft().Images))
}

func TestDraftStore_RemoveImage(t *testing.T) {
	t.Parallel()
	s := NewDraftStore(NewDraft("u1"), fixedClock)
	s.AddImages(img("a"), img("b"), img("c"))

	s.RemoveImage(1)
	assert.Equal(t, []string{"a", "c"}, names(s.Draft().Images))

	s.RemoveImage(5)
	s.RemoveImage(-1)
	assert.Equal(t, []string{"a", "c"}, names(s.Draft().Images))
}

func TestDraftStore_SetLocationKeepsOnlyLatest(t *testing.T) {
	t.Parallel()
	s := NewDraftStore(NewDraft("u1"), fixedClock)
	assert.Equal(t, DefaultCenter, s.Location())

	s.SetLocation(1, 2)
	s.SetLocation(3, 4)
	assert.Equal(t, models.Coordinate{Lat: 3, Lon: 4}, s.Location())
}

func TestDraftStore_RevalidatesOnEveryMutation(t *testing.T) {
	t.Parallel()
	s := NewDraftStore(NewDraft("u1"), fixedClock)

	var calls int
	var last ValidationErrors
	s.OnChange(func(errs ValidationErrors) {
		calls++
		last = errs
	})

	s.SetTitle("ab")
	assert.Equal(t, 1, calls)
	assert.NotEmpty(t, last[FieldTitle])

	s.SetTitle("abc")
	assert.Equal(t, 2, calls)
	assert.Empty(t, last[FieldTitle])
	assert.Empty(t, s.Errors()[FieldTitle])
}

func TestDraftStore_SetFieldRejectsWrongType(t *testing.T) {
	t.Parallel()
	s := NewDraftStore(NewDraft("u1"), fixedClock)

	err := s.SetField(FieldTitle, 42)
	assert.True(t, errors.Is(err, ErrFieldType))
	assert.Empty(t, s.Draft().Title)

	err = s.SetField(Field("colour"), "red")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestDraftStore_SetFieldDates(t *testing.T) {
	t.Parallel()
	s := NewDraftStore(NewDraft("u1"), fixedClock)

	require.NoError(t, s.SetField(FieldWindowStart, testNow.Add(time.Hour)))
	require.NoError(t, s.SetField(FieldWindowEnd, at(2*time.Hour)))
	d := s.Draft()
	require.NotNil(t, d.WindowStart)
	require.NotNil(t, d.WindowEnd)
	assert.Empty(t, s.Errors()[FieldWindowEnd])

	require.NoError(t, s.SetField(FieldWindowStart, nil))
	assert.Nil(t, s.Draft().WindowStart)
	assert.NotEmpty(t, s.Errors()[FieldWindowEnd])
}

func TestDraftStore_DraftIsACopy(t *testing.T) {
	t.Parallel()
	s := NewDraftStore(NewDraft("u1"), fixedClock)
	s.AddImages(img("a"))

	d := s.Draft()
	d.Images[0].Filename = "mutated"
	d.Title = "mutated"

	assert.Equal(t, "a", s.Draft().Images[0].Filename)
	assert.Empty(t, s.Draft().Title)
}

func TestDraftStore_StartValidityDependsOnClock(t *testing.T) {
	t.Parallel()
	now := testNow
	s := NewDraftStore(validDraft(), func() time.Time { return now })
	assert.True(t, s.Valid())

	now = testNow.Add(48 * time.Hour)
	assert.True(t, s.Valid(), "cached result until revalidated")
	assert.False(t, s.Revalidate().Valid())
}

// ============================================================================
// Payload Tests
// ============================================================================

func TestToPayload_WireShape(t *testing.T) {
	t.Parallel()
	d := validDraft()
	d.Images = []models.Attachment{img("a.png"), img("b.png")}
	d.Location = models.Coordinate{Lat: 50.1, Lon: 14.2}
	s := NewDraftStore(d, fixedClock)

	form := s.ToPayload()

	var order []string
	for _, p := range form.Parts() {
		order = append(order, p.Name)
	}
	assert.Equal(t, []string{
		"title", "description", "from_date", "to_date", "place", "owner",
		"image", "image", "location", "isPrivate", "group",
	}, order)

	from, _ := form.Value("from_date")
	assert.Equal(t, "2030-01-02T12:00:00.000Z", from)
	loc, _ := form.Value("location")
	assert.Equal(t, "[50.1,14.2]", loc)
	private, _ := form.Value("isPrivate")
	assert.Equal(t, "false", private)
	group, _ := form.Value("group")
	assert.Equal(t, "null", group)
	assert.Equal(t, []string{"a.png", "b.png"}, names(form.Files("image")))
}

func TestToPayload_OmitsUnsetDates(t *testing.T) {
	t.Parallel()
	s := NewDraftStore(NewDraft(""), fixedClock)

	form := s.ToPayload()
	_, hasFrom := form.Value("from_date")
	_, hasTo := form.Value("to_date")
	_, hasOwner := form.Value("owner")
	assert.False(t, hasFrom)
	assert.False(t, hasTo)
	assert.False(t, hasOwner)
}

func TestToPayload_PrivateGroupIsJSON(t *testing.T) {
	t.Parallel()
	s := NewDraftStore(validDraft(), fixedClock)
	s.SetPrivate(true)
	s.SetGroup(&models.Group{ID: "g1", Name: "Friends", Owner: "u1", Members: []string{"u1", "u2"}})

	form := s.ToPayload()
	private, _ := form.Value("isPrivate")
	assert.Equal(t, "true", private)

	raw, _ := form.Value("group")
	var g models.Group
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	assert.Equal(t, "g1", g.ID)
	assert.Equal(t, []string{"u1", "u2"}, g.Members)
}

func TestToPayload_ConvertsLocalTimesToUTC(t *testing.T) {
	t.Parallel()
	prague := time.FixedZone("CET", 3600)
	start := time.Date(2030, 6, 1, 20, 30, 0, 0, prague)
	s := NewDraftStore(NewDraft("u1"), fixedClock)
	s.SetWindowStart(&start)

	from, _ := s.ToPayload().Value("from_date")
	assert.Equal(t, "2030-06-01T19:30:00.000Z", from)
}
