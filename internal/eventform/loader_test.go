package eventform

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner/internal/models"
)

func ownedEvent() *models.Event {
	return &models.Event{
		ID:           "ev1",
		CollectionID: "col1",
		Title:        "Concert",
		Description:  "fun",
		Images:       []string{"a.png", "b.png", "c.png"},
		FromDate:     models.NewDateTime(testNow.Add(24 * time.Hour)),
		ToDate:       models.NewDateTime(testNow.Add(26 * time.Hour)),
		Place:        "Prague",
		Owner:        "u1",
		Location:     models.Coordinate{Lat: 50.08, Lon: 14.42},
	}
}

func newLoader(store *fakeStore, viewer string, nav Navigator) *EventLoader {
	return NewEventLoader(LoaderConfig{
		Source:    store,
		Identity:  staticIdentity(viewer),
		Navigator: nav,
		Logger:    discardLogger(),
		Now:       fixedClock,
	})
}

// ============================================================================
// Load Tests
// ============================================================================

func TestEventLoader_Load_Owner(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.events["ev1"] = ownedEvent()

	ev, err := newLoader(store, "u1", nil).Load(context.Background(), "ev1")
	require.NoError(t, err)
	assert.Equal(t, "Concert", ev.Title)
}

func TestEventLoader_Load_Errors(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.events["ev1"] = ownedEvent()

	tests := []struct {
		name    string
		viewer  string
		eventID string
		wantErr error
	}{
		{"other owner", "u2", "ev1", ErrNotOwner},
		{"anonymous", "", "ev1", ErrNotOwner},
		{"missing record", "u1", "nope", ErrNotFound},
		{"no id", "u1", "", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newLoader(store, tt.viewer, nil).Load(context.Background(), tt.eventID)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ============================================================================
// LoadDraft Tests
// ============================================================================

func TestEventLoader_LoadDraft_EditModeDownloadsImagesInOrder(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.events["ev1"] = ownedEvent()
	store.files["a.png"] = []byte("A")
	store.files["b.png"] = []byte("B")
	store.files["c.png"] = []byte("C")

	draftStore, mode, err := newLoader(store, "u1", nil).LoadDraft(context.Background(), "ev1")
	require.NoError(t, err)
	assert.Equal(t, Edit{EventID: "ev1"}, mode)

	d := draftStore.Draft()
	assert.Equal(t, "Concert", d.Title)
	assert.Equal(t, models.Coordinate{Lat: 50.08, Lon: 14.42}, d.Location)
	require.Len(t, d.Images, 3)
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, names(d.Images))
	assert.Equal(t, []byte("B"), d.Images[1].Data)
	assert.True(t, draftStore.Valid())
	assert.Contains(t, store.ops(), "file:col1/ev1/b.png")
}

func TestEventLoader_LoadDraft_ImageFailureLeavesImagesEmpty(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.events["ev1"] = ownedEvent()
	store.files["a.png"] = []byte("A")

	draftStore, mode, err := newLoader(store, "u1", nil).LoadDraft(context.Background(), "ev1")
	require.NoError(t, err)
	assert.Equal(t, Edit{EventID: "ev1"}, mode)
	assert.Empty(t, draftStore.Draft().Images)
	assert.NotEmpty(t, draftStore.Errors()[FieldImages])
}

func TestEventLoader_LoadDraft_NotOwnerRedirects(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.events["ev1"] = ownedEvent()
	nav := &recordingNavigator{}

	draftStore, mode, err := newLoader(store, "u2", nav).LoadDraft(context.Background(), "ev1")
	require.ErrorIs(t, err, ErrNotOwner)
	assert.Nil(t, draftStore)
	assert.Nil(t, mode)
	assert.Equal(t, []string{EventListPath}, nav.visited())
	for _, op := range store.ops() {
		assert.NotContains(t, op, "file:", "images of a foreign event must not be fetched")
	}
}

func TestEventLoader_LoadDraft_MissingFallsBackToCreate(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	nav := &recordingNavigator{}

	draftStore, mode, err := newLoader(store, "u1", nav).LoadDraft(context.Background(), "gone")
	require.NoError(t, err)
	assert.Equal(t, Create{}, mode)
	assert.Equal(t, "u1", draftStore.Draft().OwnerID)
	assert.Equal(t, DefaultCenter, draftStore.Location())
	assert.Empty(t, nav.visited())
}
