package eventform

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"eventplanner/internal/models"
)

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type call struct {
	op   string
	id   string
	form *models.Form
}

// fakeStore is an in-memory record store that records every write.
type fakeStore struct {
	mu       sync.Mutex
	events   map[string]*models.Event
	files    map[string][]byte
	calls    []call
	failOn   map[string]error
	onCreate func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events: map[string]*models.Event{},
		files:  map[string][]byte{},
		failOn: map[string]error{},
	}
}

func (f *fakeStore) record(op, id string, form *models.Form) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: op, id: id, form: form})
	return f.failOn[op]
}

func (f *fakeStore) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.op + ":" + c.id
	}
	return out
}

func (f *fakeStore) GetEvent(_ context.Context, id string) (*models.Event, error) {
	if err := f.record("get", id, nil); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[id]
	if !ok {
		return nil, errors.New("status 404")
	}
	c := *ev
	return &c, nil
}

func (f *fakeStore) DownloadFile(_ context.Context, collectionID, recordID, filename string) ([]byte, error) {
	if err := f.record("file", collectionID+"/"+recordID+"/"+filename, nil); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[filename]
	if !ok {
		return nil, errors.New("status 404")
	}
	return data, nil
}

func (f *fakeStore) CreateEvent(_ context.Context, form *models.Form) (*models.Event, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	if err := f.record("create", "", form); err != nil {
		return nil, err
	}
	title, _ := form.Value("title")
	return &models.Event{ID: "new1", Title: title}, nil
}

func (f *fakeStore) UpdateEvent(_ context.Context, id string, form *models.Form) (*models.Event, error) {
	if err := f.record("update", id, form); err != nil {
		return nil, err
	}
	title, _ := form.Value("title")
	return &models.Event{ID: id, Title: title}, nil
}

func (f *fakeStore) ClearEventImages(_ context.Context, id string) error {
	return f.record("clear", id, nil)
}

func (f *fakeStore) DeleteEvent(_ context.Context, id string) error {
	return f.record("delete", id, nil)
}

// recordingNavigator remembers every navigation.
type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

type staticIdentity string

func (s staticIdentity) CurrentUserID() string { return string(s) }
