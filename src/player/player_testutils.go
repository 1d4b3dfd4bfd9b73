package player

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"muzik/src/library"
	"muzik/src/util"
)

// fakeEngine implements AudioEngine without any real playback. Loads are
// pushed onto a channel so tests can await the asynchronous bind.
type fakeEngine struct {
	util.Emitter

	loads chan string

	mu      sync.Mutex
	url     string
	playing bool
	pos     time.Duration
	stops   int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{loads: make(chan string, 16)}
}

func (e *fakeEngine) Load(ctx context.Context, mediaURL string, duration time.Duration) error {
	e.mu.Lock()
	e.url = mediaURL
	e.playing = false
	e.pos = 0
	e.mu.Unlock()
	e.loads <- mediaURL
	return nil
}

func (e *fakeEngine) Play(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = true
	return nil
}

func (e *fakeEngine) Pause(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	return nil
}

func (e *fakeEngine) Seek(ctx context.Context, pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pos = pos
	return nil
}

func (e *fakeEngine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.url = ""
	e.playing = false
	e.pos = 0
	e.stops++
	return nil
}

func (e *fakeEngine) Position(ctx context.Context) (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos, nil
}

func (e *fakeEngine) NaturalEnd() {
	e.mu.Lock()
	ended := e.playing
	e.playing = false
	e.mu.Unlock()
	if ended {
		e.Emit(EndOfTrackEvent{})
	}
}

func (e *fakeEngine) awaitLoad(t *testing.T) string {
	t.Helper()
	select {
	case url := <-e.loads:
		return url
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for a track to load")
		return ""
	}
}

func (e *fakeEngine) assertNoLoad(t *testing.T) {
	t.Helper()
	select {
	case url := <-e.loads:
		t.Fatalf("unexpected load of %q", url)
	case <-time.After(100 * time.Millisecond):
	}
}

// stubResolver resolves queue ids from a fixed map. Resolution of an id
// listed in gates blocks until its channel is closed, which lets tests park
// an in-flight resolution.
type stubResolver struct {
	tracks map[string]library.Track
	gates  map[string]chan struct{}
}

func (r *stubResolver) Resolve(ctx context.Context, queueID string) (library.Track, error) {
	if gate, ok := r.gates[queueID]; ok {
		<-gate
	}
	track, ok := r.tracks[queueID]
	if !ok {
		return nil, fmt.Errorf("resolve %q: %w", queueID, library.ErrNotFound)
	}
	return track, nil
}

// stubLocator derives a synthetic URL from the queue id.
type stubLocator struct{}

func (stubLocator) AudioURL(track library.Track) (string, error) {
	return "stub://" + track.QueueID(), nil
}

func (stubLocator) ArtURL(track library.Track) (string, bool) {
	return "", false
}

// scrobbleRecorder implements library.Server and records scrobbled ids.
type scrobbleRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (s *scrobbleRecorder) TrackByID(ctx context.Context, id string) (library.SubsonicTrack, error) {
	return library.SubsonicTrack{}, library.ErrNotFound
}

func (s *scrobbleRecorder) Scrobble(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	return nil
}

func (s *scrobbleRecorder) scrobbled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.ids...)
}

// pollUntil retries cond for up to a second.
func pollUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting until %s", msg)
}
