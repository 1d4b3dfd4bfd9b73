package player

import (
	"context"
	"sync"
	"time"

	"muzik/src/util"
)

// NativeEngine plays media URLs through the web client's audio element. The
// server keeps the canonical transport state: position advances by wall
// clock while playing and the natural end fires from the track duration.
// Clients mirror the state they receive over the event stream and report the
// authoritative end for tracks whose duration is not known up front.
type NativeEngine struct {
	util.Emitter

	mu  sync.Mutex
	url string
	tpt transport
}

func NewNativeEngine() *NativeEngine {
	e := &NativeEngine{}
	e.tpt.onEnd = e.NaturalEnd
	return e
}

func (e *NativeEngine) Load(ctx context.Context, mediaURL string, duration time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.url = mediaURL
	e.tpt.load(duration)
	return nil
}

// URL returns the media URL currently bound, or "" when unloaded.
func (e *NativeEngine) URL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.url
}

func (e *NativeEngine) Play(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tpt.play()
	return nil
}

func (e *NativeEngine) Pause(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tpt.pause()
	return nil
}

func (e *NativeEngine) Seek(ctx context.Context, pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tpt.seek(pos)
	return nil
}

func (e *NativeEngine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.url = ""
	e.tpt.stop()
	return nil
}

func (e *NativeEngine) Position(ctx context.Context) (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tpt.position(), nil
}

// NaturalEnd reports that the loaded track finished playing on its own.
// Called by the duration timer and by the web client. Reports while nothing
// is playing are ignored.
func (e *NativeEngine) NaturalEnd() {
	e.mu.Lock()
	ended := e.tpt.end()
	e.mu.Unlock()
	if ended {
		e.Emit(EndOfTrackEvent{})
	}
}
