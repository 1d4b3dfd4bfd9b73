package player

import (
	"context"
	"sync"
	"time"

	"muzik/src/util"
)

// SpotifyCommander issues transport commands to the streaming service's own
// playback stack. Implemented by the spotify client.
type SpotifyCommander interface {
	PlayURIs(ctx context.Context, uris ...string) error
	PausePlayback(ctx context.Context) error
	SeekPlayback(ctx context.Context, pos time.Duration) error
}

// SpotifyEngine delegates playback to the streaming service. The audio
// pipeline never runs in this process; the engine only sends commands and
// mirrors the transport state it expects them to produce.
type SpotifyEngine struct {
	util.Emitter

	commander SpotifyCommander

	mu      sync.Mutex
	uri     string
	started bool
	tpt     transport
}

func NewSpotifyEngine(commander SpotifyCommander) *SpotifyEngine {
	e := &SpotifyEngine{commander: commander}
	e.tpt.onEnd = e.NaturalEnd
	return e
}

func (e *SpotifyEngine) Load(ctx context.Context, mediaURL string, duration time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.uri = mediaURL
	e.started = false
	e.tpt.load(duration)
	return nil
}

func (e *SpotifyEngine) Play(ctx context.Context) error {
	e.mu.Lock()
	uri := e.uri
	started := e.started
	e.mu.Unlock()

	var err error
	if !started {
		// First play starts the URI, subsequent plays resume.
		err = e.commander.PlayURIs(ctx, uri)
	} else {
		err = e.commander.PlayURIs(ctx)
	}
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = true
	e.tpt.play()
	return nil
}

func (e *SpotifyEngine) Pause(ctx context.Context) error {
	if err := e.commander.PausePlayback(ctx); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tpt.pause()
	return nil
}

func (e *SpotifyEngine) Seek(ctx context.Context, pos time.Duration) error {
	if err := e.commander.SeekPlayback(ctx, pos); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tpt.seek(pos)
	return nil
}

func (e *SpotifyEngine) Stop(ctx context.Context) error {
	e.mu.Lock()
	wasPlaying := e.tpt.playing
	e.uri = ""
	e.started = false
	e.tpt.stop()
	e.mu.Unlock()

	if wasPlaying {
		// Halt the remote playback as well. Ignore failures, the remote
		// session may already be gone.
		_ = e.commander.PausePlayback(ctx)
	}
	return nil
}

func (e *SpotifyEngine) Position(ctx context.Context) (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tpt.position(), nil
}

// NaturalEnd reports that the remote playback finished the loaded URI.
func (e *SpotifyEngine) NaturalEnd() {
	e.mu.Lock()
	ended := e.tpt.end()
	e.mu.Unlock()
	if ended {
		e.Emit(EndOfTrackEvent{})
	}
}
