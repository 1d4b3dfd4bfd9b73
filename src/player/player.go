package player

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"muzik/src/library"
	"muzik/src/util"
)

// PlayState describes what the playback session is doing.
type PlayState string

const (
	// PlayStateIdle means no track is bound to an engine.
	PlayStateIdle PlayState = "idle"
	// PlayStateLoading means the active id is being resolved.
	PlayStateLoading PlayState = "loading"
	PlayStatePlaying PlayState = "playing"
	PlayStatePaused  PlayState = "paused"
)

// Events emitted by the player.
type (
	// QueueEvent signals that the queue contents, order or modes changed.
	QueueEvent struct{}
	// TrackEvent carries the resolved active track. Track is nil while
	// loading or when resolution failed.
	TrackEvent struct{ Track library.Track }
	StateEvent struct{ State PlayState }
	TimeEvent  struct{ Time time.Duration }
	// VolumeEvent carries the uniform volume in the range [0, 1].
	VolumeEvent struct{ Volume float32 }
)

// Resolver locates the track record behind a queue id. Implemented by
// library.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, queueID string) (library.Track, error)
}

// Locator derives media URLs from resolved tracks. Implemented by
// library.Locator.
type Locator interface {
	AudioURL(track library.Track) (string, error)
	ArtURL(track library.Track) (string, bool)
}

// Player is the playback session over the queue. It resolves the active id,
// binds the audio engine matching the track's source and advances the queue
// when tracks naturally end.
//
// Resolution is asynchronous. Every change of the active track bumps a
// generation counter; a resolution that completes under a stale generation
// is discarded so that it can never bind audio for a track that is no longer
// active.
type Player struct {
	util.Emitter

	queue    *Queue
	resolver Resolver
	locator  Locator
	native   AudioEngine
	spotify  AudioEngine
	server   library.Server // scrobble target, may be nil

	mu         sync.Mutex
	generation uint64
	state      PlayState
	track      library.Track
	engine     AudioEngine
	volume     float32
}

// New creates a player. The spotify engine and server may be nil when those
// sources are not configured.
func New(queue *Queue, resolver Resolver, locator Locator, native, spotify AudioEngine, server library.Server) *Player {
	pl := &Player{
		queue:    queue,
		resolver: resolver,
		locator:  locator,
		native:   native,
		spotify:  spotify,
		server:   server,
		state:    PlayStateIdle,
		volume:   1,
	}
	// Subscribe before returning so that no engine event emitted after New
	// can be missed.
	go pl.watchEngine(native, native.Events().Listen())
	if spotify != nil {
		go pl.watchEngine(spotify, spotify.Events().Listen())
	}
	return pl
}

func (pl *Player) watchEngine(engine AudioEngine, events <-chan interface{}) {
	for event := range events {
		if _, ok := event.(EndOfTrackEvent); ok {
			pl.onNaturalEnd(engine)
		}
	}
}

// Queue exposes the queue for display and direct inspection.
func (pl *Player) Queue() *Queue { return pl.queue }

// PlayTrackAmong seeds the queue with the listening context the track was
// selected from and starts playback of the selected id.
func (pl *Player) PlayTrackAmong(ctx context.Context, id string, ids []string) {
	pl.queue.Seed(ids)
	pl.queue.SetActive(id)
	pl.Emit(QueueEvent{})
	pl.loadActive(ctx)
}

// TogglePlayPause flips between playing and paused. A no-op while no track
// is bound.
func (pl *Player) TogglePlayPause(ctx context.Context) error {
	pl.mu.Lock()
	engine, state := pl.engine, pl.state
	pl.mu.Unlock()
	if engine == nil {
		return nil
	}
	switch state {
	case PlayStatePlaying:
		if err := engine.Pause(ctx); err != nil {
			return err
		}
		pl.setState(PlayStatePaused)
	case PlayStatePaused:
		if err := engine.Play(ctx); err != nil {
			return err
		}
		pl.setState(PlayStatePlaying)
	}
	return nil
}

// SkipNext manually advances the queue. At the end of the order this is a
// no-op unless repeat is set to all.
func (pl *Player) SkipNext(ctx context.Context) {
	if pl.queue.Next() {
		pl.Emit(QueueEvent{})
		pl.loadActive(ctx)
	}
}

// SkipPrevious manually steps the queue back. At the start of the order this
// is a no-op unless repeat is set to all.
func (pl *Player) SkipPrevious(ctx context.Context) {
	if pl.queue.Previous() {
		pl.Emit(QueueEvent{})
		pl.loadActive(ctx)
	}
}

func (pl *Player) ToggleShuffle(ctx context.Context) bool {
	on := pl.queue.ToggleShuffle()
	pl.Emit(QueueEvent{})
	return on
}

func (pl *Player) CycleRepeat(ctx context.Context) RepeatMode {
	mode := pl.queue.CycleRepeat()
	pl.Emit(QueueEvent{})
	return mode
}

// AddToQueue appends ids to the end of the queue.
func (pl *Player) AddToQueue(ctx context.Context, ids ...string) {
	pl.queue.Append(ids...)
	pl.Emit(QueueEvent{})
}

// PlayNext inserts ids directly after the active track.
func (pl *Player) PlayNext(ctx context.Context, ids ...string) {
	pl.queue.InsertAfterActive(ids...)
	pl.Emit(QueueEvent{})
}

// RemoveFromQueue removes an id from the queue. If the removed id is the
// active one, playback of it continues; the id merely dangles until the next
// navigation.
func (pl *Player) RemoveFromQueue(ctx context.Context, id string) {
	pl.queue.Remove(id)
	pl.Emit(QueueEvent{})
}

// Seek moves the playback position of the bound track.
func (pl *Player) Seek(ctx context.Context, pos time.Duration) error {
	pl.mu.Lock()
	engine := pl.engine
	pl.mu.Unlock()
	if engine == nil {
		return nil
	}
	if err := engine.Seek(ctx, pos); err != nil {
		return err
	}
	pl.Emit(TimeEvent{Time: pos})
	return nil
}

// SetVolume sets the uniform volume, clamped to [0, 1].
func (pl *Player) SetVolume(ctx context.Context, vol float32) {
	if vol < 0 {
		vol = 0
	} else if vol > 1 {
		vol = 1
	}
	pl.mu.Lock()
	pl.volume = vol
	pl.mu.Unlock()
	pl.Emit(VolumeEvent{Volume: vol})
}

// NaturalEnd is the web client's report that the given track finished on its
// own. Reports for ids that are no longer active are dropped.
func (pl *Player) NaturalEnd(ctx context.Context, id string) {
	if id != "" && id != pl.queue.ActiveID() {
		return
	}
	pl.mu.Lock()
	engine := pl.engine
	pl.mu.Unlock()
	if engine != nil {
		engine.NaturalEnd()
	}
}

// Status is the read-only snapshot shown by UIs.
type Status struct {
	TrackID  string
	Track    library.Track
	State    PlayState
	Time     time.Duration
	Duration time.Duration
	Shuffle  bool
	Repeat   RepeatMode
	Volume   float32
}

func (pl *Player) Status(ctx context.Context) Status {
	pl.mu.Lock()
	engine := pl.engine
	status := Status{
		TrackID: pl.queue.ActiveID(),
		Track:   pl.track,
		State:   pl.state,
		Volume:  pl.volume,
	}
	pl.mu.Unlock()
	status.Shuffle = pl.queue.Shuffle()
	status.Repeat = pl.queue.Repeat()
	if status.Track != nil {
		status.Duration = library.Duration(status.Track)
	}
	if engine != nil {
		if pos, err := engine.Position(ctx); err == nil {
			status.Time = pos
		}
	}
	return status
}

func (pl *Player) setState(state PlayState) {
	pl.mu.Lock()
	changed := pl.state != state
	pl.state = state
	pl.mu.Unlock()
	if changed {
		pl.Emit(StateEvent{State: state})
	}
}

func (pl *Player) engineFor(track library.Track) AudioEngine {
	switch track.(type) {
	case library.SpotifyTrack:
		if pl.spotify != nil {
			return pl.spotify
		}
	}
	return pl.native
}

// loadActive tears down the current engine binding and asynchronously
// resolves and binds the queue's active id.
func (pl *Player) loadActive(ctx context.Context) {
	pl.mu.Lock()
	pl.generation++
	gen := pl.generation
	engine := pl.engine
	pl.engine = nil
	pl.track = nil
	pl.mu.Unlock()

	if engine != nil {
		if err := engine.Stop(ctx); err != nil {
			log.Warnf("Could not stop engine: %v", err)
		}
	}

	id := pl.queue.ActiveID()
	if id == "" {
		pl.setState(PlayStateIdle)
		pl.Emit(TrackEvent{})
		return
	}
	pl.setState(PlayStateLoading)
	pl.Emit(TrackEvent{})

	go func() {
		// Resolution outlives the HTTP request that triggered it; the
		// transports carry their own timeouts.
		ctx := context.Background()

		track, err := pl.resolver.Resolve(ctx, id)
		var mediaURL string
		if err == nil {
			mediaURL, err = pl.locator.AudioURL(track)
		}

		pl.mu.Lock()
		if gen != pl.generation {
			// The active track changed while this resolution was in
			// flight. Discard the result.
			pl.mu.Unlock()
			return
		}
		if err != nil {
			pl.mu.Unlock()
			log.WithField("id", id).Warnf("Could not resolve track: %v", err)
			pl.setState(PlayStateIdle)
			return
		}
		engine := pl.engineFor(track)
		pl.track = track
		pl.engine = engine
		pl.mu.Unlock()

		pl.Emit(TrackEvent{Track: track})
		if err := engine.Load(ctx, mediaURL, library.Duration(track)); err != nil {
			log.WithField("id", id).Errorf("Could not load media: %v", err)
			pl.setState(PlayStateIdle)
			return
		}
		if err := engine.Play(ctx); err != nil {
			log.WithField("id", id).Errorf("Could not start playback: %v", err)
			pl.setState(PlayStateIdle)
			return
		}

		pl.mu.Lock()
		stale := gen != pl.generation
		pl.mu.Unlock()
		if stale {
			engine.Stop(ctx)
			return
		}
		pl.Emit(TimeEvent{})
		pl.setState(PlayStatePlaying)
	}()
}

func (pl *Player) onNaturalEnd(engine AudioEngine) {
	ctx := context.Background()

	pl.mu.Lock()
	if engine != pl.engine || pl.state != PlayStatePlaying {
		pl.mu.Unlock()
		return
	}
	track := pl.track
	pl.mu.Unlock()

	// A completed play counts towards the media server's history regardless
	// of what plays next. Failures are swallowed, not retried.
	if t, ok := track.(library.SubsonicTrack); ok && pl.server != nil {
		go func() {
			if err := pl.server.Scrobble(ctx, t.ID); err != nil {
				log.WithField("id", t.ID).Debugf("Scrobble failed: %v", err)
			}
		}()
	}

	if pl.queue.Repeat() == RepeatOne {
		if err := engine.Seek(ctx, 0); err != nil {
			log.Warnf("Could not rewind track: %v", err)
		}
		if err := engine.Play(ctx); err != nil {
			log.Warnf("Could not replay track: %v", err)
			pl.setState(PlayStateIdle)
			return
		}
		pl.Emit(TimeEvent{})
		pl.setState(PlayStatePlaying)
		return
	}

	if pl.queue.Next() {
		pl.Emit(QueueEvent{})
		pl.loadActive(ctx)
		return
	}

	// Out of tracks.
	if err := engine.Stop(ctx); err != nil {
		log.Warnf("Could not stop engine: %v", err)
	}
	pl.mu.Lock()
	pl.engine = nil
	pl.mu.Unlock()
	pl.setState(PlayStateIdle)
	pl.Emit(TimeEvent{})
}
