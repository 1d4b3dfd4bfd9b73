package player

import (
	"context"
	"time"

	"muzik/src/util"
)

// EndOfTrackEvent is emitted by an audio engine when the loaded track
// finishes playing on its own, as opposed to being skipped or stopped.
type EndOfTrackEvent struct{}

// An AudioEngine binds a playable URL to an actual playback mechanism. At
// most one engine holds a loaded track at any time; the player fully stops
// the previous engine before or immediately after binding the next so that
// audio never overlaps.
type AudioEngine interface {
	util.Eventer

	// Load binds the engine to a new media URL, replacing whatever was
	// loaded before. duration may be zero when the source does not report
	// one up front.
	Load(ctx context.Context, mediaURL string, duration time.Duration) error

	Play(ctx context.Context) error
	Pause(ctx context.Context) error

	Seek(ctx context.Context, pos time.Duration) error

	// Stop unloads the track and releases all resources held by the engine.
	Stop(ctx context.Context) error

	Position(ctx context.Context) (time.Duration, error)

	// NaturalEnd reports that the loaded track finished playing on its own,
	// for engines whose playback runs outside this process. The engine emits
	// EndOfTrackEvent if the report is for the track currently playing.
	NaturalEnd()
}

// transport keeps wall-clock playback position for engines that do not own
// the audio pipeline in-process. Position advances while playing and a
// natural end is fired from the known duration. onEnd runs outside the lock.
type transport struct {
	duration time.Duration
	playing  bool
	base     time.Duration // position at the last play/pause/seek boundary
	since    time.Time     // wall clock at the last resume
	endTimer *time.Timer
	onEnd    func()
}

func (t *transport) load(duration time.Duration) {
	t.stopTimer()
	t.duration = duration
	t.playing = false
	t.base = 0
}

func (t *transport) play() {
	if t.playing {
		return
	}
	t.playing = true
	t.since = time.Now()
	t.armTimer()
}

func (t *transport) pause() {
	if !t.playing {
		return
	}
	t.base += time.Since(t.since)
	t.playing = false
	t.stopTimer()
}

func (t *transport) seek(pos time.Duration) {
	t.base = pos
	t.since = time.Now()
	if t.playing {
		t.armTimer()
	}
}

func (t *transport) stop() {
	t.stopTimer()
	t.playing = false
	t.base = 0
	t.duration = 0
}

func (t *transport) position() time.Duration {
	if t.playing {
		return t.base + time.Since(t.since)
	}
	return t.base
}

// end marks the track as finished. Returns false if nothing was playing, so
// duplicate end reports collapse into one.
func (t *transport) end() bool {
	if !t.playing {
		return false
	}
	t.stopTimer()
	t.playing = false
	t.base = t.duration
	return true
}

func (t *transport) armTimer() {
	t.stopTimer()
	if t.duration <= 0 {
		// Unknown duration; the natural end must be reported externally.
		return
	}
	remaining := t.duration - t.position()
	if remaining < 0 {
		remaining = 0
	}
	t.endTimer = time.AfterFunc(remaining, t.onEnd)
}

func (t *transport) stopTimer() {
	if t.endTimer != nil {
		t.endTimer.Stop()
		t.endTimer = nil
	}
}
