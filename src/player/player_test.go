package player

import (
	"context"
	"testing"

	"muzik/src/library"
)

func testResolver() *stubResolver {
	return &stubResolver{
		tracks: map[string]library.Track{
			"1":     library.LocalTrack{ID: 1, Author: "Amon Tobin", Name: "Deo", SongPath: "1.mp3"},
			"2":     library.LocalTrack{ID: 2, Author: "Emancipator", Name: "Greenland", SongPath: "2.mp3"},
			"nd:s1": library.SubsonicTrack{ID: "s1", Artist: "Bonobo", Name: "Kerala"},
		},
		gates: map[string]chan struct{}{},
	}
}

func newTestPlayer(resolver Resolver, server library.Server) (*Player, *fakeEngine) {
	engine := newFakeEngine()
	return New(NewQueue(), resolver, stubLocator{}, engine, nil, server), engine
}

func TestPlayerPlaysSelection(t *testing.T) {
	ctx := context.Background()
	pl, engine := newTestPlayer(testResolver(), nil)

	pl.PlayTrackAmong(ctx, "1", []string{"1", "2"})
	if url := engine.awaitLoad(t); url != "stub://1" {
		t.Fatalf("loaded %q, expected stub://1", url)
	}
	pollUntil(t, func() bool {
		return pl.Status(ctx).State == PlayStatePlaying
	}, "the player is playing")

	status := pl.Status(ctx)
	if status.TrackID != "1" {
		t.Errorf("active id is %q, expected 1", status.TrackID)
	}
	if status.Track == nil || status.Track.Title() != "Deo" {
		t.Errorf("unexpected resolved track: %v", status.Track)
	}
}

func TestPlayerNaturalAdvance(t *testing.T) {
	ctx := context.Background()
	pl, engine := newTestPlayer(testResolver(), nil)

	pl.PlayTrackAmong(ctx, "1", []string{"1", "2"})
	engine.awaitLoad(t)
	pollUntil(t, func() bool {
		return pl.Status(ctx).State == PlayStatePlaying
	}, "the first track is playing")

	pl.NaturalEnd(ctx, "1")
	if url := engine.awaitLoad(t); url != "stub://2" {
		t.Fatalf("loaded %q after the natural end, expected stub://2", url)
	}
	pollUntil(t, func() bool {
		status := pl.Status(ctx)
		return status.State == PlayStatePlaying && status.TrackID == "2"
	}, "the second track is playing")

	// The queue runs out and repeat is off.
	pl.NaturalEnd(ctx, "2")
	pollUntil(t, func() bool {
		return pl.Status(ctx).State == PlayStateIdle
	}, "the player went idle")
	engine.assertNoLoad(t)
}

func TestPlayerRepeatOne(t *testing.T) {
	ctx := context.Background()
	pl, engine := newTestPlayer(testResolver(), nil)

	pl.CycleRepeat(ctx) // all
	pl.CycleRepeat(ctx) // one
	pl.PlayTrackAmong(ctx, "1", []string{"1", "2"})
	engine.awaitLoad(t)
	pollUntil(t, func() bool {
		return pl.Status(ctx).State == PlayStatePlaying
	}, "the track is playing")

	// The same binding replays from the start, nothing new is loaded.
	pl.NaturalEnd(ctx, "1")
	pollUntil(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return engine.playing
	}, "playback restarted")
	engine.assertNoLoad(t)

	status := pl.Status(ctx)
	if status.TrackID != "1" {
		t.Errorf("active id is %q, expected 1", status.TrackID)
	}
	if status.State != PlayStatePlaying {
		t.Errorf("state is %q, expected playing", status.State)
	}
}

func TestPlayerStaleResolutionDiscarded(t *testing.T) {
	ctx := context.Background()
	resolver := testResolver()
	gate := make(chan struct{})
	resolver.gates["1"] = gate
	pl, engine := newTestPlayer(resolver, nil)

	// The first selection parks in resolution, then the user skips on.
	pl.PlayTrackAmong(ctx, "1", []string{"1", "2"})
	pl.SkipNext(ctx)
	if url := engine.awaitLoad(t); url != "stub://2" {
		t.Fatalf("loaded %q, expected stub://2", url)
	}
	pollUntil(t, func() bool {
		return pl.Status(ctx).State == PlayStatePlaying
	}, "the second track is playing")

	// The first resolution completes late and must be dropped on the floor.
	close(gate)
	engine.assertNoLoad(t)

	status := pl.Status(ctx)
	if status.TrackID != "2" {
		t.Errorf("active id is %q, expected 2", status.TrackID)
	}
	if status.Track == nil || status.Track.Title() != "Greenland" {
		t.Errorf("unexpected resolved track: %v", status.Track)
	}
}

func TestPlayerScrobbleOnNaturalEnd(t *testing.T) {
	ctx := context.Background()
	server := &scrobbleRecorder{}
	pl, engine := newTestPlayer(testResolver(), server)

	pl.PlayTrackAmong(ctx, "nd:s1", []string{"nd:s1"})
	engine.awaitLoad(t)
	pollUntil(t, func() bool {
		return pl.Status(ctx).State == PlayStatePlaying
	}, "the track is playing")

	pl.NaturalEnd(ctx, "nd:s1")
	pollUntil(t, func() bool {
		ids := server.scrobbled()
		return len(ids) == 1 && ids[0] == "s1"
	}, "the play was scrobbled")
	pollUntil(t, func() bool {
		return pl.Status(ctx).State == PlayStateIdle
	}, "the player went idle")
}

func TestPlayerTogglePlayPause(t *testing.T) {
	ctx := context.Background()
	pl, engine := newTestPlayer(testResolver(), nil)

	// Toggling with nothing bound is a no-op.
	if err := pl.TogglePlayPause(ctx); err != nil {
		t.Fatal(err)
	}
	if state := pl.Status(ctx).State; state != PlayStateIdle {
		t.Fatalf("state is %q, expected idle", state)
	}

	pl.PlayTrackAmong(ctx, "1", []string{"1", "2"})
	engine.awaitLoad(t)
	pollUntil(t, func() bool {
		return pl.Status(ctx).State == PlayStatePlaying
	}, "the track is playing")

	if err := pl.TogglePlayPause(ctx); err != nil {
		t.Fatal(err)
	}
	if state := pl.Status(ctx).State; state != PlayStatePaused {
		t.Fatalf("state is %q, expected paused", state)
	}
	if err := pl.TogglePlayPause(ctx); err != nil {
		t.Fatal(err)
	}
	if state := pl.Status(ctx).State; state != PlayStatePlaying {
		t.Fatalf("state is %q, expected playing", state)
	}
}
