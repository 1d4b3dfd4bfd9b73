package local

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"muzik/src/library"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "songs.db"), "https://storage.example.com/storage/v1")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAddAndLookup(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	added, err := store.AddTrack(ctx, library.LocalTrack{
		Author:    "Amon Tobin",
		Name:      "Deo",
		SongPath:  "deo.mp3",
		ImagePath: "deo.jpg",
	})
	if err != nil {
		t.Fatal(err)
	}
	if added.ID == 0 {
		t.Fatal("added track has no id")
	}

	track, err := store.TrackByID(ctx, added.ID)
	if err != nil {
		t.Fatal(err)
	}
	if track != added {
		t.Errorf("looked up %+v, expected %+v", track, added)
	}
}

func TestStoreTrackByIDNotFound(t *testing.T) {
	store := testStore(t)
	if _, err := store.TrackByID(context.Background(), 404); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("got %v, expected ErrNotFound", err)
	}
}

func TestStoreSearch(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	for _, track := range []library.LocalTrack{
		{Author: "Amon Tobin", Name: "Deo", SongPath: "deo.mp3"},
		{Author: "Emancipator", Name: "Greenland", SongPath: "greenland.mp3"},
		{Author: "Bonobo", Name: "Kerala", SongPath: "kerala.mp3"},
	} {
		if _, err := store.AddTrack(ctx, track); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("matches title", func(t *testing.T) {
		tracks, err := store.Search(ctx, "green")
		if err != nil {
			t.Fatal(err)
		}
		if len(tracks) != 1 || tracks[0].Name != "Greenland" {
			t.Errorf("unexpected results: %v", tracks)
		}
	})
	t.Run("matches author", func(t *testing.T) {
		tracks, err := store.Search(ctx, "bonobo")
		if err != nil {
			t.Fatal(err)
		}
		if len(tracks) != 1 || tracks[0].Name != "Kerala" {
			t.Errorf("unexpected results: %v", tracks)
		}
	})
	t.Run("like wildcards are literals", func(t *testing.T) {
		tracks, err := store.Search(ctx, "%")
		if err != nil {
			t.Fatal(err)
		}
		if len(tracks) != 0 {
			t.Errorf("a literal %% matched %d tracks", len(tracks))
		}
	})
}

func TestStoreRemoveTrack(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	added, err := store.AddTrack(ctx, library.LocalTrack{Author: "Amon Tobin", Name: "Deo", SongPath: "deo.mp3"})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.RemoveTrack(ctx, added.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.TrackByID(ctx, added.ID); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("got %v after removal, expected ErrNotFound", err)
	}
	// Removing again is fine.
	if err := store.RemoveTrack(ctx, added.ID); err != nil {
		t.Error(err)
	}
}

func TestStorePublicURL(t *testing.T) {
	store := testStore(t)
	url := store.PublicURL("songs", "deo.mp3")
	expected := "https://storage.example.com/storage/v1/object/public/songs/deo.mp3"
	if url != expected {
		t.Errorf("public url is %q, expected %q", url, expected)
	}
}
