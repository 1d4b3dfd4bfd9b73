package library

import (
	"errors"
	"testing"
)

func TestLocatorAudioURL(t *testing.T) {
	store, _, _ := testBackends()
	locator := NewLocator(store, "https://muzik.example.com")

	t.Run("local tracks play from object storage", func(t *testing.T) {
		url, err := locator.AudioURL(LocalTrack{ID: 7, SongPath: "deo.mp3"})
		if err != nil {
			t.Fatal(err)
		}
		expected := "https://storage.example.com/object/public/songs/deo.mp3"
		if url != expected {
			t.Errorf("audio url is %q, expected %q", url, expected)
		}
	})
	t.Run("media server tracks play through the stream proxy", func(t *testing.T) {
		url, err := locator.AudioURL(SubsonicTrack{ID: "6f 3d"})
		if err != nil {
			t.Fatal(err)
		}
		expected := "https://muzik.example.com/data/subsonic/stream?id=6f+3d"
		if url != expected {
			t.Errorf("audio url is %q, expected %q", url, expected)
		}
	})
	t.Run("streaming tracks are addressed by their playable uri", func(t *testing.T) {
		url, err := locator.AudioURL(SpotifyTrack{ID: "4uLU6hMC", URI: "spotify:track:4uLU6hMC"})
		if err != nil {
			t.Fatal(err)
		}
		if url != "spotify:track:4uLU6hMC" {
			t.Errorf("audio url is %q, expected the spotify uri", url)
		}
	})
	t.Run("streaming track without a uri", func(t *testing.T) {
		if _, err := locator.AudioURL(SpotifyTrack{ID: "4uLU6hMC"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, expected ErrNotFound", err)
		}
	})
	t.Run("local track without a store", func(t *testing.T) {
		bare := NewLocator(nil, "")
		if _, err := bare.AudioURL(LocalTrack{ID: 7, SongPath: "deo.mp3"}); !errors.Is(err, ErrUnavailable) {
			t.Errorf("got %v, expected ErrUnavailable", err)
		}
	})
}

func TestLocatorArtURL(t *testing.T) {
	store, _, _ := testBackends()
	locator := NewLocator(store, "")

	for _, tt := range []struct {
		name  string
		track Track
		url   string
		ok    bool
	}{
		{"local with image", LocalTrack{ImagePath: "deo.jpg"}, "https://storage.example.com/object/public/images/deo.jpg", true},
		{"local without image", LocalTrack{}, "", false},
		{"subsonic with cover", SubsonicTrack{CoverArt: "al-300"}, "/data/subsonic/cover?id=al-300", true},
		{"subsonic without cover", SubsonicTrack{}, "", false},
		{"spotify with cover", SpotifyTrack{CoverURL: "https://i.scdn.co/image/ab67"}, "https://i.scdn.co/image/ab67", true},
		{"spotify without cover", SpotifyTrack{}, "", false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			url, ok := locator.ArtURL(tt.track)
			if ok != tt.ok || url != tt.url {
				t.Errorf("ArtURL = (%q, %v), expected (%q, %v)", url, ok, tt.url, tt.ok)
			}
		})
	}
}
