package library

import "testing"

func TestEncodeDecodeID(t *testing.T) {
	for _, tt := range []struct {
		source  Source
		rawID   string
		queueID string
	}{
		{SourceLocal, "42", "42"},
		{SourceSubsonic, "6f3d9a", "nd:6f3d9a"},
		{SourceSpotify, "4uLU6hMCjMI75M1A2tKUQC", "spotify:4uLU6hMCjMI75M1A2tKUQC"},
	} {
		t.Run(string(tt.source), func(t *testing.T) {
			if id := EncodeID(tt.source, tt.rawID); id != tt.queueID {
				t.Errorf("EncodeID(%q, %q) = %q, expected %q", tt.source, tt.rawID, id, tt.queueID)
			}
			source, rawID := DecodeID(tt.queueID)
			if source != tt.source || rawID != tt.rawID {
				t.Errorf("DecodeID(%q) = (%q, %q), expected (%q, %q)", tt.queueID, source, rawID, tt.source, tt.rawID)
			}
		})
	}
}

func TestDecodeIDUnprefixedIsLocal(t *testing.T) {
	// Anything without a reserved prefix is assumed local, even garbage.
	for _, id := range []string{"7", "banana", ""} {
		if source, rawID := DecodeID(id); source != SourceLocal || rawID != id {
			t.Errorf("DecodeID(%q) = (%q, %q), expected (local, %q)", id, source, rawID, id)
		}
	}
}

func TestTrackQueueIDs(t *testing.T) {
	tracks := []Track{
		LocalTrack{ID: 7, Name: "Deo"},
		SubsonicTrack{ID: "6f3d9a", Name: "Kerala"},
		SpotifyTrack{ID: "4uLU6hMC", Name: "Resolution"},
	}
	expected := []string{"7", "nd:6f3d9a", "spotify:4uLU6hMC"}
	for i, track := range tracks {
		if id := track.QueueID(); id != expected[i] {
			t.Errorf("%T queue id is %q, expected %q", track, id, expected[i])
		}
		if source, _ := DecodeID(track.QueueID()); source != track.Source() {
			t.Errorf("%T queue id decodes to source %q, expected %q", track, source, track.Source())
		}
	}
}
