package library

import (
	"fmt"
	"strconv"
	"time"
)

// Source identifies the backend a track originates from.
type Source string

const (
	// SourceLocal is the relational song store with object storage media.
	SourceLocal Source = "local"
	// SourceSubsonic is the self-hosted Subsonic compatible media server.
	SourceSubsonic Source = "subsonic"
	// SourceSpotify is the managed streaming service.
	SourceSpotify Source = "spotify"
)

// A Track is a single piece of music from one of the three sources. The
// concrete type is always exactly one of LocalTrack, SubsonicTrack or
// SpotifyTrack. Consumers dispatch on the concrete type so that fields which
// exist for only one source can not leak into another.
type Track interface {
	// QueueID returns the identifier under which this track is addressed in
	// the playback queue.
	QueueID() string
	Source() Source
	Title() string
}

// LocalTrack is a row from the songs table. The audio and cover image live in
// object storage under the recorded paths.
type LocalTrack struct {
	ID        int64
	Author    string
	Name      string
	SongPath  string
	ImagePath string
}

func (t LocalTrack) QueueID() string { return EncodeID(SourceLocal, strconv.FormatInt(t.ID, 10)) }
func (t LocalTrack) Source() Source  { return SourceLocal }
func (t LocalTrack) Title() string   { return t.Name }

func (t LocalTrack) String() string {
	return fmt.Sprintf("%s - %s (local)", t.Author, t.Name)
}

// SubsonicTrack is a track served by the media server. CoverArt is the
// server-local identifier passed to getCoverArt, not a URL.
type SubsonicTrack struct {
	ID          string
	Name        string
	Artist      string
	Album       string
	CoverArt    string
	ContentType string
	Duration    time.Duration
}

func (t SubsonicTrack) QueueID() string { return EncodeID(SourceSubsonic, t.ID) }
func (t SubsonicTrack) Source() Source  { return SourceSubsonic }
func (t SubsonicTrack) Title() string   { return t.Name }

func (t SubsonicTrack) String() string {
	return fmt.Sprintf("%s - %s (%v)", t.Artist, t.Name, t.Duration)
}

// SpotifyTrack is a track from the streaming service. URI is the playable
// identifier handed to the service's own playback stack, CoverURL an external
// CDN URL.
type SpotifyTrack struct {
	ID       string
	Name     string
	Artist   string
	Album    string
	CoverURL string
	URI      string
	Duration time.Duration
}

func (t SpotifyTrack) QueueID() string { return EncodeID(SourceSpotify, t.ID) }
func (t SpotifyTrack) Source() Source  { return SourceSpotify }
func (t SpotifyTrack) Title() string   { return t.Name }

func (t SpotifyTrack) String() string {
	return fmt.Sprintf("%s - %s (%v)", t.Artist, t.Name, t.Duration)
}

// Artist returns the author/artist field of whichever variant the track is.
func Artist(track Track) string {
	switch t := track.(type) {
	case LocalTrack:
		return t.Author
	case SubsonicTrack:
		return t.Artist
	case SpotifyTrack:
		return t.Artist
	}
	return ""
}

// Album returns the album name, or "" for sources that do not record one.
func Album(track Track) string {
	switch t := track.(type) {
	case SubsonicTrack:
		return t.Album
	case SpotifyTrack:
		return t.Album
	}
	return ""
}

// Duration returns the track duration, or zero if the source does not report
// one up front.
func Duration(track Track) time.Duration {
	switch t := track.(type) {
	case LocalTrack:
		return 0
	case SubsonicTrack:
		return t.Duration
	case SpotifyTrack:
		return t.Duration
	}
	return 0
}
