package library

import (
	"fmt"
	"net/url"
)

// A Locator derives playable media and artwork URLs from resolved tracks.
//
// Media server URLs point at this application's own proxy endpoints rather
// than the upstream server: the upstream protocol embeds a rotating
// single-use token in the URL, and minting a fresh one per request is the
// proxy's job. The long-lived credentials never reach the client this way.
type Locator struct {
	store   Store
	urlRoot string
}

// NewLocator creates a locator. urlRoot is prepended to the proxy paths and
// may be empty for same-origin use. store may be nil when no local store is
// configured.
func NewLocator(store Store, urlRoot string) *Locator {
	return &Locator{store: store, urlRoot: urlRoot}
}

// AudioURL returns the URL under which the track's audio can be played. For
// the streaming source this is the playable URI understood by the service's
// playback stack.
func (l *Locator) AudioURL(track Track) (string, error) {
	switch t := track.(type) {
	case LocalTrack:
		if l.store == nil {
			return "", ErrUnavailable
		}
		return l.store.PublicURL("songs", t.SongPath), nil
	case SubsonicTrack:
		return l.urlRoot + "/data/subsonic/stream?id=" + url.QueryEscape(t.ID), nil
	case SpotifyTrack:
		if t.URI == "" {
			return "", fmt.Errorf("%w: track %q has no playable uri", ErrNotFound, t.ID)
		}
		return t.URI, nil
	}
	return "", fmt.Errorf("unhandled track type %T", track)
}

// ArtURL returns the URL of the track's cover image, or false if the track
// has none.
func (l *Locator) ArtURL(track Track) (string, bool) {
	switch t := track.(type) {
	case LocalTrack:
		if l.store == nil || t.ImagePath == "" {
			return "", false
		}
		return l.store.PublicURL("images", t.ImagePath), true
	case SubsonicTrack:
		if t.CoverArt == "" {
			return "", false
		}
		return l.urlRoot + "/data/subsonic/cover?id=" + url.QueryEscape(t.CoverArt), true
	case SpotifyTrack:
		if t.CoverURL == "" {
			return "", false
		}
		return t.CoverURL, true
	}
	return "", false
}
