// Package jukebox ties the queue, the player and the three track sources
// together behind a single facade for the web layer.
package jukebox

import (
	"context"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"muzik/src/library"
	"muzik/src/library/local"
	"muzik/src/library/spotify"
	"muzik/src/library/subsonic"
	"muzik/src/player"
	"muzik/src/util"
)

const searchLimit = 20

// TrackInfo is the flattened view of a track handed to the web layer.
type TrackInfo struct {
	QueueID  string         `json:"queueid"`
	Source   library.Source `json:"source"`
	Title    string         `json:"title"`
	Artist   string         `json:"artist"`
	Album    string         `json:"album,omitempty"`
	Duration float64        `json:"duration"` // seconds
	AudioURL string         `json:"audiourl,omitempty"`
	ArtURL   string         `json:"arturl,omitempty"`
}

// Jukebox augments the player with track resolution, search across all
// configured sources and the integration endpoints of each source.
type Jukebox struct {
	util.Emitter

	player    *player.Player
	resolver  *library.Resolver
	locator   *library.Locator
	store     *local.Store
	server    *subsonic.Client
	streaming *spotify.Client
}

// New creates the facade. store, server and streaming may each be nil when
// that source is not configured.
func New(pl *player.Player, resolver *library.Resolver, locator *library.Locator, store *local.Store, server *subsonic.Client, streaming *spotify.Client) *Jukebox {
	jb := &Jukebox{
		player:    pl,
		resolver:  resolver,
		locator:   locator,
		store:     store,
		server:    server,
		streaming: streaming,
	}
	go jb.forwardPlayerEvents()
	return jb
}

func (jb *Jukebox) forwardPlayerEvents() {
	events := jb.player.Events().Listen()
	for event := range events {
		jb.Emit(event)
	}
}

func (jb *Jukebox) Player() *player.Player { return jb.player }

// TrackByQueueID resolves a queue id into its display form.
func (jb *Jukebox) TrackByQueueID(ctx context.Context, queueID string) (TrackInfo, error) {
	track, err := jb.resolver.Resolve(ctx, queueID)
	if err != nil {
		return TrackInfo{}, err
	}
	return jb.trackInfo(track), nil
}

// QueueTracks resolves the current queue order into display forms. Ids that
// fail to resolve are included as bare stubs so that the queue view never
// silently shrinks.
func (jb *Jukebox) QueueTracks(ctx context.Context) ([]TrackInfo, error) {
	order := jb.player.Queue().Order()
	tracks := make([]TrackInfo, 0, len(order))
	for _, queueID := range order {
		track, err := jb.resolver.Resolve(ctx, queueID)
		if err != nil {
			log.WithField("id", queueID).Debugf("Could not resolve queued track: %v", err)
			source, _ := library.DecodeID(queueID)
			tracks = append(tracks, TrackInfo{QueueID: queueID, Source: source})
			continue
		}
		tracks = append(tracks, jb.trackInfo(track))
	}
	return tracks, nil
}

// Search queries every configured source and merges the results, ordered by
// title. A source failing does not fail the search.
func (jb *Jukebox) Search(ctx context.Context, query string) ([]TrackInfo, error) {
	var results []TrackInfo

	if jb.store != nil {
		tracks, err := jb.store.Search(ctx, query)
		if err != nil {
			log.Warnf("Local search failed: %v", err)
		}
		for _, track := range tracks {
			results = append(results, jb.trackInfo(track))
		}
	}
	if jb.server != nil {
		tracks, err := jb.server.Search(ctx, query, searchLimit)
		if err != nil {
			log.Warnf("Media server search failed: %v", err)
		}
		for _, track := range tracks {
			results = append(results, jb.trackInfo(track))
		}
	}
	if jb.streaming != nil && jb.streaming.Linked() {
		tracks, err := jb.streaming.Search(ctx, query, searchLimit)
		if err != nil {
			log.Warnf("Streaming search failed: %v", err)
		}
		for _, track := range tracks {
			results = append(results, jb.trackInfo(track))
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return strings.ToLower(results[i].Title) < strings.ToLower(results[j].Title)
	})
	return results, nil
}

// SubsonicConfigured reports whether a media server is wired up.
func (jb *Jukebox) SubsonicConfigured() bool { return jb.server != nil }

// SubsonicStreamURL mints a freshly authenticated upstream stream URL.
func (jb *Jukebox) SubsonicStreamURL(id string) string {
	return jb.server.StreamURL(id)
}

// SubsonicCoverURL mints a freshly authenticated upstream cover art URL.
func (jb *Jukebox) SubsonicCoverURL(id string) string {
	return jb.server.CoverArtURL(id)
}

// SubsonicScrobble records a completed play with the media server.
func (jb *Jukebox) SubsonicScrobble(ctx context.Context, id string) error {
	return jb.server.Scrobble(ctx, id)
}

// SpotifyConfigured reports whether streaming credentials are present.
func (jb *Jukebox) SpotifyConfigured() bool { return jb.streaming != nil }

func (jb *Jukebox) SpotifyLinked() bool {
	return jb.streaming != nil && jb.streaming.Linked()
}

// SpotifyAuthURL is the URL to send the user to for account linking.
func (jb *Jukebox) SpotifyAuthURL(state string) string {
	return jb.streaming.AuthURL(state)
}

// SpotifyExchange completes the account linking from the OAuth callback.
func (jb *Jukebox) SpotifyExchange(ctx context.Context, code string) error {
	return jb.streaming.Exchange(ctx, code)
}

func (jb *Jukebox) trackInfo(track library.Track) TrackInfo {
	info := TrackInfo{
		QueueID:  track.QueueID(),
		Source:   track.Source(),
		Title:    track.Title(),
		Artist:   library.Artist(track),
		Album:    library.Album(track),
		Duration: library.Duration(track).Seconds(),
	}
	if url, err := jb.locator.AudioURL(track); err == nil {
		info.AudioURL = url
	}
	if url, ok := jb.locator.ArtURL(track); ok {
		info.ArtURL = url
	}
	return info
}

// PlaybackStatus is the wire form of the player status.
type PlaybackStatus struct {
	TrackID  string     `json:"trackid"`
	Track    *TrackInfo `json:"track,omitempty"`
	State    string     `json:"state"`
	Time     float64    `json:"time"`     // seconds
	Duration float64    `json:"duration"` // seconds
	Shuffle  bool       `json:"shuffle"`
	Repeat   string     `json:"repeat"`
	Volume   float32    `json:"volume"`
}

// PlaybackStatus snapshots the player in its wire form.
func (jb *Jukebox) PlaybackStatus(ctx context.Context) PlaybackStatus {
	status := jb.player.Status(ctx)
	out := PlaybackStatus{
		TrackID:  status.TrackID,
		State:    string(status.State),
		Time:     status.Time.Seconds(),
		Duration: status.Duration.Seconds(),
		Shuffle:  status.Shuffle,
		Repeat:   string(status.Repeat),
		Volume:   status.Volume,
	}
	if status.Track != nil {
		info := jb.trackInfo(status.Track)
		out.Track = &info
	}
	return out
}
