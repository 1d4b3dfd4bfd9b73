package library

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when an id does not exist at its source.
	ErrNotFound = errors.New("track not found")

	// ErrUnavailable is returned when a source backend is not configured or
	// can not be reached.
	ErrUnavailable = errors.New("source unavailable")

	// ErrUnauthenticated is returned for the streaming source when no linked
	// account session is present.
	ErrUnauthenticated = errors.New("streaming account not linked")
)

// Store is the local relational song store.
type Store interface {
	TrackByID(ctx context.Context, id int64) (LocalTrack, error)

	// PublicURL derives the public URL of an object in the named storage
	// bucket. No network round trip is involved.
	PublicURL(bucket, objectPath string) string
}

// Server is the self-hosted media server.
type Server interface {
	TrackByID(ctx context.Context, id string) (SubsonicTrack, error)

	// Scrobble records a completed play with the server. Best effort,
	// callers are expected to ignore failures.
	Scrobble(ctx context.Context, id string) error
}

// Streaming is the managed streaming service. All calls require a linked
// user session.
type Streaming interface {
	Linked() bool
	TrackByID(ctx context.Context, id string) (SpotifyTrack, error)
}
