package library

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/karlseguin/ccache/v3"
)

const (
	resolveCacheSize = 512
	resolveCacheTTL  = 30 * time.Second
)

// A Resolver locates the full track record behind a queue identifier by
// dispatching to the source encoded in it.
type Resolver struct {
	store     Store
	server    Server
	streaming Streaming

	cache *ccache.Cache[Track]
}

// NewResolver creates a resolver over the given collaborators. Any of them
// may be nil, in which case ids for that source resolve to ErrUnavailable.
func NewResolver(store Store, server Server, streaming Streaming) *Resolver {
	return &Resolver{
		store:     store,
		server:    server,
		streaming: streaming,
		cache:     ccache.New(ccache.Configure[Track]().MaxSize(resolveCacheSize)),
	}
}

// Resolve fetches the track identified by the queue id from its source.
//
// Successful resolutions are memoized for a short while so that queue
// redraws do not hammer the backends. Failures are never cached.
func (r *Resolver) Resolve(ctx context.Context, queueID string) (Track, error) {
	if item := r.cache.Get(queueID); item != nil && !item.Expired() {
		return item.Value(), nil
	}
	track, err := r.resolve(ctx, queueID)
	if err != nil {
		return nil, err
	}
	r.cache.Set(queueID, track, resolveCacheTTL)
	return track, nil
}

func (r *Resolver) resolve(ctx context.Context, queueID string) (Track, error) {
	source, rawID := DecodeID(queueID)
	switch source {
	case SourceLocal:
		if r.store == nil {
			return nil, ErrUnavailable
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed local id %q", ErrNotFound, rawID)
		}
		track, err := r.store.TrackByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return track, nil

	case SourceSubsonic:
		if r.server == nil {
			return nil, ErrUnavailable
		}
		track, err := r.server.TrackByID(ctx, rawID)
		if err != nil {
			return nil, err
		}
		return track, nil

	case SourceSpotify:
		if r.streaming == nil {
			return nil, ErrUnavailable
		}
		if !r.streaming.Linked() {
			return nil, ErrUnauthenticated
		}
		track, err := r.streaming.TrackByID(ctx, rawID)
		if err != nil {
			return nil, err
		}
		return track, nil
	}
	return nil, fmt.Errorf("%w: unknown source %q", ErrNotFound, source)
}
