package library

import (
	"context"
	"sync"
)

// fakeStore serves LocalTracks from a map and counts lookups.
type fakeStore struct {
	mu      sync.Mutex
	tracks  map[int64]LocalTrack
	lookups int
}

func (s *fakeStore) TrackByID(ctx context.Context, id int64) (LocalTrack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	track, ok := s.tracks[id]
	if !ok {
		return LocalTrack{}, ErrNotFound
	}
	return track, nil
}

func (s *fakeStore) PublicURL(bucket, objectPath string) string {
	return "https://storage.example.com/object/public/" + bucket + "/" + objectPath
}

type fakeServer struct {
	mu      sync.Mutex
	tracks  map[string]SubsonicTrack
	lookups int
}

func (s *fakeServer) TrackByID(ctx context.Context, id string) (SubsonicTrack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	track, ok := s.tracks[id]
	if !ok {
		return SubsonicTrack{}, ErrNotFound
	}
	return track, nil
}

func (s *fakeServer) Scrobble(ctx context.Context, id string) error {
	return nil
}

type fakeStreaming struct {
	mu      sync.Mutex
	linked  bool
	tracks  map[string]SpotifyTrack
	lookups int
}

func (s *fakeStreaming) Linked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linked
}

func (s *fakeStreaming) TrackByID(ctx context.Context, id string) (SpotifyTrack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	track, ok := s.tracks[id]
	if !ok {
		return SpotifyTrack{}, ErrNotFound
	}
	return track, nil
}
