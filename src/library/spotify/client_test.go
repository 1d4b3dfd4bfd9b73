package spotify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"muzik/src/library"
)

type recordedRequest struct {
	method string
	path   string
	query  url.Values
	body   string
}

func fakeAPI(t *testing.T) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			body:   strings.TrimSpace(string(body)),
		})

		switch {
		case r.URL.Path == "/tracks/4uLU6hMC":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{
				"id": "4uLU6hMC",
				"name": "Resolution",
				"uri": "spotify:track:4uLU6hMC",
				"duration_ms": 214000,
				"artists": [{"name": "Matt Corby"}, {"name": "Tash Sultana"}],
				"album": {"name": "Telluric", "images": [{"url": "https://i.scdn.co/image/ab67"}]}
			}`)
		case strings.HasPrefix(r.URL.Path, "/tracks/"):
			w.WriteHeader(http.StatusNotFound)
		case r.URL.Path == "/search":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"tracks": {"items": [{"id": "4uLU6hMC", "name": "Resolution", "uri": "spotify:track:4uLU6hMC"}]}}`)
		case strings.HasPrefix(r.URL.Path, "/me/player/"):
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

// linkedClient wires a client to the fake API, bypassing the OAuth dance.
func linkedClient(t *testing.T) (*Client, *[]recordedRequest) {
	t.Helper()
	server, requests := fakeAPI(t)
	client := NewClient("client-id", "client-secret", "http://localhost:8080/data/spotify/callback")
	client.apiBase = server.URL
	client.client = server.Client()
	return client, requests
}

func TestClientUnlinked(t *testing.T) {
	client := NewClient("client-id", "client-secret", "http://localhost:8080/data/spotify/callback")
	if client.Linked() {
		t.Error("a fresh client reports itself linked")
	}
	if _, err := client.TrackByID(context.Background(), "4uLU6hMC"); !errors.Is(err, library.ErrUnauthenticated) {
		t.Errorf("got %v, expected ErrUnauthenticated", err)
	}
}

func TestClientTrackByID(t *testing.T) {
	client, _ := linkedClient(t)

	track, err := client.TrackByID(context.Background(), "4uLU6hMC")
	if err != nil {
		t.Fatal(err)
	}
	expected := library.SpotifyTrack{
		ID:       "4uLU6hMC",
		Name:     "Resolution",
		Artist:   "Matt Corby, Tash Sultana",
		Album:    "Telluric",
		CoverURL: "https://i.scdn.co/image/ab67",
		URI:      "spotify:track:4uLU6hMC",
		Duration: 214 * time.Second,
	}
	if track != expected {
		t.Errorf("got %+v, expected %+v", track, expected)
	}
}

func TestClientTrackByIDNotFound(t *testing.T) {
	client, _ := linkedClient(t)
	if _, err := client.TrackByID(context.Background(), "nope"); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("got %v, expected ErrNotFound", err)
	}
}

func TestClientSearch(t *testing.T) {
	client, requests := linkedClient(t)

	tracks, err := client.Search(context.Background(), "resolution", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 || tracks[0].Name != "Resolution" {
		t.Errorf("unexpected results: %v", tracks)
	}
	req := (*requests)[len(*requests)-1]
	if req.query.Get("q") != "resolution" || req.query.Get("type") != "track" || req.query.Get("limit") != "10" {
		t.Errorf("unexpected search params: %v", req.query)
	}
}

func TestClientPlayback(t *testing.T) {
	client, requests := linkedClient(t)
	ctx := context.Background()

	t.Run("play uris", func(t *testing.T) {
		if err := client.PlayURIs(ctx, "spotify:track:4uLU6hMC"); err != nil {
			t.Fatal(err)
		}
		req := (*requests)[len(*requests)-1]
		if req.method != http.MethodPut || req.path != "/me/player/play" {
			t.Errorf("unexpected request: %s %s", req.method, req.path)
		}
		if !strings.Contains(req.body, `"spotify:track:4uLU6hMC"`) {
			t.Errorf("unexpected body: %s", req.body)
		}
	})
	t.Run("resume without uris", func(t *testing.T) {
		if err := client.PlayURIs(ctx); err != nil {
			t.Fatal(err)
		}
		req := (*requests)[len(*requests)-1]
		if req.body != "" {
			t.Errorf("resume sent a body: %s", req.body)
		}
	})
	t.Run("pause", func(t *testing.T) {
		if err := client.PausePlayback(ctx); err != nil {
			t.Fatal(err)
		}
		req := (*requests)[len(*requests)-1]
		if req.method != http.MethodPut || req.path != "/me/player/pause" {
			t.Errorf("unexpected request: %s %s", req.method, req.path)
		}
	})
	t.Run("seek", func(t *testing.T) {
		if err := client.SeekPlayback(ctx, 90*time.Second); err != nil {
			t.Fatal(err)
		}
		req := (*requests)[len(*requests)-1]
		if req.path != "/me/player/seek" || req.query.Get("position_ms") != "90000" {
			t.Errorf("unexpected request: %s %v", req.path, req.query)
		}
	})
}

func TestClientAuthURL(t *testing.T) {
	client := NewClient("client-id", "client-secret", "http://localhost:8080/data/spotify/callback")

	authURL, err := url.Parse(client.AuthURL("state-nonce"))
	if err != nil {
		t.Fatal(err)
	}
	query := authURL.Query()
	if query.Get("client_id") != "client-id" {
		t.Errorf("client_id is %q", query.Get("client_id"))
	}
	if query.Get("state") != "state-nonce" {
		t.Errorf("state is %q", query.Get("state"))
	}
	if !strings.Contains(query.Get("scope"), "user-modify-playback-state") {
		t.Errorf("scope %q misses playback control", query.Get("scope"))
	}
	// The secret has no business in a browser URL.
	if strings.Contains(authURL.String(), "client-secret") {
		t.Error("auth url leaks the client secret")
	}
}
