// Package spotify integrates the streaming service: track metadata through
// the Web API and remote playback control through Spotify Connect.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"muzik/src/library"
)

const (
	authURL        = "https://accounts.spotify.com/authorize"
	tokenURL       = "https://accounts.spotify.com/api/token"
	defaultAPIBase = "https://api.spotify.com/v1"
)

// scopes cover reading the library and driving the Connect player.
var scopes = []string{
	"user-read-private",
	"user-read-playback-state",
	"user-modify-playback-state",
	"streaming",
}

// Client is the authenticated Web API client. It starts out unlinked; the
// OAuth callback hands it a token through Exchange, after which the
// oauth2 transport refreshes it transparently.
type Client struct {
	config  *oauth2.Config
	apiBase string

	mu     sync.Mutex
	client *http.Client
}

func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		apiBase: defaultAPIBase,
	}
}

// AuthURL returns the URL to send the user to for account linking.
func (c *Client) AuthURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the OAuth callback code for a token and links the client.
func (c *Client) Exchange(ctx context.Context, code string) error {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange auth code: %w", err)
	}
	c.mu.Lock()
	c.client = c.config.Client(context.Background(), token)
	c.mu.Unlock()
	return nil
}

// Unlink drops the account session.
func (c *Client) Unlink() {
	c.mu.Lock()
	c.client = nil
	c.mu.Unlock()
}

// Linked reports whether an account session is present.
func (c *Client) Linked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client != nil
}

// TrackByID fetches a single track's metadata.
func (c *Client) TrackByID(ctx context.Context, id string) (library.SpotifyTrack, error) {
	var entry trackEntry
	if err := c.do(ctx, http.MethodGet, "/tracks/"+url.PathEscape(id), nil, &entry); err != nil {
		return library.SpotifyTrack{}, fmt.Errorf("get track %q: %w", id, err)
	}
	return entry.track(), nil
}

// Search queries tracks matching the query string.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]library.SpotifyTrack, error) {
	params := url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {fmt.Sprint(limit)},
	}
	var body struct {
		Tracks struct {
			Items []trackEntry `json:"items"`
		} `json:"tracks"`
	}
	if err := c.do(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &body); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	tracks := make([]library.SpotifyTrack, 0, len(body.Tracks.Items))
	for _, entry := range body.Tracks.Items {
		tracks = append(tracks, entry.track())
	}
	return tracks, nil
}

// PlayURIs starts playback of the given URIs on the user's active Connect
// device. With no URIs, paused playback resumes instead.
func (c *Client) PlayURIs(ctx context.Context, uris ...string) error {
	var body interface{}
	if len(uris) > 0 {
		body = map[string]interface{}{"uris": uris}
	}
	if err := c.do(ctx, http.MethodPut, "/me/player/play", body, nil); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}

// PausePlayback pauses the user's active Connect device.
func (c *Client) PausePlayback(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPut, "/me/player/pause", nil, nil); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	return nil
}

// SeekPlayback moves the playback position on the active Connect device.
func (c *Client) SeekPlayback(ctx context.Context, pos time.Duration) error {
	params := url.Values{"position_ms": {fmt.Sprint(pos.Milliseconds())}}
	if err := c.do(ctx, http.MethodPut, "/me/player/seek?"+params.Encode(), nil, nil); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, result interface{}) error {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil {
		return library.ErrUnauthenticated
	}

	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+endpoint, requestBody(reqBody))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", library.ErrUnavailable, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return library.ErrUnauthenticated
	case res.StatusCode == http.StatusNotFound:
		return library.ErrNotFound
	case res.StatusCode < 200 || res.StatusCode >= 300:
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&apiErr)
		if apiErr.Error.Message != "" {
			return fmt.Errorf("api error, status %d: %s", res.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("api error, status %d", res.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(res.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// requestBody keeps a nil *bytes.Buffer from turning into a non-nil
// io.Reader interface.
func requestBody(buf *bytes.Buffer) io.Reader {
	if buf == nil {
		return nil
	}
	return buf
}

type trackEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URI        string `json:"uri"`
	DurationMS int    `json:"duration_ms"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

func (e trackEntry) track() library.SpotifyTrack {
	var artists []string
	for _, artist := range e.Artists {
		artists = append(artists, artist.Name)
	}
	track := library.SpotifyTrack{
		ID:       e.ID,
		Name:     e.Name,
		Artist:   strings.Join(artists, ", "),
		Album:    e.Album.Name,
		URI:      e.URI,
		Duration: time.Duration(e.DurationMS) * time.Millisecond,
	}
	if len(e.Album.Images) > 0 {
		track.CoverURL = e.Album.Images[0].URL
	}
	return track
}
