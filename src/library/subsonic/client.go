// Package subsonic talks to a Subsonic compatible media server such as
// Navidrome or Airsonic.
package subsonic

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"muzik/src/library"
)

const (
	protocolVersion = "1.16.1"
	clientName      = "muzik"
)

// Error codes defined by the Subsonic protocol.
const (
	codeWrongCredentials = 40
	codeNotFound         = 70
)

// Client authenticates with the salted token scheme: every request carries a
// fresh random salt and md5(password + salt), so the password itself never
// goes over the wire.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// URL builds a fully authenticated REST URL for the named view. Used both
// for API calls and for handing stream URLs to media proxies.
func (c *Client) URL(view string, params url.Values) string {
	query := url.Values{}
	for key, values := range params {
		query[key] = values
	}
	salt := newSalt()
	token := md5.Sum([]byte(c.password + salt))
	query.Set("u", c.username)
	query.Set("t", hex.EncodeToString(token[:]))
	query.Set("s", salt)
	query.Set("v", protocolVersion)
	query.Set("c", clientName)
	return c.baseURL + "/rest/" + view + "?" + query.Encode()
}

// StreamURL is the URL the raw audio of a track streams from. The server
// transcodes to mp3 so that any browser can play it.
func (c *Client) StreamURL(id string) string {
	return c.URL("stream", url.Values{"id": {id}, "format": {"mp3"}})
}

// CoverArtURL is the URL of a cover art image by its server-local id.
func (c *Client) CoverArtURL(id string) string {
	return c.URL("getCoverArt", url.Values{"id": {id}})
}

// TrackByID fetches a single song record.
func (c *Client) TrackByID(ctx context.Context, id string) (library.SubsonicTrack, error) {
	var body struct {
		Song songEntry `json:"song"`
	}
	if err := c.get(ctx, "getSong", url.Values{"id": {id}}, &body); err != nil {
		return library.SubsonicTrack{}, fmt.Errorf("get song %q: %w", id, err)
	}
	return body.Song.track(), nil
}

// Search queries songs matching the query string.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]library.SubsonicTrack, error) {
	params := url.Values{
		"query":       {query},
		"songCount":   {fmt.Sprint(limit)},
		"albumCount":  {"0"},
		"artistCount": {"0"},
	}
	var body struct {
		SearchResult struct {
			Songs []songEntry `json:"song"`
		} `json:"searchResult3"`
	}
	if err := c.get(ctx, "search3", params, &body); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	tracks := make([]library.SubsonicTrack, 0, len(body.SearchResult.Songs))
	for _, song := range body.SearchResult.Songs {
		tracks = append(tracks, song.track())
	}
	return tracks, nil
}

// Scrobble submits a completed play to the server's listening history.
func (c *Client) Scrobble(ctx context.Context, id string) error {
	params := url.Values{"id": {id}, "submission": {"true"}}
	if err := c.get(ctx, "scrobble", params, nil); err != nil {
		return fmt.Errorf("scrobble %q: %w", id, err)
	}
	return nil
}

// Ping checks connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "ping", url.Values{}, nil)
}

func (c *Client) get(ctx context.Context, view string, params url.Values, response interface{}) error {
	params.Set("f", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(view, params), nil)
	if err != nil {
		return err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", library.ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http status %d", library.ErrUnavailable, res.StatusCode)
	}

	var raw struct {
		Response json.RawMessage `json:"subsonic-response"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return fmt.Errorf("%w: malformed response: %v", library.ErrUnavailable, err)
	}
	var envelope struct {
		Status string `json:"status"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw.Response, &envelope); err != nil {
		return fmt.Errorf("%w: malformed response: %v", library.ErrUnavailable, err)
	}

	if envelope.Status != "ok" {
		if e := envelope.Error; e != nil {
			switch e.Code {
			case codeNotFound:
				return fmt.Errorf("%w: %s", library.ErrNotFound, e.Message)
			case codeWrongCredentials:
				return fmt.Errorf("%w: %s", library.ErrUnauthenticated, e.Message)
			default:
				return fmt.Errorf("server error %d: %s", e.Code, e.Message)
			}
		}
		return fmt.Errorf("server status %q", envelope.Status)
	}
	if response != nil {
		if err := json.Unmarshal(raw.Response, response); err != nil {
			return fmt.Errorf("%w: malformed response: %v", library.ErrUnavailable, err)
		}
	}
	return nil
}

type songEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	CoverArt    string `json:"coverArt"`
	ContentType string `json:"contentType"`
	Duration    int    `json:"duration"` // seconds
}

func (s songEntry) track() library.SubsonicTrack {
	return library.SubsonicTrack{
		ID:          s.ID,
		Name:        s.Title,
		Artist:      s.Artist,
		Album:       s.Album,
		CoverArt:    s.CoverArt,
		ContentType: s.ContentType,
		Duration:    time.Duration(s.Duration) * time.Second,
	}
}

func newSalt() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf[:])
}
