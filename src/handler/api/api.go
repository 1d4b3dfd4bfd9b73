// Package api exposes the jukebox over a REST API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"muzik/src/jukebox"
	"muzik/src/library"
)

// API contains the state that is accessible over the REST API.
type API struct {
	jukebox *jukebox.Jukebox
}

// InitRouter attaches all API routes to the specified router.
func InitRouter(r chi.Router, jukebox *jukebox.Jukebox) {
	api := API{jukebox: jukebox}

	r.Route("/player", func(r chi.Router) {
		r.Use(jsonCtx)
		r.Get("/status", api.playerStatus)
		r.Post("/play", api.playerPlay)
		r.Post("/playpause", api.playerPlayPause)
		r.Post("/next", api.playerNext)
		r.Post("/previous", api.playerPrevious)
		r.Post("/shuffle", api.playerShuffle)
		r.Post("/repeat", api.playerRepeat)
		r.Get("/time", api.playerGetTime)
		r.Post("/time", api.playerSetTime)
		r.Post("/volume", api.playerSetVolume)
		r.Post("/ended", api.playerEnded)
		r.Route("/queue", func(r chi.Router) {
			r.Get("/", api.queueContents)
			r.Put("/", api.queueAppend)
			r.Post("/next", api.queueInsertNext)
			r.Delete("/", api.queueRemove)
		})
		r.Get("/events", api.playerEvents)
	})

	r.With(jsonCtx).Get("/tracks/{queueID}", api.trackGet)
	r.With(jsonCtx).Get("/tracks/search", api.trackSearch)

	r.Route("/subsonic", func(r chi.Router) {
		r.Get("/stream", api.subsonicStream)
		r.Get("/cover", api.subsonicCover)
		r.With(jsonCtx).Post("/scrobble", api.subsonicScrobble)
	})

	r.Route("/spotify", func(r chi.Router) {
		r.Get("/login", api.spotifyLogin)
		r.Get("/callback", api.spotifyCallback)
		r.With(jsonCtx).Get("/status", api.spotifyStatus)
	})
}

// WriteError writes an error to the client, with the HTTP status tuned to
// the error kind.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	log.Errorf("Error serving %s: %v", r.RemoteAddr, err)

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, library.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, library.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, library.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}

func jsonCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
