package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
)

const stateCookie = "spotify-auth-state"

func (api *API) spotifyLogin(w http.ResponseWriter, r *http.Request) {
	if !api.jukebox.SpotifyConfigured() {
		http.Error(w, "no streaming service configured", http.StatusServiceUnavailable)
		return
	}

	state := newState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   600,
	})
	http.Redirect(w, r, api.jukebox.SpotifyAuthURL(state), http.StatusFound)
}

func (api *API) spotifyCallback(w http.ResponseWriter, r *http.Request) {
	if !api.jukebox.SpotifyConfigured() {
		http.Error(w, "no streaming service configured", http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query()
	if errstr := query.Get("error"); errstr != "" {
		WriteError(w, r, fmt.Errorf("account linking refused: %s", errstr))
		return
	}
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		WriteError(w, r, fmt.Errorf("state mismatch in oauth callback"))
		return
	}

	if err := api.jukebox.SpotifyExchange(r.Context(), query.Get("code")); err != nil {
		WriteError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (api *API) spotifyStatus(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"configured": api.jukebox.SpotifyConfigured(),
		"linked":     api.jukebox.SpotifyLinked(),
	})
}

func newState() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf[:])
}
