package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// The media proxy endpoints redirect rather than pipe the body through:
// every redirect target carries a freshly salted authentication token, so
// the client streams straight from the media server without this process
// ever holding the audio bytes.

func (api *API) subsonicStream(w http.ResponseWriter, r *http.Request) {
	id, ok := api.subsonicID(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, api.jukebox.SubsonicStreamURL(id), http.StatusFound)
}

func (api *API) subsonicCover(w http.ResponseWriter, r *http.Request) {
	id, ok := api.subsonicID(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, api.jukebox.SubsonicCoverURL(id), http.StatusFound)
}

func (api *API) subsonicScrobble(w http.ResponseWriter, r *http.Request) {
	var data struct {
		ID string `json:"id"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}
	if !api.jukebox.SubsonicConfigured() {
		http.Error(w, "no media server configured", http.StatusServiceUnavailable)
		return
	}

	if err := api.jukebox.SubsonicScrobble(r.Context(), data.ID); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) subsonicID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if !api.jukebox.SubsonicConfigured() {
		http.Error(w, "no media server configured", http.StatusServiceUnavailable)
		return "", false
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		WriteError(w, r, fmt.Errorf("parameter \"id\" is unset"))
		return "", false
	}
	return id, true
}
