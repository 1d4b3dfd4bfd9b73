package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

func (api *API) trackGet(w http.ResponseWriter, r *http.Request) {
	queueID, err := url.PathUnescape(chi.URLParam(r, "queueID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	track, err := api.jukebox.TrackByQueueID(r.Context(), queueID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"track": track})
}

func (api *API) trackSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		WriteError(w, r, fmt.Errorf("parameter \"query\" is unset"))
		return
	}

	tracks, err := api.jukebox.Search(r.Context(), query)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"tracks": tracks})
}
