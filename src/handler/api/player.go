package api

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"muzik/src/player"
	"muzik/src/util/eventsource"
)

func (api *API) playerStatus(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(api.jukebox.PlaybackStatus(r.Context()))
}

func (api *API) playerPlay(w http.ResponseWriter, r *http.Request) {
	var data struct {
		TrackID string   `json:"trackid"`
		Queue   []string `json:"queue"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}

	api.jukebox.Player().PlayTrackAmong(r.Context(), data.TrackID, data.Queue)
	w.Write([]byte("{}"))
}

func (api *API) playerPlayPause(w http.ResponseWriter, r *http.Request) {
	if err := api.jukebox.Player().TogglePlayPause(r.Context()); err != nil {
		WriteError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"state": api.jukebox.PlaybackStatus(r.Context()).State,
	})
}

func (api *API) playerNext(w http.ResponseWriter, r *http.Request) {
	api.jukebox.Player().SkipNext(r.Context())
	w.Write([]byte("{}"))
}

func (api *API) playerPrevious(w http.ResponseWriter, r *http.Request) {
	api.jukebox.Player().SkipPrevious(r.Context())
	w.Write([]byte("{}"))
}

func (api *API) playerShuffle(w http.ResponseWriter, r *http.Request) {
	on := api.jukebox.Player().ToggleShuffle(r.Context())
	json.NewEncoder(w).Encode(map[string]interface{}{"shuffle": on})
}

func (api *API) playerRepeat(w http.ResponseWriter, r *http.Request) {
	mode := api.jukebox.Player().CycleRepeat(r.Context())
	json.NewEncoder(w).Encode(map[string]interface{}{"repeat": mode})
}

func (api *API) playerGetTime(w http.ResponseWriter, r *http.Request) {
	status := api.jukebox.PlaybackStatus(r.Context())
	json.NewEncoder(w).Encode(map[string]interface{}{"time": status.Time})
}

func (api *API) playerSetTime(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Time float64 `json:"time"` // seconds
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}

	pos := time.Duration(data.Time * float64(time.Second))
	if err := api.jukebox.Player().Seek(r.Context(), pos); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) playerSetVolume(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Volume float32 `json:"volume"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}

	api.jukebox.Player().SetVolume(r.Context(), data.Volume)
	w.Write([]byte("{}"))
}

// playerEnded is the web client's report that the current track finished
// playing on its own.
func (api *API) playerEnded(w http.ResponseWriter, r *http.Request) {
	var data struct {
		TrackID string `json:"trackid"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}

	api.jukebox.Player().NaturalEnd(r.Context(), data.TrackID)
	w.Write([]byte("{}"))
}

func (api *API) queueContents(w http.ResponseWriter, r *http.Request) {
	tracks, err := api.jukebox.QueueTracks(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"trackid": api.jukebox.Player().Queue().ActiveID(),
		"tracks":  tracks,
	})
}

func (api *API) queueAppend(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Tracks []string `json:"tracks"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}

	api.jukebox.Player().AddToQueue(r.Context(), data.Tracks...)
	w.Write([]byte("{}"))
}

func (api *API) queueInsertNext(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Tracks []string `json:"tracks"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}

	api.jukebox.Player().PlayNext(r.Context(), data.Tracks...)
	w.Write([]byte("{}"))
}

func (api *API) queueRemove(w http.ResponseWriter, r *http.Request) {
	var data struct {
		TrackID string `json:"trackid"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}

	api.jukebox.Player().RemoveFromQueue(r.Context(), data.TrackID)
	w.Write([]byte("{}"))
}

func (api *API) playerEvents(w http.ResponseWriter, r *http.Request) {
	es, err := eventsource.Begin(w, r)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	emitter := api.jukebox.Events()
	listener := emitter.Listen()
	defer emitter.Unlisten(listener)

	// Initial snapshot so a fresh client does not have to issue separate
	// requests before the stream becomes useful.
	es.EventJSON("status", api.jukebox.PlaybackStatus(r.Context()))
	if tracks, err := api.jukebox.QueueTracks(r.Context()); err == nil {
		es.EventJSON("queue", map[string]interface{}{
			"trackid": api.jukebox.Player().Queue().ActiveID(),
			"tracks":  tracks,
		})
	}

	for {
		var event interface{}
		select {
		case event = <-listener:
		case <-r.Context().Done():
			return
		}

		switch t := event.(type) {
		case player.QueueEvent:
			tracks, err := api.jukebox.QueueTracks(r.Context())
			if err != nil {
				log.Errorf("%v", err)
				continue
			}
			es.EventJSON("queue", map[string]interface{}{
				"trackid": api.jukebox.Player().Queue().ActiveID(),
				"tracks":  tracks,
			})
		case player.TrackEvent:
			es.EventJSON("status", api.jukebox.PlaybackStatus(r.Context()))
		case player.StateEvent:
			es.EventJSON("state", map[string]interface{}{"state": t.State})
		case player.TimeEvent:
			es.EventJSON("time", map[string]interface{}{"time": t.Time.Seconds()})
		case player.VolumeEvent:
			es.EventJSON("volume", map[string]interface{}{"volume": t.Volume})
		default:
			log.Debugf("Unmapped event %#v", event)
		}
	}
}
