package server

import (
	"net/http"

	"EchoWave/cache"
	"EchoWave/model"
)

type setVolumeRequest struct {
	Volume float64 `json:"volume" validate:"gte=0,lte=1"`
}

type seekRequest struct {
	Seconds float64 `json:"seconds" validate:"gte=0"`
}

// playerState is the JSON shape of the engine's observable state.
type playerState struct {
	CurrentTrack *model.Track   `json:"currentTrack"`
	IsPlaying    bool           `json:"isPlaying"`
	CurrentTime  float64        `json:"currentTime"`
	Duration     float64        `json:"duration"`
	Volume       float64        `json:"volume"`
	Shuffle      bool           `json:"shuffle"`
	Repeat       bool           `json:"repeat"`
	Queue        []*model.Track `json:"queue"`
}

// GetPlayerStateHandler returns the playback engine state.
func (h *APIHandler) GetPlayerStateHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, playerState{
		CurrentTrack: h.player.CurrentTrack(),
		IsPlaying:    h.player.IsPlaying(),
		CurrentTime:  h.player.CurrentTime(),
		Duration:     h.player.Duration(),
		Volume:       h.player.Volume(),
		Shuffle:      h.player.Shuffle(),
		Repeat:       h.player.Repeat(),
		Queue:        h.player.Queue(),
	})
}

// PlayTrackHandler starts playback of a track.
func (h *APIHandler) PlayTrackHandler(w http.ResponseWriter, r *http.Request) {
	track, ok := h.lookupTrack(w, r)
	if !ok {
		return
	}
	if err := h.player.PlayTrack(track); err != nil {
		respondInternalError(w, err)
		return
	}
	h.GetPlayerStateHandler(w, r)
}

// TogglePlayHandler flips between play and pause.
func (h *APIHandler) TogglePlayHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.player.TogglePlay(); err != nil {
		respondInternalError(w, err)
		return
	}
	h.GetPlayerStateHandler(w, r)
}

// PauseHandler pauses playback.
func (h *APIHandler) PauseHandler(w http.ResponseWriter, r *http.Request) {
	h.player.Pause()
	h.GetPlayerStateHandler(w, r)
}

// NextTrackHandler advances the queue.
func (h *APIHandler) NextTrackHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.player.NextTrack(); err != nil {
		respondInternalError(w, err)
		return
	}
	h.GetPlayerStateHandler(w, r)
}

// PreviousTrackHandler replays the previously played track.
func (h *APIHandler) PreviousTrackHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.player.PreviousTrack(); err != nil {
		respondInternalError(w, err)
		return
	}
	h.GetPlayerStateHandler(w, r)
}

// SeekHandler moves the playback position.
func (h *APIHandler) SeekHandler(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.player.SeekTo(req.Seconds)
	h.GetPlayerStateHandler(w, r)
}

// SetVolumeHandler sets the output volume.
func (h *APIHandler) SetVolumeHandler(w http.ResponseWriter, r *http.Request) {
	var req setVolumeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.player.SetVolume(req.Volume)
	h.GetPlayerStateHandler(w, r)
}

// ToggleShuffleHandler flips shuffle mode.
func (h *APIHandler) ToggleShuffleHandler(w http.ResponseWriter, r *http.Request) {
	h.player.ToggleShuffle()
	h.GetPlayerStateHandler(w, r)
}

// ToggleRepeatHandler flips repeat mode.
func (h *APIHandler) ToggleRepeatHandler(w http.ResponseWriter, r *http.Request) {
	h.player.ToggleRepeat()
	h.GetPlayerStateHandler(w, r)
}

// AddToQueueHandler appends a track to the play queue.
func (h *APIHandler) AddToQueueHandler(w http.ResponseWriter, r *http.Request) {
	track, ok := h.lookupTrack(w, r)
	if !ok {
		return
	}
	h.player.AddToQueue(track)
	h.GetPlayerStateHandler(w, r)
}

// RemoveFromQueueHandler drops a track from the play queue.
func (h *APIHandler) RemoveFromQueueHandler(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.player.RemoveFromQueue(trackID)
	h.GetPlayerStateHandler(w, r)
}

// ClearQueueHandler empties the play queue.
func (h *APIHandler) ClearQueueHandler(w http.ResponseWriter, r *http.Request) {
	h.player.ClearQueue()
	h.GetPlayerStateHandler(w, r)
}

// GetQueueSnapshotHandler returns the cached queue snapshot for a user.
func (h *APIHandler) GetQueueSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	queue, err := cache.GetQueue(r.Context(), userID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, queue)
}

func (h *APIHandler) lookupTrack(w http.ResponseWriter, r *http.Request) (*model.Track, bool) {
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	track, err := h.content.Tracks.GetTrackByID(trackID)
	if err != nil {
		respondInternalError(w, err)
		return nil, false
	}
	if track == nil {
		respondError(w, http.StatusNotFound, "Track not found")
		return nil, false
	}
	return track, true
}
