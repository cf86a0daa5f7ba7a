package server

import (
	"encoding/json"
	"net/http"

	"EchoWave/core/events"
	"EchoWave/model"
)

// GetTracksHandler lists tracks, optionally filtered by genre via the
// ?genre= query parameter.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	var (
		tracks []*model.Track
		err    error
	)
	if genre := r.URL.Query().Get("genre"); genre != "" {
		tracks, err = h.content.Tracks.GetTracksByGenre(genre)
	} else {
		tracks, err = h.content.Tracks.GetAllTracks()
	}
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

// GetTrackHandler fetches one track by ID.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	track, err := h.content.Tracks.GetTrackByID(id)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	if track == nil {
		respondError(w, http.StatusNotFound, "Track not found")
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// GetUserTracksHandler lists the tracks uploaded by one user.
func (h *APIHandler) GetUserTracksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tracks, err := h.content.Tracks.GetTracksByUserID(userID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

// CreateTrackHandler creates a track record.
func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req model.InsertTrack
	if !decodeAndValidate(w, r, &req) {
		return
	}

	track := &model.Track{
		UserID:       req.UserID,
		Title:        req.Title,
		Description:  req.Description,
		AudioURL:     req.AudioURL,
		CoverArt:     req.CoverArt,
		Duration:     req.Duration,
		WaveformData: req.WaveformData,
		Genre:        req.Genre,
	}
	if _, err := h.content.Tracks.CreateTrack(track); err != nil {
		respondInternalError(w, err)
		return
	}

	h.publishTrackEvent(events.EventTrackUploaded, track)
	respondJSON(w, http.StatusCreated, track)
}

// IncrementPlaysHandler bumps a track's play counter and returns the
// updated record.
func (h *APIHandler) IncrementPlaysHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	track, err := h.content.Tracks.IncrementPlays(id)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	if track == nil {
		respondError(w, http.StatusNotFound, "Track not found")
		return
	}

	h.publishTrackEvent(events.EventTrackPlayed, track)
	respondJSON(w, http.StatusOK, track)
}

// DeleteTrackHandler removes a track. Only the owner may delete.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	callerID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	track, err := h.content.Tracks.GetTrackByID(id)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	if track == nil {
		respondError(w, http.StatusNotFound, "Track not found")
		return
	}
	if track.UserID != callerID {
		respondError(w, http.StatusForbidden, "Cannot delete another user's track")
		return
	}

	if err := h.content.Tracks.DeleteTrack(id); err != nil {
		respondInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) publishTrackEvent(eventType events.EventType, track *model.Track) {
	if h.hub == nil {
		return
	}
	data, _ := json.Marshal(map[string]interface{}{"title": track.Title})
	h.hub.Publish(events.Event{
		Type:    eventType,
		UserID:  track.UserID,
		TrackID: track.ID,
		Data:    data,
	})
}
