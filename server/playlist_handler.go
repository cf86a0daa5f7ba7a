package server

import (
	"errors"
	"net/http"

	"EchoWave/model"
	"EchoWave/repository"
)

type updatePlaylistRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	CoverArt    *string `json:"coverArt"`
	IsPublic    *bool   `json:"isPublic"`
}

type updatePositionRequest struct {
	Position int `json:"position" validate:"gte=0"`
}

// CreatePlaylistHandler creates a playlist. Visibility defaults to public.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req model.InsertPlaylist
	if !decodeAndValidate(w, r, &req) {
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	playlist := &model.Playlist{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		CoverArt:    req.CoverArt,
		IsPublic:    isPublic,
	}
	if _, err := h.content.Playlists.CreatePlaylist(playlist); err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, playlist)
}

// GetPlaylistHandler fetches one playlist by ID.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	playlist, err := h.content.Playlists.GetPlaylistByID(id)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	if playlist == nil {
		respondError(w, http.StatusNotFound, "Playlist not found")
		return
	}
	respondJSON(w, http.StatusOK, playlist)
}

// GetUserPlaylistsHandler lists a user's playlists.
func (h *APIHandler) GetUserPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	playlists, err := h.content.Playlists.GetPlaylistsByUserID(userID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, playlists)
}

// UpdatePlaylistHandler merges a partial update onto a playlist.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updatePlaylistRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	playlist, err := h.content.Playlists.GetPlaylistByID(id)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	if playlist == nil {
		respondError(w, http.StatusNotFound, "Playlist not found")
		return
	}

	if req.Title != nil {
		playlist.Title = *req.Title
	}
	if req.Description != nil {
		playlist.Description = *req.Description
	}
	if req.CoverArt != nil {
		playlist.CoverArt = *req.CoverArt
	}
	if req.IsPublic != nil {
		playlist.IsPublic = *req.IsPublic
	}

	if err := h.content.Playlists.UpdatePlaylist(playlist); err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, playlist)
}

// DeletePlaylistHandler removes a playlist and its entries.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.content.Playlists.DeletePlaylist(id); err != nil {
		respondInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPlaylistTrackHandler adds a track to a playlist. Re-adding a track
// returns the existing entry.
func (h *APIHandler) AddPlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req model.InsertPlaylistTrack
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.content.PlaylistTracks.AddTrackToPlaylist(&model.PlaylistTrack{
		PlaylistID: req.PlaylistID,
		TrackID:    req.TrackID,
		Position:   req.Position,
	})
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// GetPlaylistTracksHandler lists a playlist's entries ordered by position.
func (h *APIHandler) GetPlaylistTracksHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.content.PlaylistTracks.GetPlaylistTracks(playlistID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// RemovePlaylistTrackHandler removes a track from a playlist.
func (h *APIHandler) RemovePlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.content.PlaylistTracks.RemoveTrackFromPlaylist(playlistID, trackID); err != nil {
		respondInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePlaylistTrackPositionHandler moves a track within a playlist.
func (h *APIHandler) UpdatePlaylistTrackPositionHandler(w http.ResponseWriter, r *http.Request) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	trackID, err := pathID(r, "trackId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updatePositionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err = h.content.PlaylistTracks.UpdatePlaylistTrackPosition(playlistID, trackID, req.Position)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Playlist track not found")
			return
		}
		respondInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
