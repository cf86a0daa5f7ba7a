package server

import "net/http"

// GetTrendingTracksHandler lists tracks by descending play count.
func (h *APIHandler) GetTrendingTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.content.Tracks.GetTrendingTracks(queryLimit(r))
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

// GetLatestTracksHandler lists tracks by descending creation time.
func (h *APIHandler) GetLatestTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.content.Tracks.GetLatestTracks(queryLimit(r))
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

// GetPopularUsersHandler lists users by descending follower count.
func (h *APIHandler) GetPopularUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.content.Stats.GetPopularUsers(queryLimit(r))
	if err != nil {
		respondInternalError(w, err)
		return
	}
	sanitized := users[:0:0]
	for _, u := range users {
		sanitized = append(sanitized, u.Sanitized())
	}
	respondJSON(w, http.StatusOK, sanitized)
}
