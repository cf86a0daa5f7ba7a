package server

import (
	"net/http"
	"strconv"

	"EchoWave/core/events"
	"EchoWave/model"
	"EchoWave/storage"
)

const maxUploadMemory = 32 << 20 // 32MB

// UploadTrackHandler accepts a multipart audio upload, stores it in object
// storage and creates the track record. Form fields: trackFile (required),
// title (required), description, genre, duration (milliseconds),
// waveformData, coverFile.
func (h *APIHandler) UploadTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	trackFile, trackHeader, err := r.FormFile("trackFile")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing 'trackFile' in form")
		return
	}
	defer trackFile.Close()

	title := r.FormValue("title")
	if title == "" {
		respondError(w, http.StatusBadRequest, "Missing 'title' in form")
		return
	}

	duration, _ := strconv.ParseInt(r.FormValue("duration"), 10, 64)
	if duration < 0 {
		duration = 0
	}

	audioURL, err := storage.UploadAudio(r.Context(), trackFile, trackHeader.Size,
		trackHeader.Filename, trackHeader.Header.Get("Content-Type"))
	if err != nil {
		respondInternalError(w, err)
		return
	}

	var coverArt string
	if coverFile, coverHeader, err := r.FormFile("coverFile"); err == nil {
		defer coverFile.Close()
		coverArt, err = storage.UploadCover(r.Context(), coverFile, coverHeader.Size,
			coverHeader.Filename, coverHeader.Header.Get("Content-Type"))
		if err != nil {
			respondInternalError(w, err)
			return
		}
	}

	track := &model.Track{
		UserID:       userID,
		Title:        title,
		Description:  r.FormValue("description"),
		AudioURL:     audioURL,
		CoverArt:     coverArt,
		Duration:     duration,
		WaveformData: r.FormValue("waveformData"),
		Genre:        r.FormValue("genre"),
	}
	if _, err := h.content.Tracks.CreateTrack(track); err != nil {
		respondInternalError(w, err)
		return
	}

	h.publishTrackEvent(events.EventTrackUploaded, track)
	respondJSON(w, http.StatusCreated, track)
}

// UploadCoverHandler accepts a standalone cover-art upload and returns its
// URL. Form field: coverFile.
func (h *APIHandler) UploadCoverHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := GetUserIDFromContext(r.Context()); err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	coverFile, coverHeader, err := r.FormFile("coverFile")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing 'coverFile' in form")
		return
	}
	defer coverFile.Close()

	coverURL, err := storage.UploadCover(r.Context(), coverFile, coverHeader.Size,
		coverHeader.Filename, coverHeader.Header.Get("Content-Type"))
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"coverArt": coverURL})
}
