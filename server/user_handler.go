package server

import (
	"errors"
	"net/http"

	"EchoWave/core/auth"
	"EchoWave/model"
	"EchoWave/repository"
)

type updateProfileRequest struct {
	Username       *string `json:"username" validate:"omitempty,min=3,max=100"`
	Email          *string `json:"email" validate:"omitempty,email"`
	DisplayName    *string `json:"displayName" validate:"omitempty,max=255"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profilePicture"`
}

// GetUsersHandler lists every user, sanitized.
func (h *APIHandler) GetUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.AllUsers()
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// GetUserHandler fetches one user by ID.
func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.User(id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondInternalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// CreateUserHandler registers a user through the plain REST surface.
func (h *APIHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req model.InsertUser
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			respondError(w, http.StatusConflict, "Username already taken")
		case errors.Is(err, repository.ErrDuplicateEmail):
			respondError(w, http.StatusConflict, "Email already registered")
		default:
			respondInternalError(w, err)
		}
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// UpdateUserHandler merges a partial profile update onto the caller's own
// record.
func (h *APIHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
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
	if id != callerID {
		respondError(w, http.StatusForbidden, "Cannot update another user's profile")
		return
	}

	var req updateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(id, auth.ProfileUpdate{
		Username:       req.Username,
		Email:          req.Email,
		DisplayName:    req.DisplayName,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, repository.ErrDuplicateUsername):
			respondError(w, http.StatusConflict, "Username already taken")
		case errors.Is(err, repository.ErrDuplicateEmail):
			respondError(w, http.StatusConflict, "Email already registered")
		default:
			respondInternalError(w, err)
		}
		return
	}
	respondJSON(w, http.StatusOK, user)
}
