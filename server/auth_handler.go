package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"EchoWave/core/auth"
	"EchoWave/logger"
	"EchoWave/model"
	"EchoWave/repository"
)

// LoginRequest is the login request body. Username also accepts an email
// address.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// RegisterHandler creates an account and returns it with a fresh token.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
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

	token, err := h.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// LoginHandler authenticates by username or email and returns a token.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid username/email or password")
			return
		}
		respondInternalError(w, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// LogoutHandler clears the persisted session.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(); err != nil {
		respondInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CurrentUserHandler returns the authenticated user's sanitized record.
func (h *APIHandler) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.User(userID)
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

// ChangePasswordHandler rotates the authenticated user's password.
func (h *APIHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req changePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Current password is incorrect")
		case errors.Is(err, auth.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		default:
			respondInternalError(w, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleAdminHandler flips the admin flag on the target user. Requires an
// admin caller.
func (h *APIHandler) ToggleAdminHandler(w http.ResponseWriter, r *http.Request) {
	callerID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	targetID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.ToggleAdmin(callerID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthorized):
			respondError(w, http.StatusForbidden, "Admin privileges required")
		case errors.Is(err, auth.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		default:
			respondInternalError(w, err)
		}
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// AuthMiddleware validates the bearer token and stashes the caller identity
// in the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := h.tokens.ParseToken(parts[1])
		if err != nil {
			logger.Debug("Token rejected", logger.ErrorField(err))
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, usernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
