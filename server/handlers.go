package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"EchoWave/config"
	"EchoWave/core/auth"
	"EchoWave/core/events"
	"EchoWave/core/player"
	"EchoWave/logger"
	"EchoWave/repository"
)

// defaultStatsLimit is used when a ranked query omits the limit parameter.
const defaultStatsLimit = 10

type contextKey string

const (
	userIDKey   contextKey = "userID"
	usernameKey contextKey = "username"
)

var validate = validator.New()

// APIHandler carries the dependencies of every HTTP handler.
type APIHandler struct {
	content     *repository.ContentStore
	authService *auth.Service
	tokens      *auth.TokenIssuer
	player      *player.Player
	hub         *events.Hub
	cfg         *config.Config
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(
	content *repository.ContentStore,
	authService *auth.Service,
	tokens *auth.TokenIssuer,
	p *player.Player,
	hub *events.Hub,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		content:     content,
		authService: authService,
		tokens:      tokens,
		player:      p,
		hub:         hub,
		cfg:         cfg,
	}
}

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", logger.ErrorField(err))
		}
	}
}

// respondError writes a JSON error body {"message": ...}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondInternalError logs the error and answers with a generic 500. The
// internal detail never reaches the client.
func respondInternalError(w http.ResponseWriter, err error) {
	logger.Error("Request failed", logger.ErrorField(err))
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeAndValidate parses the request body into dst and runs schema
// validation. On failure it writes a 400 with per-field errors and returns
// false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fmt.Sprintf("failed on '%s' validation", fe.Tag())
			}
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"message": "Validation failed",
				"errors":  fields,
			})
			return false
		}
		respondError(w, http.StatusBadRequest, "Validation failed")
		return false
	}
	return true
}

// pathID parses a numeric path variable.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// queryLimit parses the limit query parameter, falling back to the default.
func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultStatsLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultStatsLimit
	}
	return limit
}

// GetUserIDFromContext extracts the authenticated user ID set by
// AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetUsernameFromContext extracts the authenticated username set by
// AuthMiddleware.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(usernameKey).(string)
	if !ok {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}
