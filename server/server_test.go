package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoWave/config"
	"EchoWave/core/auth"
	"EchoWave/core/media"
	"EchoWave/core/player"
	"EchoWave/model"
	"EchoWave/repository"
)

type testAPI struct {
	router  *mux.Router
	content *repository.ContentStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{StorageDriver: config.DriverMemory, JWTSecret: "test-secret"}
	authStore := repository.NewMemoryAuthStore()
	content := repository.NewMemoryContentStore(authStore.Users)

	authService := auth.NewService(authStore)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret)
	engine := player.New(media.NewNullElement(), content.Tracks)

	h := NewAPIHandler(content, authService, tokens, engine, nil, cfg)
	return &testAPI{router: newRouter(h), content: content}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

// registerUser creates an account through the API and returns its user and
// token.
func (a *testAPI) registerUser(t *testing.T, username, email string) (*model.User, string) {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username":    username,
		"email":       email,
		"password":    "secret123",
		"displayName": username,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.User, resp.Token
}

func (a *testAPI) createTrack(t *testing.T, userID int64, title, genre string) *model.Track {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/tracks", map[string]interface{}{
		"userId":       userID,
		"title":        title,
		"audioUrl":     "data:audio/mp3;base64,xxxx",
		"duration":     180000,
		"waveformData": "[0.1,0.5]",
		"genre":        genre,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var track model.Track
	decodeBody(t, rec, &track)
	return &track
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)

	user, _ := api.registerUser(t, "alice", "alice@example.com")
	assert.Empty(t, user.PasswordHash)

	// The response body must never carry the hash field at all.
	rec := api.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", user.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = api.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	api := newTestAPI(t)
	api.registerUser(t, "alice", "alice@example.com")

	rec := api.do(t, http.MethodPost, "/api/users", map[string]string{
		"username":    "alice",
		"email":       "new@example.com",
		"password":    "secret123",
		"displayName": "Alice",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidationErrors(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/users", map[string]string{
		"username": "al",
		"email":    "not-an-email",
		"password": "123",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Contains(t, resp.Errors, "Username")
	assert.Contains(t, resp.Errors, "Email")
	assert.Contains(t, resp.Errors, "Password")
}

func TestAuthMiddleware(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.registerUser(t, "alice", "alice@example.com")

	rec := api.do(t, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/auth/me", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var me model.User
	decodeBody(t, rec, &me)
	assert.Equal(t, "alice", me.Username)
}

func TestTrackLifecycle(t *testing.T) {
	api := newTestAPI(t)
	user, token := api.registerUser(t, "alice", "alice@example.com")
	track := api.createTrack(t, user.ID, "First", "Jazz")

	rec := api.do(t, http.MethodGet, fmt.Sprintf("/api/tracks/%d", track.ID), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/tracks/999", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/tracks?genre=Jazz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tracks []*model.Track
	decodeBody(t, rec, &tracks)
	require.Len(t, tracks, 1)

	rec = api.do(t, http.MethodPut, fmt.Sprintf("/api/tracks/%d/increment-plays", track.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var bumped model.Track
	decodeBody(t, rec, &bumped)
	assert.Equal(t, int64(1), bumped.Plays)

	rec = api.do(t, http.MethodPut, "/api/tracks/999/increment-plays", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Deleting requires the owner's token.
	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/api/tracks/%d", track.ID), nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, otherToken := api.registerUser(t, "bob", "bob@example.com")
	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/api/tracks/%d", track.ID), nil, otherToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/api/tracks/%d", track.ID), nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLikeEndpoints(t *testing.T) {
	api := newTestAPI(t)
	user, _ := api.registerUser(t, "alice", "alice@example.com")
	track := api.createTrack(t, user.ID, "First", "")

	body := map[string]int64{"userId": user.ID, "trackId": track.ID}

	rec := api.do(t, http.MethodPost, "/api/likes", body, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var first model.Like
	decodeBody(t, rec, &first)

	// Idempotent: the second like returns the same record.
	rec = api.do(t, http.MethodPost, "/api/likes", body, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var second model.Like
	decodeBody(t, rec, &second)
	assert.Equal(t, first.ID, second.ID)

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/api/likes/check/user/%d/track/%d", user.ID, track.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var check map[string]bool
	decodeBody(t, rec, &check)
	assert.True(t, check["liked"])

	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/api/likes/user/%d/track/%d", user.ID, track.ID), nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/api/likes/track/%d", track.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var likes []*model.Like
	decodeBody(t, rec, &likes)
	assert.Empty(t, likes)
}

func TestSelfFollowRejected(t *testing.T) {
	api := newTestAPI(t)
	user, _ := api.registerUser(t, "alice", "alice@example.com")

	rec := api.do(t, http.MethodPost, "/api/follows", map[string]int64{
		"followerId": user.ID,
		"followedId": user.ID,
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFollowEndpoints(t *testing.T) {
	api := newTestAPI(t)
	alice, _ := api.registerUser(t, "alice", "alice@example.com")
	bob, _ := api.registerUser(t, "bob", "bob@example.com")

	rec := api.do(t, http.MethodPost, "/api/follows", map[string]int64{
		"followerId": bob.ID,
		"followedId": alice.ID,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/api/follows/followed/%d", alice.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var followers []*model.Follow
	decodeBody(t, rec, &followers)
	require.Len(t, followers, 1)
	assert.Equal(t, bob.ID, followers[0].FollowerID)

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/api/follows/check/follower/%d/followed/%d", bob.ID, alice.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var check map[string]bool
	decodeBody(t, rec, &check)
	assert.True(t, check["following"])
}

func TestCommentEndpoints(t *testing.T) {
	api := newTestAPI(t)
	user, _ := api.registerUser(t, "alice", "alice@example.com")
	track := api.createTrack(t, user.ID, "First", "")

	rec := api.do(t, http.MethodPost, "/api/comments", map[string]interface{}{
		"userId":  user.ID,
		"trackId": track.ID,
		"content": "great track",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var comment model.Comment
	decodeBody(t, rec, &comment)

	// Empty content fails validation.
	rec = api.do(t, http.MethodPost, "/api/comments", map[string]interface{}{
		"userId":  user.ID,
		"trackId": track.ID,
		"content": "",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d", comment.ID), nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPlaylistEndpoints(t *testing.T) {
	api := newTestAPI(t)
	user, _ := api.registerUser(t, "alice", "alice@example.com")

	rec := api.do(t, http.MethodPost, "/api/playlists", map[string]interface{}{
		"userId": user.ID,
		"title":  "Mix",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var playlist model.Playlist
	decodeBody(t, rec, &playlist)
	assert.True(t, playlist.IsPublic)

	t1 := api.createTrack(t, user.ID, "One", "")
	t2 := api.createTrack(t, user.ID, "Two", "")

	for i, track := range []*model.Track{t1, t2} {
		rec = api.do(t, http.MethodPost, "/api/playlist-tracks", map[string]interface{}{
			"playlistId": playlist.ID,
			"trackId":    track.ID,
			"position":   i,
		}, "")
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	// Swap positions.
	rec = api.do(t, http.MethodPut, fmt.Sprintf("/api/playlist-tracks/playlist/%d/track/%d/position", playlist.ID, t2.ID),
		map[string]int{"position": 0}, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(t, http.MethodPut, fmt.Sprintf("/api/playlist-tracks/playlist/%d/track/%d/position", playlist.ID, t1.ID),
		map[string]int{"position": 1}, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/api/playlist-tracks/playlist/%d", playlist.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []*model.PlaylistTrack
	decodeBody(t, rec, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, t2.ID, entries[0].TrackID)
	assert.Equal(t, t1.ID, entries[1].TrackID)

	// Moving an absent entry is a 404.
	rec = api.do(t, http.MethodPut, fmt.Sprintf("/api/playlist-tracks/playlist/%d/track/999/position", playlist.ID),
		map[string]int{"position": 0}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Deleting the playlist cascades.
	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/api/playlists/%d", playlist.ID), nil, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/api/playlist-tracks/playlist/%d", playlist.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	entries = nil
	decodeBody(t, rec, &entries)
	assert.Empty(t, entries)
}

func TestStatsEndpoints(t *testing.T) {
	api := newTestAPI(t)
	user, _ := api.registerUser(t, "alice", "alice@example.com")

	var tracks []*model.Track
	for i := 0; i < 12; i++ {
		tracks = append(tracks, api.createTrack(t, user.ID, fmt.Sprintf("T%d", i), ""))
	}
	for i := 0; i < 3; i++ {
		rec := api.do(t, http.MethodPut, fmt.Sprintf("/api/tracks/%d/increment-plays", tracks[5].ID), nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// Default limit is 10.
	rec := api.do(t, http.MethodGet, "/api/stats/trending", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var trending []*model.Track
	decodeBody(t, rec, &trending)
	require.Len(t, trending, 10)
	assert.Equal(t, tracks[5].ID, trending[0].ID)

	rec = api.do(t, http.MethodGet, "/api/stats/latest?limit=3", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest []*model.Track
	decodeBody(t, rec, &latest)
	assert.Len(t, latest, 3)

	rec = api.do(t, http.MethodGet, "/api/stats/popular-users", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
}

func TestPlayerEndpoints(t *testing.T) {
	api := newTestAPI(t)
	user, _ := api.registerUser(t, "alice", "alice@example.com")
	a := api.createTrack(t, user.ID, "A", "")
	b := api.createTrack(t, user.ID, "B", "")

	rec := api.do(t, http.MethodPost, fmt.Sprintf("/api/player/play/%d", a.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state struct {
		CurrentTrack *model.Track   `json:"currentTrack"`
		IsPlaying    bool           `json:"isPlaying"`
		Queue        []*model.Track `json:"queue"`
	}
	decodeBody(t, rec, &state)
	require.NotNil(t, state.CurrentTrack)
	assert.Equal(t, a.ID, state.CurrentTrack.ID)
	assert.True(t, state.IsPlaying)
	assert.Len(t, state.Queue, 1)

	rec = api.do(t, http.MethodPost, fmt.Sprintf("/api/player/queue/%d", b.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/player/next", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &state)
	assert.Equal(t, b.ID, state.CurrentTrack.ID)

	rec = api.do(t, http.MethodPost, "/api/player/play/999", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/player/volume", map[string]float64{"volume": 2}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
