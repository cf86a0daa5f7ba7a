package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoWave/model"
)

func newTestStores(t *testing.T) (*AuthStore, *ContentStore) {
	t.Helper()
	authStore := NewMemoryAuthStore()
	return authStore, NewMemoryContentStore(authStore.Users)
}

func mustCreateUser(t *testing.T, store *AuthStore, username, email string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: email, PasswordHash: "x"}
	_, err := store.Users.CreateUser(user)
	require.NoError(t, err)
	return user
}

func mustCreateTrack(t *testing.T, store *ContentStore, userID int64, title, genre string) *model.Track {
	t.Helper()
	track := &model.Track{UserID: userID, Title: title, AudioURL: "data:audio", Genre: genre}
	_, err := store.Tracks.CreateTrack(track)
	require.NoError(t, err)
	return track
}

func TestCreateUserDuplicates(t *testing.T) {
	authStore, _ := newTestStores(t)
	mustCreateUser(t, authStore, "alice", "alice@example.com")

	_, err := authStore.Users.CreateUser(&model.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = authStore.Users.CreateUser(&model.User{Username: "bob", Email: "alice@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestGetUserByIDAbsent(t *testing.T) {
	authStore, _ := newTestStores(t)

	user, err := authStore.Users.GetUserByID(42)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSessionLifecycle(t *testing.T) {
	authStore, _ := newTestStores(t)

	_, ok, err := authStore.Sessions.CurrentSession()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, authStore.Sessions.SaveSession(7))
	userID, ok, err := authStore.Sessions.CurrentSession()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), userID)

	// The session is a single record; a second save replaces it.
	require.NoError(t, authStore.Sessions.SaveSession(9))
	userID, ok, err = authStore.Sessions.CurrentSession()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(9), userID)

	require.NoError(t, authStore.Sessions.ClearSession())
	_, ok, err = authStore.Sessions.CurrentSession()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateLikeIdempotent(t *testing.T) {
	authStore, content := newTestStores(t)
	user := mustCreateUser(t, authStore, "alice", "alice@example.com")
	track := mustCreateTrack(t, content, user.ID, "First", "")

	first, err := content.Likes.CreateLike(&model.Like{UserID: user.ID, TrackID: track.ID})
	require.NoError(t, err)

	second, err := content.Likes.CreateLike(&model.Like{UserID: user.ID, TrackID: track.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	likes, err := content.Likes.GetLikesByTrackID(track.ID)
	require.NoError(t, err)
	assert.Len(t, likes, 1)
}

func TestCreateFollowIdempotent(t *testing.T) {
	_, content := newTestStores(t)

	first, err := content.Follows.CreateFollow(&model.Follow{FollowerID: 1, FollowedID: 2})
	require.NoError(t, err)

	second, err := content.Follows.CreateFollow(&model.Follow{FollowerID: 1, FollowedID: 2})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	follows, err := content.Follows.GetFollowsByFollowerID(1)
	require.NoError(t, err)
	assert.Len(t, follows, 1)
}

func TestAddTrackToPlaylistIdempotent(t *testing.T) {
	_, content := newTestStores(t)

	first, err := content.PlaylistTracks.AddTrackToPlaylist(&model.PlaylistTrack{PlaylistID: 1, TrackID: 5, Position: 0})
	require.NoError(t, err)

	// Re-adding returns the existing entry unmodified, even with a new
	// position.
	second, err := content.PlaylistTracks.AddTrackToPlaylist(&model.PlaylistTrack{PlaylistID: 1, TrackID: 5, Position: 3})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 0, second.Position)
}

func TestDeleteLikeAbsentIsNoOp(t *testing.T) {
	_, content := newTestStores(t)
	assert.NoError(t, content.Likes.DeleteLike(1, 2))
}

func TestIncrementPlaysSequential(t *testing.T) {
	authStore, content := newTestStores(t)
	user := mustCreateUser(t, authStore, "alice", "alice@example.com")
	track := mustCreateTrack(t, content, user.ID, "First", "")

	const n = 25
	for i := 0; i < n; i++ {
		_, err := content.Tracks.IncrementPlays(track.ID)
		require.NoError(t, err)
	}

	got, err := content.Tracks.GetTrackByID(track.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.Plays)
}

func TestIncrementPlaysAbsentTrack(t *testing.T) {
	_, content := newTestStores(t)

	track, err := content.Tracks.IncrementPlays(99)
	require.NoError(t, err)
	assert.Nil(t, track)
}

func TestTrendingTracksOrderAndLimit(t *testing.T) {
	authStore, content := newTestStores(t)
	user := mustCreateUser(t, authStore, "alice", "alice@example.com")

	a := mustCreateTrack(t, content, user.ID, "A", "")
	b := mustCreateTrack(t, content, user.ID, "B", "")
	c := mustCreateTrack(t, content, user.ID, "C", "")

	for i := 0; i < 3; i++ {
		_, err := content.Tracks.IncrementPlays(b.ID)
		require.NoError(t, err)
	}
	_, err := content.Tracks.IncrementPlays(c.ID)
	require.NoError(t, err)

	trending, err := content.Tracks.GetTrendingTracks(2)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, b.ID, trending[0].ID)
	assert.Equal(t, c.ID, trending[1].ID)

	trending, err = content.Tracks.GetTrendingTracks(10)
	require.NoError(t, err)
	require.Len(t, trending, 3)
	assert.Equal(t, a.ID, trending[2].ID)
}

func TestLatestTracksOrder(t *testing.T) {
	_, content := newTestStores(t)

	old := &model.Track{UserID: 1, Title: "Old", AudioURL: "u", CreatedAt: time.Now().Add(-time.Hour)}
	_, err := content.Tracks.CreateTrack(old)
	require.NoError(t, err)

	fresh := &model.Track{UserID: 1, Title: "Fresh", AudioURL: "u", CreatedAt: time.Now()}
	_, err = content.Tracks.CreateTrack(fresh)
	require.NoError(t, err)

	latest, err := content.Tracks.GetLatestTracks(1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, fresh.ID, latest[0].ID)
}

func TestGetTracksByGenre(t *testing.T) {
	authStore, content := newTestStores(t)
	user := mustCreateUser(t, authStore, "alice", "alice@example.com")
	jazz := mustCreateTrack(t, content, user.ID, "Jazz Tune", "Jazz")
	mustCreateTrack(t, content, user.ID, "Rock Tune", "Rock")

	tracks, err := content.Tracks.GetTracksByGenre("Jazz")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, jazz.ID, tracks[0].ID)
}

func TestCommentsNewestFirst(t *testing.T) {
	_, content := newTestStores(t)

	base := time.Now()
	for i := 0; i < 3; i++ {
		_, err := content.Comments.CreateComment(&model.Comment{
			UserID:    1,
			TrackID:   1,
			Content:   "c",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	comments, err := content.Comments.GetCommentsByTrackID(1)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.True(t, comments[0].CreatedAt.After(comments[1].CreatedAt))
	assert.True(t, comments[1].CreatedAt.After(comments[2].CreatedAt))
}

func TestDeletePlaylistCascades(t *testing.T) {
	_, content := newTestStores(t)

	playlist := &model.Playlist{UserID: 1, Title: "Mix", IsPublic: true}
	_, err := content.Playlists.CreatePlaylist(playlist)
	require.NoError(t, err)

	for trackID := int64(1); trackID <= 3; trackID++ {
		_, err := content.PlaylistTracks.AddTrackToPlaylist(&model.PlaylistTrack{
			PlaylistID: playlist.ID,
			TrackID:    trackID,
			Position:   int(trackID - 1),
		})
		require.NoError(t, err)
	}

	require.NoError(t, content.Playlists.DeletePlaylist(playlist.ID))

	got, err := content.Playlists.GetPlaylistByID(playlist.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	entries, err := content.PlaylistTracks.GetPlaylistTracks(playlist.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdatePlaylistTrackPositionReorders(t *testing.T) {
	_, content := newTestStores(t)

	playlist := &model.Playlist{UserID: 1, Title: "Mix", IsPublic: true}
	_, err := content.Playlists.CreatePlaylist(playlist)
	require.NoError(t, err)

	t1 := int64(10)
	t2 := int64(20)
	_, err = content.PlaylistTracks.AddTrackToPlaylist(&model.PlaylistTrack{PlaylistID: playlist.ID, TrackID: t1, Position: 0})
	require.NoError(t, err)
	_, err = content.PlaylistTracks.AddTrackToPlaylist(&model.PlaylistTrack{PlaylistID: playlist.ID, TrackID: t2, Position: 1})
	require.NoError(t, err)

	require.NoError(t, content.PlaylistTracks.UpdatePlaylistTrackPosition(playlist.ID, t2, 0))
	require.NoError(t, content.PlaylistTracks.UpdatePlaylistTrackPosition(playlist.ID, t1, 1))

	entries, err := content.PlaylistTracks.GetPlaylistTracks(playlist.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, t2, entries[0].TrackID)
	assert.Equal(t, t1, entries[1].TrackID)
}

func TestUpdatePlaylistTrackPositionAbsent(t *testing.T) {
	_, content := newTestStores(t)
	err := content.PlaylistTracks.UpdatePlaylistTrackPosition(1, 2, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPopularUsersRanksByFollowers(t *testing.T) {
	authStore, content := newTestStores(t)
	alice := mustCreateUser(t, authStore, "alice", "alice@example.com")
	bob := mustCreateUser(t, authStore, "bob", "bob@example.com")
	carol := mustCreateUser(t, authStore, "carol", "carol@example.com")

	_, err := content.Follows.CreateFollow(&model.Follow{FollowerID: alice.ID, FollowedID: bob.ID})
	require.NoError(t, err)
	_, err = content.Follows.CreateFollow(&model.Follow{FollowerID: carol.ID, FollowedID: bob.ID})
	require.NoError(t, err)
	_, err = content.Follows.CreateFollow(&model.Follow{FollowerID: bob.ID, FollowedID: alice.ID})
	require.NoError(t, err)

	users, err := content.Stats.GetPopularUsers(2)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, bob.ID, users[0].ID)
	assert.Equal(t, alice.ID, users[1].ID)
}

func TestSocialGraphScenario(t *testing.T) {
	authStore, content := newTestStores(t)
	userA := mustCreateUser(t, authStore, "a", "a@example.com")
	userB := mustCreateUser(t, authStore, "b", "b@example.com")

	track := &model.Track{UserID: userA.ID, Title: "T", AudioURL: "u", Genre: "Jazz", Duration: 180000}
	_, err := content.Tracks.CreateTrack(track)
	require.NoError(t, err)

	_, err = content.Likes.CreateLike(&model.Like{UserID: userB.ID, TrackID: track.ID})
	require.NoError(t, err)
	_, err = content.Follows.CreateFollow(&model.Follow{FollowerID: userB.ID, FollowedID: userA.ID})
	require.NoError(t, err)

	followers, err := content.Follows.GetFollowsByFollowedID(userA.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, userB.ID, followers[0].FollowerID)

	liked, err := content.Likes.IsTrackLiked(userB.ID, track.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	jazz, err := content.Tracks.GetTracksByGenre("Jazz")
	require.NoError(t, err)
	require.Len(t, jazz, 1)
	assert.Equal(t, track.ID, jazz[0].ID)
}
