package repository

import (
	"errors"

	"EchoWave/model"
)

// Sentinel errors shared by all store implementations.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrNotFound          = errors.New("record not found")
)

// UserRepository defines the interface for user data operations. Lookups
// return (nil, nil) when no record matches.
type UserRepository interface {
	CreateUser(user *model.User) (int64, error)
	GetUserByID(id int64) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	UpdateUser(user *model.User) error
	GetAllUsers() ([]*model.User, error)
}

// SessionRepository persists the single signed-in session record.
type SessionRepository interface {
	SaveSession(userID int64) error
	// CurrentSession returns (0, false, nil) when no session is persisted.
	CurrentSession() (int64, bool, error)
	// ClearSession is idempotent.
	ClearSession() error
}

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	CreateTrack(track *model.Track) (int64, error)
	GetTrackByID(id int64) (*model.Track, error)
	GetTracksByUserID(userID int64) ([]*model.Track, error)
	GetTracksByGenre(genre string) ([]*model.Track, error)
	GetAllTracks() ([]*model.Track, error)
	UpdateTrack(track *model.Track) error
	DeleteTrack(id int64) error
	// IncrementPlays bumps the play counter and returns the updated track,
	// or (nil, nil) when the track does not exist.
	IncrementPlays(id int64) (*model.Track, error)
	// GetTrendingTracks returns tracks sorted by descending play count,
	// truncated to limit.
	GetTrendingTracks(limit int) ([]*model.Track, error)
	// GetLatestTracks returns tracks sorted by descending creation time,
	// truncated to limit.
	GetLatestTracks(limit int) ([]*model.Track, error)
}

// LikeRepository defines like operations. CreateLike is idempotent on the
// (userId, trackId) pair: a duplicate add returns the existing record.
type LikeRepository interface {
	CreateLike(like *model.Like) (*model.Like, error)
	DeleteLike(userID, trackID int64) error
	GetLikesByTrackID(trackID int64) ([]*model.Like, error)
	GetLikesByUserID(userID int64) ([]*model.Like, error)
	IsTrackLiked(userID, trackID int64) (bool, error)
}

// CommentRepository defines comment operations. Comments list newest first.
type CommentRepository interface {
	CreateComment(comment *model.Comment) (int64, error)
	GetCommentsByTrackID(trackID int64) ([]*model.Comment, error)
	DeleteComment(id int64) error
}

// FollowRepository defines follow operations. CreateFollow is idempotent on
// the (followerId, followedId) pair. Self-follows are rejected by the
// handler layer, not here.
type FollowRepository interface {
	CreateFollow(follow *model.Follow) (*model.Follow, error)
	DeleteFollow(followerID, followedID int64) error
	GetFollowsByFollowerID(followerID int64) ([]*model.Follow, error)
	GetFollowsByFollowedID(followedID int64) ([]*model.Follow, error)
	IsFollowing(followerID, followedID int64) (bool, error)
}

// PlaylistRepository defines playlist operations. DeletePlaylist cascades to
// the playlist's track entries.
type PlaylistRepository interface {
	CreatePlaylist(playlist *model.Playlist) (int64, error)
	GetPlaylistByID(id int64) (*model.Playlist, error)
	GetPlaylistsByUserID(userID int64) ([]*model.Playlist, error)
	UpdatePlaylist(playlist *model.Playlist) error
	DeletePlaylist(id int64) error
}

// PlaylistTrackRepository defines playlist membership operations.
// AddTrackToPlaylist is idempotent on the (playlistId, trackId) pair;
// GetPlaylistTracks returns entries ordered by position ascending.
type PlaylistTrackRepository interface {
	AddTrackToPlaylist(pt *model.PlaylistTrack) (*model.PlaylistTrack, error)
	RemoveTrackFromPlaylist(playlistID, trackID int64) error
	GetPlaylistTracks(playlistID int64) ([]*model.PlaylistTrack, error)
	UpdatePlaylistTrackPosition(playlistID, trackID int64, position int) error
}

// StatsRepository defines ranked cross-entity queries.
type StatsRepository interface {
	// GetPopularUsers returns users sorted by descending follower count,
	// truncated to limit.
	GetPopularUsers(limit int) ([]*model.User, error)
}

// AuthStore groups the identity-side repositories. It mirrors one of the two
// independently versioned client databases.
type AuthStore struct {
	Users    UserRepository
	Sessions SessionRepository
}

// ContentStore groups the content-side repositories.
type ContentStore struct {
	Tracks         TrackRepository
	Likes          LikeRepository
	Comments       CommentRepository
	Follows        FollowRepository
	Playlists      PlaylistRepository
	PlaylistTracks PlaylistTrackRepository
	Stats          StatsRepository
}
