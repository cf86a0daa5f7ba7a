package repository

import (
	"sort"
	"sync"
	"time"

	"EchoWave/model"
)

// DefaultStatsLimit caps ranked queries when the caller passes no limit.
const DefaultStatsLimit = 10

// memoryAuthStore keeps users and the session record in process-local maps.
// It implements the same contract as the MySQL store, with monotonic ids and
// linear scans; collection sizes are small enough that no indexing is needed.
type memoryAuthStore struct {
	mu         sync.RWMutex
	users      map[int64]*model.User
	nextUserID int64
	session    *model.Session
}

// NewMemoryAuthStore creates an in-memory auth store.
func NewMemoryAuthStore() *AuthStore {
	s := &memoryAuthStore{
		users:      make(map[int64]*model.User),
		nextUserID: 1,
	}
	return &AuthStore{Users: s, Sessions: s}
}

func (s *memoryAuthStore) CreateUser(user *model.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return 0, ErrDuplicateUsername
		}
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return 0, ErrDuplicateEmail
		}
	}

	id := s.nextUserID
	s.nextUserID++

	stored := *user
	stored.ID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.users[id] = &stored

	user.ID = id
	user.CreatedAt = stored.CreatedAt
	return id, nil
}

func (s *memoryAuthStore) GetUserByID(id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (s *memoryAuthStore) GetUserByUsername(username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryAuthStore) GetUserByEmail(email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryAuthStore) UpdateUser(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return ErrNotFound
	}
	for _, u := range s.users {
		if u.ID == user.ID {
			continue
		}
		if u.Username == user.Username {
			return ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *memoryAuthStore) GetAllUsers() ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *memoryAuthStore) SaveSession(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = &model.Session{
		ID:        model.CurrentSessionKey,
		UserID:    userID,
		UpdatedAt: time.Now(),
	}
	return nil
}

func (s *memoryAuthStore) CurrentSession() (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return 0, false, nil
	}
	return s.session.UserID, true, nil
}

func (s *memoryAuthStore) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	return nil
}

// memoryContentStore keeps tracks, the social graph and playlists in maps.
// The user repository is only consulted for the popular-users ranking.
type memoryContentStore struct {
	mu sync.RWMutex

	tracks         map[int64]*model.Track
	likes          map[int64]*model.Like
	comments       map[int64]*model.Comment
	follows        map[int64]*model.Follow
	playlists      map[int64]*model.Playlist
	playlistTracks map[int64]*model.PlaylistTrack

	nextTrackID         int64
	nextLikeID          int64
	nextCommentID       int64
	nextFollowID        int64
	nextPlaylistID      int64
	nextPlaylistTrackID int64

	users UserRepository
}

// NewMemoryContentStore creates an in-memory content store. The user
// repository backs the popular-users ranking.
func NewMemoryContentStore(users UserRepository) *ContentStore {
	s := &memoryContentStore{
		tracks:              make(map[int64]*model.Track),
		likes:               make(map[int64]*model.Like),
		comments:            make(map[int64]*model.Comment),
		follows:             make(map[int64]*model.Follow),
		playlists:           make(map[int64]*model.Playlist),
		playlistTracks:      make(map[int64]*model.PlaylistTrack),
		nextTrackID:         1,
		nextLikeID:          1,
		nextCommentID:       1,
		nextFollowID:        1,
		nextPlaylistID:      1,
		nextPlaylistTrackID: 1,
		users:               users,
	}
	return &ContentStore{
		Tracks:         s,
		Likes:          s,
		Comments:       s,
		Follows:        s,
		Playlists:      s,
		PlaylistTracks: s,
		Stats:          s,
	}
}

// Track operations

func (s *memoryContentStore) CreateTrack(track *model.Track) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextTrackID
	s.nextTrackID++

	stored := *track
	stored.ID = id
	stored.Plays = 0
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.tracks[id] = &stored

	track.ID = id
	track.Plays = 0
	track.CreatedAt = stored.CreatedAt
	return id, nil
}

func (s *memoryContentStore) GetTrackByID(id int64) (*model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tracks[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (s *memoryContentStore) GetTracksByUserID(userID int64) ([]*model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterTracks(func(t *model.Track) bool { return t.UserID == userID }), nil
}

func (s *memoryContentStore) GetTracksByGenre(genre string) ([]*model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterTracks(func(t *model.Track) bool { return t.Genre == genre }), nil
}

func (s *memoryContentStore) GetAllTracks() ([]*model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterTracks(func(*model.Track) bool { return true }), nil
}

// filterTracks copies matching tracks in stable id order. Callers hold the
// lock.
func (s *memoryContentStore) filterTracks(match func(*model.Track) bool) []*model.Track {
	tracks := make([]*model.Track, 0)
	for _, t := range s.tracks {
		if match(t) {
			copied := *t
			tracks = append(tracks, &copied)
		}
	}
	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].ID < tracks[j].ID })
	return tracks
}

func (s *memoryContentStore) UpdateTrack(track *model.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tracks[track.ID]; !ok {
		return ErrNotFound
	}
	stored := *track
	s.tracks[track.ID] = &stored
	return nil
}

func (s *memoryContentStore) DeleteTrack(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tracks, id)
	return nil
}

// IncrementPlays is a read-modify-write without compare-and-swap. The mutex
// serializes callers within this process; increments from separate processes
// against a shared snapshot can still lose updates, matching the documented
// last-write-wins semantics.
func (s *memoryContentStore) IncrementPlays(id int64) (*model.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tracks[id]
	if !ok {
		return nil, nil
	}
	updated := *t
	updated.Plays = t.Plays + 1
	s.tracks[id] = &updated

	copied := updated
	return &copied, nil
}

func (s *memoryContentStore) GetTrendingTracks(limit int) ([]*model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tracks := s.filterTracks(func(*model.Track) bool { return true })
	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].Plays > tracks[j].Plays })
	return truncateTracks(tracks, limit), nil
}

func (s *memoryContentStore) GetLatestTracks(limit int) ([]*model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tracks := s.filterTracks(func(*model.Track) bool { return true })
	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].CreatedAt.After(tracks[j].CreatedAt) })
	return truncateTracks(tracks, limit), nil
}

func truncateTracks(tracks []*model.Track, limit int) []*model.Track {
	if limit <= 0 {
		limit = DefaultStatsLimit
	}
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks
}

// Like operations

func (s *memoryContentStore) CreateLike(like *model.Like) (*model.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.likes {
		if l.UserID == like.UserID && l.TrackID == like.TrackID {
			copied := *l
			return &copied, nil
		}
	}

	id := s.nextLikeID
	s.nextLikeID++

	stored := *like
	stored.ID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.likes[id] = &stored

	copied := stored
	return &copied, nil
}

func (s *memoryContentStore) DeleteLike(userID, trackID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, l := range s.likes {
		if l.UserID == userID && l.TrackID == trackID {
			delete(s.likes, id)
			return nil
		}
	}
	return nil
}

func (s *memoryContentStore) GetLikesByTrackID(trackID int64) ([]*model.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterLikes(func(l *model.Like) bool { return l.TrackID == trackID }), nil
}

func (s *memoryContentStore) GetLikesByUserID(userID int64) ([]*model.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterLikes(func(l *model.Like) bool { return l.UserID == userID }), nil
}

func (s *memoryContentStore) filterLikes(match func(*model.Like) bool) []*model.Like {
	likes := make([]*model.Like, 0)
	for _, l := range s.likes {
		if match(l) {
			copied := *l
			likes = append(likes, &copied)
		}
	}
	sort.SliceStable(likes, func(i, j int) bool { return likes[i].ID < likes[j].ID })
	return likes
}

func (s *memoryContentStore) IsTrackLiked(userID, trackID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.likes {
		if l.UserID == userID && l.TrackID == trackID {
			return true, nil
		}
	}
	return false, nil
}

// Comment operations

func (s *memoryContentStore) CreateComment(comment *model.Comment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextCommentID
	s.nextCommentID++

	stored := *comment
	stored.ID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.comments[id] = &stored

	comment.ID = id
	comment.CreatedAt = stored.CreatedAt
	return id, nil
}

func (s *memoryContentStore) GetCommentsByTrackID(trackID int64) ([]*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := make([]*model.Comment, 0)
	for _, c := range s.comments {
		if c.TrackID == trackID {
			copied := *c
			comments = append(comments, &copied)
		}
	}
	// Newest first; id breaks ties for comments created within the same
	// clock tick.
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID > comments[j].ID
		}
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (s *memoryContentStore) DeleteComment(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.comments, id)
	return nil
}

// Follow operations

func (s *memoryContentStore) CreateFollow(follow *model.Follow) (*model.Follow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.follows {
		if f.FollowerID == follow.FollowerID && f.FollowedID == follow.FollowedID {
			copied := *f
			return &copied, nil
		}
	}

	id := s.nextFollowID
	s.nextFollowID++

	stored := *follow
	stored.ID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.follows[id] = &stored

	copied := stored
	return &copied, nil
}

func (s *memoryContentStore) DeleteFollow(followerID, followedID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, f := range s.follows {
		if f.FollowerID == followerID && f.FollowedID == followedID {
			delete(s.follows, id)
			return nil
		}
	}
	return nil
}

func (s *memoryContentStore) GetFollowsByFollowerID(followerID int64) ([]*model.Follow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterFollows(func(f *model.Follow) bool { return f.FollowerID == followerID }), nil
}

func (s *memoryContentStore) GetFollowsByFollowedID(followedID int64) ([]*model.Follow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterFollows(func(f *model.Follow) bool { return f.FollowedID == followedID }), nil
}

func (s *memoryContentStore) filterFollows(match func(*model.Follow) bool) []*model.Follow {
	follows := make([]*model.Follow, 0)
	for _, f := range s.follows {
		if match(f) {
			copied := *f
			follows = append(follows, &copied)
		}
	}
	sort.SliceStable(follows, func(i, j int) bool { return follows[i].ID < follows[j].ID })
	return follows
}

func (s *memoryContentStore) IsFollowing(followerID, followedID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.follows {
		if f.FollowerID == followerID && f.FollowedID == followedID {
			return true, nil
		}
	}
	return false, nil
}

// Playlist operations

func (s *memoryContentStore) CreatePlaylist(playlist *model.Playlist) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextPlaylistID
	s.nextPlaylistID++

	stored := *playlist
	stored.ID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.playlists[id] = &stored

	playlist.ID = id
	playlist.CreatedAt = stored.CreatedAt
	return id, nil
}

func (s *memoryContentStore) GetPlaylistByID(id int64) (*model.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.playlists[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (s *memoryContentStore) GetPlaylistsByUserID(userID int64) ([]*model.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	playlists := make([]*model.Playlist, 0)
	for _, p := range s.playlists {
		if p.UserID == userID {
			copied := *p
			playlists = append(playlists, &copied)
		}
	}
	sort.SliceStable(playlists, func(i, j int) bool { return playlists[i].ID < playlists[j].ID })
	return playlists, nil
}

func (s *memoryContentStore) UpdatePlaylist(playlist *model.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.playlists[playlist.ID]; !ok {
		return ErrNotFound
	}
	stored := *playlist
	s.playlists[playlist.ID] = &stored
	return nil
}

// DeletePlaylist removes the playlist and cascades to its track entries.
func (s *memoryContentStore) DeletePlaylist(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.playlists, id)
	for ptID, pt := range s.playlistTracks {
		if pt.PlaylistID == id {
			delete(s.playlistTracks, ptID)
		}
	}
	return nil
}

// Playlist track operations

func (s *memoryContentStore) AddTrackToPlaylist(pt *model.PlaylistTrack) (*model.PlaylistTrack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.playlistTracks {
		if existing.PlaylistID == pt.PlaylistID && existing.TrackID == pt.TrackID {
			copied := *existing
			return &copied, nil
		}
	}

	id := s.nextPlaylistTrackID
	s.nextPlaylistTrackID++

	stored := *pt
	stored.ID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.playlistTracks[id] = &stored

	copied := stored
	return &copied, nil
}

func (s *memoryContentStore) RemoveTrackFromPlaylist(playlistID, trackID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, pt := range s.playlistTracks {
		if pt.PlaylistID == playlistID && pt.TrackID == trackID {
			delete(s.playlistTracks, id)
			return nil
		}
	}
	return nil
}

func (s *memoryContentStore) GetPlaylistTracks(playlistID int64) ([]*model.PlaylistTrack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*model.PlaylistTrack, 0)
	for _, pt := range s.playlistTracks {
		if pt.PlaylistID == playlistID {
			copied := *pt
			entries = append(entries, &copied)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	return entries, nil
}

func (s *memoryContentStore) UpdatePlaylistTrackPosition(playlistID, trackID int64, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, pt := range s.playlistTracks {
		if pt.PlaylistID == playlistID && pt.TrackID == trackID {
			updated := *pt
			updated.Position = position
			s.playlistTracks[id] = &updated
			return nil
		}
	}
	return ErrNotFound
}

// Stats operations

func (s *memoryContentStore) GetPopularUsers(limit int) ([]*model.User, error) {
	users, err := s.users.GetAllUsers()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	counts := make(map[int64]int, len(users))
	for _, f := range s.follows {
		counts[f.FollowedID]++
	}
	s.mu.RUnlock()

	sort.SliceStable(users, func(i, j int) bool {
		return counts[users[i].ID] > counts[users[j].ID]
	})

	if limit <= 0 {
		limit = DefaultStatsLimit
	}
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}
