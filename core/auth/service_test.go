package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoWave/model"
	"EchoWave/repository"
)

func newTestService(t *testing.T) (*Service, *repository.AuthStore) {
	t.Helper()
	store := repository.NewMemoryAuthStore()
	return NewService(store), store
}

func register(t *testing.T, s *Service, username, email string) *model.User {
	t.Helper()
	user, err := s.Register(&model.InsertUser{
		Username: username,
		Email:    email,
		Password: "secret123",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterSanitizesAndSignsIn(t *testing.T) {
	s, store := newTestService(t)

	user := register(t, s, "alice", "alice@example.com")
	assert.Empty(t, user.PasswordHash)
	assert.False(t, user.IsAdmin)

	// The stored record carries a real bcrypt hash, not the password.
	stored, err := store.Users.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "secret123", stored.PasswordHash)

	current, err := s.CurrentUser()
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)
	assert.Empty(t, current.PasswordHash)
}

func TestRegisterDuplicates(t *testing.T) {
	s, store := newTestService(t)
	register(t, s, "alice", "alice@example.com")

	_, err := s.Register(&model.InsertUser{Username: "alice", Email: "new@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)

	_, err = s.Register(&model.InsertUser{Username: "bob", Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	// No partial record persisted.
	users, err := store.Users.GetAllUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "alice", "alice@example.com")

	byUsername, err := s.Login("alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", byUsername.Username)
	assert.Empty(t, byUsername.PasswordHash)

	byEmail, err := s.Login("alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, byUsername.ID, byEmail.ID)
}

func TestLoginFailuresShareOneError(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "alice", "alice@example.com")

	_, err := s.Login("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login("nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutAndCurrentUser(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "alice", "alice@example.com")

	require.NoError(t, s.Logout())

	current, err := s.CurrentUser()
	require.NoError(t, err)
	assert.Nil(t, current)

	// Logout with no session still succeeds.
	assert.NoError(t, s.Logout())
}

func TestCurrentUserClearsStaleSession(t *testing.T) {
	s, store := newTestService(t)

	// Session points at a user that does not exist.
	require.NoError(t, store.Sessions.SaveSession(999))

	current, err := s.CurrentUser()
	require.NoError(t, err)
	assert.Nil(t, current)

	_, ok, err := store.Sessions.CurrentSession()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateProfileMergesFields(t *testing.T) {
	s, _ := newTestService(t)
	user := register(t, s, "alice", "alice@example.com")

	bio := "producer"
	updated, err := s.UpdateProfile(user.ID, ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "producer", updated.Bio)
	assert.Equal(t, "alice", updated.Username)
	assert.Empty(t, updated.PasswordHash)
}

func TestUpdateProfileUniquenessRecheck(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "alice", "alice@example.com")
	bob := register(t, s, "bob", "bob@example.com")

	taken := "alice"
	_, err := s.UpdateProfile(bob.ID, ProfileUpdate{Username: &taken})
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)

	takenEmail := "alice@example.com"
	_, err = s.UpdateProfile(bob.ID, ProfileUpdate{Email: &takenEmail})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	// Re-submitting the current username is not a conflict.
	same := "bob"
	_, err = s.UpdateProfile(bob.ID, ProfileUpdate{Username: &same})
	assert.NoError(t, err)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.UpdateProfile(42, ProfileUpdate{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	s, _ := newTestService(t)
	user := register(t, s, "alice", "alice@example.com")

	_, err := s.ChangePassword(user.ID, "wrong", "newsecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.ChangePassword(user.ID, "secret123", "newsecret")
	require.NoError(t, err)

	_, err = s.Login("alice", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	logged, err := s.Login("alice", "newsecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestToggleAdmin(t *testing.T) {
	s, store := newTestService(t)
	admin := register(t, s, "admin", "admin@example.com")
	target := register(t, s, "bob", "bob@example.com")

	// Plain users cannot toggle.
	_, err := s.ToggleAdmin(target.ID, admin.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Promote the first user directly in the store.
	stored, err := store.Users.GetUserByID(admin.ID)
	require.NoError(t, err)
	stored.IsAdmin = true
	require.NoError(t, store.Users.UpdateUser(stored))

	updated, err := s.ToggleAdmin(admin.ID, target.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)
	assert.Empty(t, updated.PasswordHash)

	isAdmin, err := s.IsAdmin(target.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	updated, err = s.ToggleAdmin(admin.ID, target.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsAdmin)

	_, err = s.ToggleAdmin(admin.ID, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAllUsersSanitized(t *testing.T) {
	s, _ := newTestService(t)
	register(t, s, "alice", "alice@example.com")
	register(t, s, "bob", "bob@example.com")

	users, err := s.AllUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}
}
