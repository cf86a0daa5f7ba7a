package auth

import (
	"errors"
	"fmt"

	"EchoWave/logger"
	"EchoWave/model"
	"EchoWave/repository"
)

// Service-level errors. Login and password-change failures share a single
// error so callers cannot tell which check failed.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Service implements registration, login, logout and profile management on
// top of the auth store. Every user record it returns is sanitized; the
// stored password hash never leaves this package.
type Service struct {
	store *repository.AuthStore
}

// NewService creates a Service backed by the given auth store.
func NewService(store *repository.AuthStore) *Service {
	return &Service{store: store}
}

// ProfileUpdate carries the fields of a partial profile update. Nil fields
// keep their stored values.
type ProfileUpdate struct {
	Username       *string
	Email          *string
	DisplayName    *string
	Bio            *string
	ProfilePicture *string
}

// Register creates a new user, signs them in and returns the sanitized
// record. The username and email must be unique; no partial record is
// persisted when either check fails.
func (s *Service) Register(candidate *model.InsertUser) (*model.User, error) {
	if existing, err := s.store.Users.GetUserByUsername(candidate.Username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if existing != nil {
		return nil, repository.ErrDuplicateUsername
	}
	if existing, err := s.store.Users.GetUserByEmail(candidate.Email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if existing != nil {
		return nil, repository.ErrDuplicateEmail
	}

	hash, err := HashPassword(candidate.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       candidate.Username,
		Email:          candidate.Email,
		PasswordHash:   hash,
		DisplayName:    candidate.DisplayName,
		Bio:            candidate.Bio,
		ProfilePicture: candidate.ProfilePicture,
		IsAdmin:        false,
	}
	if _, err := s.store.Users.CreateUser(user); err != nil {
		return nil, err
	}

	if err := s.store.Sessions.SaveSession(user.ID); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logger.Info("User registered", logger.String("username", user.Username), logger.Int64("userId", user.ID))
	return user.Sanitized(), nil
}

// Login signs a user in by username or email. Both an unknown account and a
// wrong password yield ErrInvalidCredentials.
func (s *Service) Login(usernameOrEmail, password string) (*model.User, error) {
	user, err := s.store.Users.GetUserByUsername(usernameOrEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		user, err = s.store.Users.GetUserByEmail(usernameOrEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to look up user by email: %w", err)
		}
	}

	if user == nil || !CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if err := s.store.Sessions.SaveSession(user.ID); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logger.Info("User logged in", logger.String("username", user.Username))
	return user.Sanitized(), nil
}

// Logout clears the persisted session unconditionally.
func (s *Service) Logout() error {
	return s.store.Sessions.ClearSession()
}

// CurrentUser returns the signed-in user, or (nil, nil) when nobody is
// signed in. A session pointing at a user that no longer exists is cleared.
func (s *Service) CurrentUser() (*model.User, error) {
	userID, ok, err := s.store.Sessions.CurrentSession()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	user, err := s.store.Users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Stale session.
		if err := s.store.Sessions.ClearSession(); err != nil {
			logger.Warn("Failed to clear stale session", logger.ErrorField(err))
		}
		return nil, nil
	}
	return user.Sanitized(), nil
}

// UpdateProfile merges the given fields onto the stored record. Changing the
// username or email re-checks uniqueness against all other users.
func (s *Service) UpdateProfile(id int64, update ProfileUpdate) (*model.User, error) {
	user, err := s.store.Users.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if update.Username != nil && *update.Username != user.Username {
		if existing, err := s.store.Users.GetUserByUsername(*update.Username); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, repository.ErrDuplicateUsername
		}
		user.Username = *update.Username
	}
	if update.Email != nil && *update.Email != user.Email {
		if existing, err := s.store.Users.GetUserByEmail(*update.Email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, repository.ErrDuplicateEmail
		}
		user.Email = *update.Email
	}
	if update.DisplayName != nil {
		user.DisplayName = *update.DisplayName
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.ProfilePicture != nil {
		user.ProfilePicture = *update.ProfilePicture
	}

	if err := s.store.Users.UpdateUser(user); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// ChangePassword re-hashes and persists the new password after verifying the
// current one.
func (s *Service) ChangePassword(id int64, current, next string) (*model.User, error) {
	user, err := s.store.Users.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !CheckPasswordHash(current, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	hash, err := HashPassword(next)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.store.Users.UpdateUser(user); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// User returns one user, sanitized. ErrUserNotFound when absent.
func (s *Service) User(id int64) (*model.User, error) {
	user, err := s.store.Users.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Sanitized(), nil
}

// IsAdmin reports whether the user exists and has the admin flag.
func (s *Service) IsAdmin(id int64) (bool, error) {
	user, err := s.store.Users.GetUserByID(id)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsAdmin, nil
}

// AllUsers returns every user, sanitized.
func (s *Service) AllUsers() ([]*model.User, error) {
	users, err := s.store.Users.GetAllUsers()
	if err != nil {
		return nil, err
	}
	sanitized := make([]*model.User, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, u.Sanitized())
	}
	return sanitized, nil
}

// ToggleAdmin flips the admin flag on the target user. The caller must be an
// admin themselves.
func (s *Service) ToggleAdmin(adminID, targetID int64) (*model.User, error) {
	admin, err := s.store.Users.GetUserByID(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil || !admin.IsAdmin {
		return nil, ErrUnauthorized
	}

	target, err := s.store.Users.GetUserByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	target.IsAdmin = !target.IsAdmin
	if err := s.store.Users.UpdateUser(target); err != nil {
		return nil, err
	}
	return target.Sanitized(), nil
}
