package repository

import (
	"database/sql"
	"fmt"
	"time"

	"EchoWave/model"
)

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = "id, username, email, password_hash, display_name, bio, profile_picture, is_admin, created_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	user := &model.User{}
	var bio, picture sql.NullString
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.DisplayName, &bio, &picture, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	user.Bio = bio.String
	user.ProfilePicture = picture.String
	return user, nil
}

// CreateUser adds a new user to the database.
func (r *mysqlUserRepository) CreateUser(user *model.User) (int64, error) {
	if existing, err := r.GetUserByUsername(user.Username); err != nil {
		return 0, err
	} else if existing != nil {
		return 0, ErrDuplicateUsername
	}
	if existing, err := r.GetUserByEmail(user.Email); err != nil {
		return 0, err
	} else if existing != nil {
		return 0, ErrDuplicateEmail
	}

	query := `INSERT INTO users (username, email, password_hash, display_name, bio, profile_picture, is_admin, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare create user statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	res, err := stmt.Exec(user.Username, user.Email, user.PasswordHash, user.DisplayName,
		nullString(user.Bio), nullString(user.ProfilePicture), user.IsAdmin, now)
	if err != nil {
		// The unique indexes are the source of truth under concurrent
		// registration; map a lost race to the same duplicate error.
		if isDuplicateEntry(err) {
			return 0, ErrDuplicateUsername
		}
		return 0, fmt.Errorf("failed to execute create user statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	return id, nil
}

// GetUserByID retrieves a user by their ID.
func (r *mysqlUserRepository) GetUserByID(id int64) (*model.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to scan user row for ID %d: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by their username.
func (r *mysqlUserRepository) GetUserByUsername(username string) (*model.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to scan user row for username %s: %w", username, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *mysqlUserRepository) GetUserByEmail(email string) (*model.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to scan user row for email %s: %w", email, err)
	}
	return user, nil
}

// UpdateUser replaces the stored record at the user's id.
func (r *mysqlUserRepository) UpdateUser(user *model.User) error {
	query := `UPDATE users SET username = ?, email = ?, password_hash = ?, display_name = ?, bio = ?, profile_picture = ?, is_admin = ? WHERE id = ?`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare update user statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(user.Username, user.Email, user.PasswordHash, user.DisplayName,
		nullString(user.Bio), nullString(user.ProfilePicture), user.IsAdmin, user.ID)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to execute update user statement: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		if existing, err := r.GetUserByID(user.ID); err != nil {
			return err
		} else if existing == nil {
			return ErrNotFound
		}
	}
	return nil
}

// GetAllUsers retrieves all users.
func (r *mysqlUserRepository) GetAllUsers() ([]*model.User, error) {
	rows, err := r.db.Query("SELECT " + userColumns + " FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
