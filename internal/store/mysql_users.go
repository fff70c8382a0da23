package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vidai-app/vidai-golang/internal/models"
)

const userColumns = `id, username, email, password_hash, role, display_name, auth_provider, provider_id, profile_image_url, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var passwordHash sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&passwordHash,
		&user.Role,
		&user.DisplayName,
		&user.AuthProvider,
		&user.ProviderID,
		&user.ProfileImageURL,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.PasswordHash = passwordHash.String
	return &user, nil
}

func (s *MySQLStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(s.DB.QueryRowContext(ctx, query, id))
}

func (s *MySQLStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(s.DB.QueryRowContext(ctx, query, email))
}

func (s *MySQLStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return scanUser(s.DB.QueryRowContext(ctx, query, username))
}

func (s *MySQLStore) GetUserByProvider(ctx context.Context, provider, providerID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_provider = ? AND provider_id = ?`
	return scanUser(s.DB.QueryRowContext(ctx, query, provider, providerID))
}

func (s *MySQLStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = "user"
	}
	user.CreatedAt = time.Now()

	query := `
		INSERT INTO users (username, email, password_hash, role, display_name, auth_provider, provider_id, profile_image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.DB.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.DisplayName,
		user.AuthProvider,
		user.ProviderID,
		user.ProfileImageURL,
		user.CreatedAt,
	)
	if err != nil {
		return err
	}

	user.ID, err = result.LastInsertId()
	return err
}

func (s *MySQLStore) UpdateUserRole(ctx context.Context, id int64, role string) error {
	result, err := s.DB.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkUserProvider attaches social login details to an existing
// account, so the next provider login resolves to the same user.
func (s *MySQLStore) LinkUserProvider(ctx context.Context, id int64, provider, providerID string, profileImageURL *string) error {
	query := `
		UPDATE users
		SET auth_provider = ?, provider_id = ?, profile_image_url = COALESCE(?, profile_image_url)
		WHERE id = ?`

	result, err := s.DB.ExecContext(ctx, query, provider, providerID, profileImageURL, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQLStore) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		var passwordHash sql.NullString
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&passwordHash,
			&user.Role,
			&user.DisplayName,
			&user.AuthProvider,
			&user.ProviderID,
			&user.ProfileImageURL,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		user.PasswordHash = passwordHash.String
		users = append(users, &user)
	}
	return users, rows.Err()
}

func (s *MySQLStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
