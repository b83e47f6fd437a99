package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"stockcount-api/internal/model"
)

// MySQLUserRepository implements UserRepository using MySQL.
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQL user repository and ensures the users table exists.
func NewMySQLUserRepository(ctx context.Context, db *sql.DB) (*MySQLUserRepository, error) {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(64) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(16) NOT NULL DEFAULT 'staff',
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	log.Println("[MySQLUserRepository] Initialized")
	return &MySQLUserRepository{db: db}, nil
}

// GetUserByUsername finds an active user.
func (r *MySQLUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT id, username, password_hash, role FROM users WHERE username = ? AND is_active = 1 LIMIT 1`

	var user model.User
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}

	return &user, nil
}

// Ensure MySQLUserRepository implements UserRepository
var _ UserRepository = (*MySQLUserRepository)(nil)
