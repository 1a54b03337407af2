package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskloop-ai/taskchat/internal/model"
)

// ErrEmailTaken is returned when a signup reuses an existing email.
var ErrEmailTaken = errors.New("email already registered")

// CreateUser registers a new account. The password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (*model.User, error) {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, name, password_hash, created_at) VALUES (?, ?, ?, ?)",
		email, name, passwordHash, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}
	return &model.User{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Unix(now, 0),
	}, nil
}

// GetUserByEmail looks an account up for login.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?",
		email,
	)
	return scanUser(row)
}

// GetUser returns an account by id.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?",
		id,
	)
	return scanUser(row)
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		user      model.User
		createdAt int64
	)
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	user.CreatedAt = time.Unix(createdAt, 0)
	return &user, nil
}
