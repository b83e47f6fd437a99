package repository

import (
	"context"
	"fmt"
	"strings"

	"stockcount-api/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// StaticUserRepository serves accounts configured through the environment.
// Passwords are hashed once at construction.
type StaticUserRepository struct {
	users map[string]*model.User
}

// NewStaticUserRepository parses "username:password:role" entries.
func NewStaticUserRepository(entries []string) (*StaticUserRepository, error) {
	repo := &StaticUserRepository{users: make(map[string]*model.User, len(entries))}

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid user entry %q, want username:password:role", entry)
		}

		role := strings.ToLower(parts[2])
		if role != model.RoleAdmin && role != model.RoleStaff {
			return nil, fmt.Errorf("invalid role %q for user %s", parts[2], parts[0])
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(parts[1]), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", parts[0], err)
		}

		repo.users[parts[0]] = &model.User{
			ID:           "static:" + parts[0],
			Username:     parts[0],
			PasswordHash: string(hash),
			Role:         role,
		}
	}

	return repo, nil
}

// GetUserByUsername returns a configured user or nil.
func (r *StaticUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

// Ensure StaticUserRepository implements UserRepository
var _ UserRepository = (*StaticUserRepository)(nil)
