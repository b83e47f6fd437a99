package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"stockcount-api/internal/cache"
	"stockcount-api/internal/model"
	"stockcount-api/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenPrefix is the prefix for all session tokens
	TokenPrefix = "sct_"

	// DefaultSessionTTL is used when no TTL is configured.
	DefaultSessionTTL = 12 * time.Hour

	sessionKeyPrefix = "session:"
)

// SessionService handles login and session token lifecycle. Tokens are
// stored under an HMAC of the token so the store never holds a usable value.
type SessionService struct {
	store  cache.Cache
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
}

// NewSessionService creates a new session service.
func NewSessionService(store cache.Cache, users repository.UserRepository, secretKey string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		store:  store,
		users:  users,
		secret: []byte(secretKey),
		ttl:    ttl,
	}
}

// TTL returns the session lifetime.
func (s *SessionService) TTL() time.Duration { return s.ttl }

func (s *SessionService) key(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return sessionKeyPrefix + hex.EncodeToString(mac.Sum(nil))
}

// Login checks the credentials and opens a session.
func (s *SessionService) Login(ctx context.Context, username, password string) (string, *model.SessionData, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || s.users == nil {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		log.Printf("[SessionService] Login failed: unknown user %q", username)
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("[SessionService] Login failed: bad password for %q", username)
		return "", nil, ErrInvalidCredentials
	}

	return s.Generate(ctx, user)
}

// Generate creates a new session token for user and stores it.
func (s *SessionService) Generate(ctx context.Context, user *model.User) (string, *model.SessionData, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	token := TokenPrefix + hex.EncodeToString(tokenBytes)

	now := time.Now()
	data := &model.SessionData{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to serialize session: %w", err)
	}
	if err := s.store.Set(ctx, s.key(token), jsonData, s.ttl); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	log.Printf("[SessionService] Session opened for %s (%s), expires=%v", user.Username, user.Role, data.ExpiresAt)
	return token, data, nil
}

// Validate returns the session data for a live token.
func (s *SessionService) Validate(ctx context.Context, token string) (*model.SessionData, error) {
	if !strings.HasPrefix(token, TokenPrefix) || len(token) == len(TokenPrefix) {
		return nil, ErrInvalidSession
	}

	key := s.key(token)
	jsonData, err := s.store.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var data model.SessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	if time.Now().After(data.ExpiresAt) {
		s.store.Delete(ctx, key)
		return nil, ErrInvalidSession
	}

	return &data, nil
}

// Revoke deletes a session.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.Delete(ctx, s.key(token))
}
