package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"carloan-service/internal/clients"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side state behind one login cookie.
type Session struct {
	UserID    int64 `json:"uid"`
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

// SessionStore issues and resolves opaque session tokens. Redis backs it in
// production; MemorySessionStore covers tests and single-node dev runs.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

func sessionKey(token string) string { return fmt.Sprintf("sess:%s", token) }

type RedisSessionStore struct {
	redis *clients.RedisClient
	ttl   time.Duration
}

func NewRedisSessionStore(redis *clients.RedisClient, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{redis: redis, ttl: ttl}
}

func (s *RedisSessionStore) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	now := time.Now()

	b, err := json.Marshal(Session{
		UserID:    userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return "", err
	}

	if err := s.redis.Set(ctx, sessionKey(token), b, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(token))
	if err != nil {
		return nil, ErrSessionNotFound
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return s.redis.Del(ctx, sessionKey(token))
}

// MemorySessionStore is the in-process fallback with the same contract.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
	}
}

func (s *MemorySessionStore) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = Session{
		UserID:    userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	return token, nil
}

func (s *MemorySessionStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().Unix() > sess.ExpiresAt {
		delete(s.sessions, token)
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
