package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magnet-school/marks-console/internal/models"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
)

// SessionRepository persists console sessions in Redis. The session record
// carries the upstream token and the user's edit-mode setting, so state
// survives console restarts and is discarded wholesale on logout.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository constructs a session repository with the given TTL.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionRepository{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return SessionsKeyPrefix + id
}

// Save stores or refreshes the session.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	if r.client == nil {
		return fmt.Errorf("session store unavailable")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.ID, err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", session.ID, err)
	}
	return nil
}

// Find loads the session by identifier.
func (r *SessionRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	if r.client == nil {
		return nil, appErrors.ErrSessionExpired
	}
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrSessionExpired
		}
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &session, nil
}

// Delete removes the session, ending it everywhere.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", id, err)
	}
	return nil
}
