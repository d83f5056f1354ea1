package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionTTL bounds how long an unused session survives in Redis. Refresh
// tokens outliving it simply require a new sign-in.
const SessionTTL = 7 * 24 * time.Hour

// SessionStorage keeps auth sessions as JSON under auth:session:<client>.
type SessionStorage struct {
	client *redis.Client
}

func NewSessionStorage(client *redis.Client) *SessionStorage {
	return &SessionStorage{client: client}
}

func (s *SessionStorage) Load(ctx context.Context, key string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *SessionStorage) Save(ctx context.Context, key string, session *domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(key), raw, SessionTTL).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *SessionStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, sessionKey(key)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func sessionKey(client string) string {
	return "auth:session:" + client
}
