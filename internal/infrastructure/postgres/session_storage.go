package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is satisfied by *pgxpool.Pool and pgxmock pools.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const createSessionsTable = `CREATE TABLE IF NOT EXISTS auth_sessions (
	key        TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// SessionStorage keeps auth sessions in the auth_sessions table.
type SessionStorage struct {
	db DB
}

func NewSessionStorage(db DB) *SessionStorage {
	return &SessionStorage{db: db}
}

// EnsureSchema creates auth_sessions if it does not exist.
func (s *SessionStorage) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("create auth_sessions: %w", err)
	}
	return nil
}

func (s *SessionStorage) Load(ctx context.Context, key string) (*domain.Session, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT payload FROM auth_sessions WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select session: %w", err)
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

	_, err = s.db.Exec(ctx,
		`INSERT INTO auth_sessions (key, payload, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		key, raw,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SessionStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM auth_sessions WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStorage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
