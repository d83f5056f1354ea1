package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/ErlanBelekov/social-discovery/internal/infrastructure/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new pgxmock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func testSession() *domain.Session {
	return &domain.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "bearer",
		ExpiresAt:    time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC),
		User:         domain.User{ID: "user-1", Email: "ada@example.com"},
	}
}

func TestLoad_ReturnsDecodedSession(t *testing.T) {
	mock := newMock(t)
	raw, _ := json.Marshal(testSession())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM auth_sessions WHERE key = $1`)).
		WithArgs("client-1").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(raw))

	got, err := postgres.NewSessionStorage(mock).Load(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.User.Email != "ada@example.com" || got.AccessToken != "access-1" {
		t.Fatalf("session = %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLoad_NoRows_ReturnsNil(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM auth_sessions`)).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := postgres.NewSessionStorage(mock).Load(context.Background(), "missing")
	if err != nil || got != nil {
		t.Fatalf("Load = %+v, %v; want nil, nil", got, err)
	}
}

func TestLoad_QueryError_Propagates(t *testing.T) {
	mock := newMock(t)
	dbErr := errors.New("conn reset")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM auth_sessions`)).
		WithArgs("client-1").
		WillReturnError(dbErr)

	_, err := postgres.NewSessionStorage(mock).Load(context.Background(), "client-1")
	if !errors.Is(err, dbErr) {
		t.Fatalf("want wrapped dbErr, got %v", err)
	}
}

func TestSave_Upserts(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO auth_sessions`)).
		WithArgs("client-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := postgres.NewSessionStorage(mock).Save(context.Background(), "client-1", testSession()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDelete_RemovesRow(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM auth_sessions WHERE key = $1`)).
		WithArgs("client-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := postgres.NewSessionStorage(mock).Delete(context.Background(), "client-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestEnsureSchema_CreatesTable(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS auth_sessions`)).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	if err := postgres.NewSessionStorage(mock).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
