package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/social-discovery/internal/authclient"
	"github.com/ErlanBelekov/social-discovery/internal/authstate"
	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/ErlanBelekov/social-discovery/internal/transport/http/handler"
	"github.com/ErlanBelekov/social-discovery/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// signedInClient reports one cached session and never changes.
type signedInClient struct{}

func (signedInClient) GetSession(context.Context) (*domain.Session, error) {
	return &domain.Session{User: domain.User{ID: "u1", Email: "ada@example.com"}}, nil
}

func (signedInClient) OnAuthStateChange(authclient.Listener) *authclient.Subscription {
	return authclient.NewSubscription(func() {})
}

func (signedInClient) SignOut(context.Context) error { return nil }

type staticInstances struct {
	inst *authstate.Instance
}

func (s staticInstances) Get(context.Context, string) *authstate.Instance { return s.inst }

func (s staticInstances) Transient(string) *authstate.Instance { return s.inst }

func TestEventsStream_SendsSnapshotAndEndsOnClose(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := authstate.NewStore(signedInClient{}, logger)
	store.Mount(context.Background())
	defer store.Close()

	h := handler.NewEventsHandler(logger)
	r := gin.New()
	r.GET("/events", middleware.Instance(staticInstances{&authstate.Instance{Store: store}}, false), h.Stream)

	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
		close(done)
	}()

	h.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after Close")
	}

	body := w.Body.String()
	if !strings.Contains(body, "event:auth") {
		t.Fatalf("no auth event in %q", body)
	}
	if !strings.Contains(body, `"user_id":"u1"`) || !strings.Contains(body, `"signed_in":true`) {
		t.Errorf("snapshot event = %q", body)
	}
}

func TestEventsStream_EndsWhenStoreCloses(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := authstate.NewStore(signedInClient{}, logger)
	store.Mount(context.Background())

	h := handler.NewEventsHandler(logger)
	defer h.Close()
	r := gin.New()
	r.GET("/events", middleware.Instance(staticInstances{&authstate.Instance{Store: store}}, false), h.Stream)

	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
		close(done)
	}()

	store.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream kept running after its store closed")
	}
}
