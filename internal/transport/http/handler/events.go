package handler

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/ErlanBelekov/social-discovery/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 25 * time.Second

type stateEvent struct {
	SignedIn bool   `json:"signed_in"`
	UserID   string `json:"user_id,omitempty"`
	Loading  bool   `json:"loading"`
}

func newStateEvent(st domain.AuthState) stateEvent {
	ev := stateEvent{SignedIn: st.SignedIn(), Loading: st.Loading}
	if st.User != nil {
		ev.UserID = st.User.ID
	}
	return ev
}

// EventsHandler streams a client's auth state to its open pages.
type EventsHandler struct {
	logger    *slog.Logger
	keepAlive time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

func NewEventsHandler(logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		logger:    logger.With("component", "events_handler"),
		keepAlive: keepAliveInterval,
		done:      make(chan struct{}),
	}
}

// Close ends every open stream so the server can shut down.
func (h *EventsHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// GET /events
// Sends the current state, then every change, as "auth" events until the
// client disconnects or the store closes. A closed stream makes the browser
// reconnect and pick up a live instance.
func (h *EventsHandler) Stream(c *gin.Context) {
	store := middleware.CurrentInstance(c).Store

	// Latest state wins; the watcher runs under the store lock and must not block.
	updates := make(chan domain.AuthState, 1)
	cancel := store.Watch(func(st domain.AuthState) {
		select {
		case <-updates:
		default:
		}
		updates <- st
	})
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("auth", newStateEvent(store.Snapshot()))
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.DebugContext(ctx, "event stream closed")
			return
		case <-h.done:
			return
		case <-store.Done():
			h.logger.DebugContext(ctx, "store closed, ending event stream")
			return
		case st := <-updates:
			c.SSEvent("auth", newStateEvent(st))
		case <-ticker.C:
			c.SSEvent("ping", "")
		}
		c.Writer.Flush()
	}
}
