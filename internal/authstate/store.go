// Package authstate holds the per-client auth state machine
// (Unknown → Checking → Resolved) and the registry that owns one store per
// browser client.
package authstate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ErlanBelekov/social-discovery/internal/authclient"
	"github.com/ErlanBelekov/social-discovery/internal/domain"
)

// SessionClient is the subset of *authclient.Client the store needs.
type SessionClient interface {
	GetSession(ctx context.Context) (*domain.Session, error)
	OnAuthStateChange(fn authclient.Listener) *authclient.Subscription
	SignOut(ctx context.Context) error
}

// Store tracks the current user of one client. It is written only by Mount,
// SignOut and the client's change events.
type Store struct {
	client SessionClient
	logger *slog.Logger

	mu       sync.Mutex
	state    domain.AuthState
	version  uint64 // bumped by events and SignOut; a probe result older than it is dropped
	sub      *authclient.Subscription
	mounted  bool
	closed   bool
	done     chan struct{}
	watchers map[uint64]func(domain.AuthState)
	nextID   uint64
}

func NewStore(client SessionClient, logger *slog.Logger) *Store {
	return &Store{
		client:   client,
		logger:   logger.With("component", "auth_store"),
		state:    domain.AuthState{Phase: domain.PhaseUnknown},
		done:     make(chan struct{}),
		watchers: make(map[uint64]func(domain.AuthState)),
	}
}

// newSignedOutStore returns a closed store resolved to signed out, for a
// client id that cannot have anything stored yet.
func newSignedOutStore(client SessionClient, logger *slog.Logger) *Store {
	s := NewStore(client, logger)
	s.mounted = true
	s.state = domain.AuthState{Phase: domain.PhaseResolved}
	s.closed = true
	close(s.done)
	return s
}

// Mount subscribes to change events and probes the current session. A
// failed probe is logged and resolves to signed out. An event or SignOut
// that lands while the probe is in flight wins over the probe result. Mount
// runs once; later calls return immediately.
func (s *Store) Mount(ctx context.Context) {
	s.mu.Lock()
	if s.mounted || s.closed {
		s.mu.Unlock()
		return
	}
	s.mounted = true
	s.set(domain.AuthState{Loading: true, Phase: domain.PhaseChecking})
	s.sub = s.client.OnAuthStateChange(s.onChange)
	seen := s.version
	s.mu.Unlock()

	session, err := s.client.GetSession(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "check session", "error", err)
		session = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.version != seen {
		return
	}
	s.set(domain.AuthState{User: userOf(session), Phase: domain.PhaseResolved})
}

func (s *Store) onChange(event domain.AuthEvent, session *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.logger.Debug("auth change", "event", event)
	s.version++
	s.set(domain.AuthState{User: userOf(session), Phase: domain.PhaseResolved})
}

// SignOut asks the client to sign out and clears the user without waiting
// for the change event. A failed remote sign-out still leaves the store
// signed out.
func (s *Store) SignOut(ctx context.Context) {
	if err := s.client.SignOut(ctx); err != nil {
		s.logger.WarnContext(ctx, "sign out", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.version++
	s.set(domain.AuthState{Phase: domain.PhaseResolved})
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Watch calls fn with every state change until cancel is called or the
// store closes. fn runs with the store locked and must not call back into it.
func (s *Store) Watch(fn func(domain.AuthState)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.watchers[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// Done is closed when the store closes. Watchers get no further changes
// after that.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// Close unsubscribes from the client and drops all watchers. Idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
	clear(s.watchers)
}

// set must be called with mu held.
func (s *Store) set(next domain.AuthState) {
	s.state = next
	for _, fn := range s.watchers {
		fn(cloneState(next))
	}
}

func userOf(session *domain.Session) *domain.User {
	if session == nil {
		return nil
	}
	u := session.User
	return &u
}

func cloneState(st domain.AuthState) domain.AuthState {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}
