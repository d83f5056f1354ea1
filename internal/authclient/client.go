package authclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/ErlanBelekov/social-discovery/internal/metrics"
	"github.com/golang-jwt/jwt/v5"
)

// refreshMargin treats a session as expired slightly early so a token does
// not lapse between GetSession and its use.
const refreshMargin = 10 * time.Second

// remote is the subset of API the client needs.
// Defined here (point of use) so tests can inject a fake.
type remote interface {
	SignUp(ctx context.Context, email, password string) (*domain.SignUpResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error)
	Logout(ctx context.Context, accessToken string) error
}

// Listener receives auth change events. session is nil on SIGNED_OUT.
type Listener func(event domain.AuthEvent, session *domain.Session)

// Subscription is returned by OnAuthStateChange.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps cancel so it runs at most once.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe stops delivery. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Client is the per-instance session adapter: it caches the current session,
// persists it to Storage and notifies listeners of changes.
type Client struct {
	api       remote
	storage   Storage
	key       string
	jwtSecret []byte
	logger    *slog.Logger
	now       func() time.Time

	// emu is held from a state change until its event has been delivered,
	// so listeners see events in commit order. Lock order: emu, then mu.
	emu     sync.Mutex
	mu      sync.Mutex
	session *domain.Session
	loaded  bool

	lmu       sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
}

type Option func(*Client)

// WithJWTSecret enables signature checks on sessions loaded from storage.
func WithJWTSecret(secret string) Option {
	return func(c *Client) {
		if secret != "" {
			c.jwtSecret = []byte(secret)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(api remote, storage Storage, key string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		api:       api,
		storage:   storage,
		key:       key,
		logger:    logger.With("component", "auth_client"),
		now:       time.Now,
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignUp creates an account. A result without Session means the user must
// confirm their email before signing in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.SignUpResult, error) {
	res, err := c.api.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if res.Session != nil {
		c.commit(ctx, res.Session, domain.EventSignedIn)
	}
	return res, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := c.api.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.commit(ctx, session, domain.EventSignedIn)
	return copySession(session), nil
}

// SignOut drops the local session first, then revokes it remotely. The
// remote error is returned for logging only; the local session is gone
// either way.
func (c *Client) SignOut(ctx context.Context) error {
	c.emu.Lock()
	c.mu.Lock()
	if !c.loaded {
		if err := c.loadLocked(ctx); err != nil {
			c.logger.WarnContext(ctx, "load stored session", "error", err)
		}
	}
	prev := c.session
	c.session = nil
	if prev != nil {
		if err := c.storage.Delete(ctx, c.key); err != nil {
			c.logger.WarnContext(ctx, "delete stored session", "error", err)
		}
	}
	c.mu.Unlock()

	if prev == nil {
		c.emu.Unlock()
		return nil
	}
	c.emit(domain.EventSignedOut, nil)
	c.emu.Unlock()

	if err := c.api.Logout(ctx, prev.AccessToken); err != nil {
		return fmt.Errorf("remote sign out: %w", err)
	}
	return nil
}

// GetSession returns the current session or nil. Expired sessions are
// refreshed; a refresh the service rejects signs the client out.
func (c *Client) GetSession(ctx context.Context) (*domain.Session, error) {
	c.emu.Lock()
	defer c.emu.Unlock()

	c.mu.Lock()
	if !c.loaded {
		if err := c.loadLocked(ctx); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}
	current := c.session
	if current == nil || !current.ExpiresWithin(c.now(), refreshMargin) {
		c.mu.Unlock()
		return copySession(current), nil
	}

	refreshed, err := c.api.RefreshSession(ctx, current.RefreshToken)
	if err != nil {
		if _, ok := domain.AsAuthError(err); !ok {
			c.mu.Unlock()
			return nil, fmt.Errorf("refresh session: %w", err)
		}
		c.logger.InfoContext(ctx, "refresh rejected, signing out", "error", err)
		c.session = nil
		if derr := c.storage.Delete(ctx, c.key); derr != nil {
			c.logger.WarnContext(ctx, "delete stored session", "error", derr)
		}
		c.mu.Unlock()
		c.emit(domain.EventSignedOut, nil)
		return nil, nil
	}

	c.storeLocked(ctx, refreshed)
	c.mu.Unlock()
	c.emit(domain.EventTokenRefreshed, refreshed)
	return copySession(refreshed), nil
}

// OnAuthStateChange registers fn for SIGNED_IN, SIGNED_OUT and
// TOKEN_REFRESHED events. Events arrive in the order their state was
// committed; fn must not call back into the client.
func (c *Client) OnAuthStateChange(fn Listener) *Subscription {
	c.lmu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.lmu.Unlock()

	return NewSubscription(func() {
		c.lmu.Lock()
		delete(c.listeners, id)
		c.lmu.Unlock()
	})
}

func (c *Client) commit(ctx context.Context, session *domain.Session, event domain.AuthEvent) {
	c.emu.Lock()
	defer c.emu.Unlock()

	c.mu.Lock()
	c.loaded = true
	c.storeLocked(ctx, session)
	c.mu.Unlock()
	c.emit(event, session)
}

func (c *Client) storeLocked(ctx context.Context, session *domain.Session) {
	c.session = copySession(session)
	if err := c.storage.Save(ctx, c.key, session); err != nil {
		c.logger.WarnContext(ctx, "save session", "error", err)
	}
}

// loadLocked leaves loaded unset on error so the next call retries storage.
func (c *Client) loadLocked(ctx context.Context) error {
	session, err := c.storage.Load(ctx, c.key)
	if err != nil {
		return fmt.Errorf("load stored session: %w", err)
	}
	c.loaded = true

	if session != nil && c.jwtSecret != nil {
		if err := c.verify(session.AccessToken); err != nil {
			c.logger.WarnContext(ctx, "discarding stored session", "error", err)
			_ = c.storage.Delete(ctx, c.key)
			session = nil
		}
	}
	c.session = session
	return nil
}

// verify checks the token signature only; expiry is handled by refresh.
func (c *Client) verify(accessToken string) error {
	_, err := jwt.Parse(accessToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.jwtSecret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	return nil
}

func (c *Client) emit(event domain.AuthEvent, session *domain.Session) {
	metrics.AuthEventsTotal.WithLabelValues(string(event)).Inc()

	c.lmu.Lock()
	fns := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.lmu.Unlock()

	for _, fn := range fns {
		fn(event, copySession(session))
	}
}

func copySession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
