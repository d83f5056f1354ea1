package authstate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ErlanBelekov/social-discovery/internal/authclient"
	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/ErlanBelekov/social-discovery/internal/metrics"
)

// AuthClient is everything views and the store need from a session client.
type AuthClient interface {
	SessionClient
	SignUp(ctx context.Context, email, password string) (*domain.SignUpResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
}

// ClientFactory builds the session client for a browser client id.
type ClientFactory func(clientID string) AuthClient

// Instance is one browser client's adapter and store.
type Instance struct {
	Client AuthClient
	Store  *Store
}

type entry struct {
	inst     *Instance
	ready    chan struct{}
	lastSeen time.Time
}

// Registry owns one Instance per client id and closes idle ones.
type Registry struct {
	factory ClientFactory
	idleTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegistry(factory ClientFactory, idleTTL time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		factory: factory,
		idleTTL: idleTTL,
		logger:  logger.With("component", "registry"),
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// NewClientFactory adapts authclient construction to a ClientFactory.
func NewClientFactory(api *authclient.API, storage authclient.Storage, logger *slog.Logger, opts ...authclient.Option) ClientFactory {
	return func(clientID string) AuthClient {
		return authclient.NewClient(api, storage, clientID, logger.With("client_id", clientID), opts...)
	}
}

// Get returns the mounted instance for clientID, creating it on first use.
// Concurrent first requests for the same id wait for a single mount.
func (r *Registry) Get(ctx context.Context, clientID string) *Instance {
	r.mu.Lock()
	if e, ok := r.entries[clientID]; ok {
		e.lastSeen = r.now()
		r.mu.Unlock()
		select {
		case <-e.ready:
		case <-ctx.Done():
		}
		return e.inst
	}

	client := r.factory(clientID)
	e := &entry{
		inst:     &Instance{Client: client, Store: NewStore(client, r.logger.With("client_id", clientID))},
		ready:    make(chan struct{}),
		lastSeen: r.now(),
	}
	r.entries[clientID] = e
	metrics.InstancesActive.Inc()
	r.mu.Unlock()

	// Mount outside the lock: the probe may refresh over the network.
	e.inst.Store.Mount(context.WithoutCancel(ctx))
	close(e.ready)
	return e.inst
}

// Transient returns an unregistered, signed-out instance for a client id
// minted on this request. Nothing can be stored under such an id yet, so it
// skips the probe and holds no subscription.
func (r *Registry) Transient(clientID string) *Instance {
	client := r.factory(clientID)
	return &Instance{Client: client, Store: newSignedOutStore(client, r.logger.With("client_id", clientID))}
}

// Sweep closes instances not used since idleTTL before now.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	var idle []*entry
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, e := range idle {
		e.inst.Store.Close()
		metrics.InstancesActive.Dec()
		metrics.InstancesEvictedTotal.Inc()
	}
	if len(idle) > 0 {
		r.logger.Info("evicted idle instances", "count", len(idle))
	}
	return len(idle)
}

// CloseAll tears down every instance. Used at shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.inst.Store.Close()
		metrics.InstancesActive.Dec()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
