package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/potencialize/dashboard/core"
)

var ErrSecretNotFound = errors.New("secret not found")

// SecretStore is durable client storage (the refresh secret lives here in bearer mode).
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// CookieClearer forgets the session cookies of cookie mode, in memory and in durable storage.
type CookieClearer interface {
	Clear()
}

// storeTimeout bounds a single durable storage call.
var storeTimeout = 5 * time.Second

// Credentials holds the access and refresh secrets of the running process.
//
// The access secret is kept in memory only and is lost when the process exits.
// The refresh secret is persisted in the SecretStore under refreshKey.
// Storage failures are logged and read as "absent".
// In cookie mode the session lives in cookies: ClearAll also clears them.
type Credentials struct {
	mu         sync.RWMutex
	access     string
	store      SecretStore
	refreshKey string
	cookies    CookieClearer
	logger     core.Logger
}

func NewCredentials(store SecretStore, refreshKey string, logger core.Logger) *Credentials {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Credentials{
		store:      store,
		refreshKey: refreshKey,
		logger:     logger,
	}
}

// UseCookies makes ClearAll forget the cookies of jar too.
func (c *Credentials) UseCookies(jar CookieClearer) {
	c.mu.Lock()
	c.cookies = jar
	c.mu.Unlock()
}

func (c *Credentials) SetAccess(secret string) {
	c.mu.Lock()
	c.access = secret
	c.mu.Unlock()
}

func (c *Credentials) Access() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access
}

// SetRefresh persists secret; an empty secret removes the stored entry.
func (c *Credentials) SetRefresh(secret string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if secret == "" {
		c.deleteRefresh(ctx)
		return
	}
	if err := c.store.Set(ctx, c.refreshKey, secret); err != nil {
		c.logger.Error("storing refresh secret", errors.Wrap(err, "credentials.SetRefresh"))
	}
}

func (c *Credentials) Refresh() string {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	c.mu.RLock()
	defer c.mu.RUnlock()
	secret, err := c.store.Get(ctx, c.refreshKey)
	if err != nil {
		if !errors.Is(err, ErrSecretNotFound) {
			c.logger.Error("reading refresh secret", errors.Wrap(err, "credentials.Refresh"))
		}
		return ""
	}
	return secret
}

func (c *Credentials) HasRefresh() bool { return c.Refresh() != "" }

// ClearAll forgets both secrets and the session cookies.
func (c *Credentials) ClearAll() {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = ""
	c.deleteRefresh(ctx)
	if c.cookies != nil {
		c.cookies.Clear()
	}
}

func (c *Credentials) deleteRefresh(ctx context.Context) {
	if err := c.store.Delete(ctx, c.refreshKey); err != nil && !errors.Is(err, ErrSecretNotFound) {
		c.logger.Error("deleting refresh secret", errors.Wrap(err, "credentials.deleteRefresh"))
	}
}
