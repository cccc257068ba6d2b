// Package auth manages the bearer token the console presents to the
// upstream catalog API: persisted with its expiry behind the state port,
// cleared on forced logout.
package auth

import (
	"context"
	"time"

	"github.com/seriesdesk/seriesdesk/internal/shared"
	"github.com/seriesdesk/seriesdesk/internal/state"
)

const (
	keyToken  = "auth:token"
	keyExpiry = "auth:expiry"
)

// TokenStore persists the upstream bearer token and its expiry.
type TokenStore struct {
	store state.Store
	now   func() time.Time
}

// NewTokenStore constructs a TokenStore. A nil clock uses time.Now.
func NewTokenStore(store state.Store, now func() time.Time) *TokenStore {
	if now == nil {
		now = time.Now
	}
	return &TokenStore{store: store, now: now}
}

// Save stores a fresh token and when it stops being valid.
func (s *TokenStore) Save(ctx context.Context, token string, expiry time.Time) error {
	if err := s.store.Set(ctx, keyToken, token); err != nil {
		return err
	}
	return s.store.Set(ctx, keyExpiry, expiry.UTC().Format(time.RFC3339))
}

// Token returns the current token. Missing or expired tokens yield
// ErrUnauthorized, which the console surface turns into a forced logout.
func (s *TokenStore) Token(ctx context.Context) (string, error) {
	token, ok, err := s.store.Get(ctx, keyToken)
	if err != nil {
		return "", err
	}
	if !ok || token == "" {
		return "", shared.ErrUnauthorized
	}
	raw, ok, err := s.store.Get(ctx, keyExpiry)
	if err != nil {
		return "", err
	}
	if ok {
		expiry, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr == nil && !s.now().Before(expiry) {
			return "", shared.ErrUnauthorized
		}
	}
	return token, nil
}

// Valid reports whether a usable token is stored.
func (s *TokenStore) Valid(ctx context.Context) bool {
	_, err := s.Token(ctx)
	return err == nil
}

// Clear drops the stored token, the forced-logout path.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, keyToken); err != nil {
		return err
	}
	return s.store.Delete(ctx, keyExpiry)
}
