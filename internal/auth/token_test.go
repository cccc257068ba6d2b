package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seriesdesk/seriesdesk/internal/shared"
	"github.com/seriesdesk/seriesdesk/internal/state"
)

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	s := NewTokenStore(state.NewMemory(), func() time.Time { return now })

	_, err := s.Token(ctx)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
	require.False(t, s.Valid(ctx))

	require.NoError(t, s.Save(ctx, "bearer-xyz", now.Add(time.Hour)))
	token, err := s.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "bearer-xyz", token)
	require.True(t, s.Valid(ctx))

	require.NoError(t, s.Clear(ctx))
	require.False(t, s.Valid(ctx))
}

func TestTokenExpiry(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	s := NewTokenStore(state.NewMemory(), func() time.Time { return current })

	require.NoError(t, s.Save(ctx, "bearer-xyz", current.Add(time.Minute)))
	require.True(t, s.Valid(ctx))

	current = current.Add(2 * time.Minute)
	_, err := s.Token(ctx)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}
