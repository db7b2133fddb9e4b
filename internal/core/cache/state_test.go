package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreTakeConsumes(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "nonce-1", time.Minute))

	ok, err := s.Take(ctx, "nonce-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// one-shot
	ok, err = s.Take(ctx, "nonce-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreUnknownKey(t *testing.T) {
	s := NewMemory()
	ok, err := s.Take(context.Background(), "never-stored")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "short", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	ok, err := s.Take(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}
