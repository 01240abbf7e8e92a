package cachex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.Now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "a", []byte("1"), 5*time.Minute))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), time.Hour))

	now = now.Add(5*time.Minute - time.Second)
	_, ok, _ := m.Get(ctx, "a")
	require.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = m.Get(ctx, "a")
	require.False(t, ok, "entry is gone at exactly its TTL")

	require.NoError(t, m.Set(ctx, "c", []byte("3"), time.Second))
	now = now.Add(2 * time.Second)
	require.Equal(t, 1, m.Sweep())
	require.Equal(t, 1, m.Len())
}

func TestMemory_ValueIsCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	v := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", v, time.Minute))
	v[0] = 'X'

	got, _, _ := m.Get(ctx, "k")
	require.Equal(t, "abc", string(got))
}

func TestMemory_NonPositiveTTLDeletes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	_, ok, _ := m.Get(ctx, "k")
	require.False(t, ok)
}

func TestMemory_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Close())

	_, _, err := m.Get(ctx, "k")
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, m.Set(ctx, "k", nil, time.Second), ErrClosed)
	require.ErrorIs(t, m.Ping(ctx), ErrClosed)
}
