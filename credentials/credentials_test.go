package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_StringMasksSecret(t *testing.T) {
	c := Credentials{Identity: "bob", Credential: "s3cret-value"}
	assert.NotContains(t, c.String(), "s3cret-value")
	assert.Contains(t, c.String(), "bob:")
	assert.False(t, c.IsZero())
	assert.True(t, Credentials{}.IsZero())
}

func TestStatic(t *testing.T) {
	c, err := Static(Credentials{Identity: "bob"}).Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bob", c.Identity)
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "k", &Credentials{Identity: "a"}, time.Minute))
	require.NoError(t, s.Save(ctx, "forever", &Credentials{Identity: "b"}, 0))

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Identity)

	now = now.Add(2 * time.Minute)
	got, err = s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, s.Len())

	got, _ = s.Load(ctx, "forever")
	require.NotNil(t, got)

	require.NoError(t, s.Delete(ctx, "forever"))
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	in := &Credentials{Identity: "a"}
	require.NoError(t, s.Save(ctx, "k", in, 0))
	in.Identity = "changed"

	got, _ := s.Load(ctx, "k")
	got.Identity = "mutated"
	again, _ := s.Load(ctx, "k")
	assert.Equal(t, "a", again.Identity)
}

func TestCached(t *testing.T) {
	calls := 0
	next := SupplierFunc(func(context.Context) (Credentials, error) {
		calls++
		return Credentials{Identity: "bob", Credential: "token"}, nil
	})
	s := Cached(NewMemoryStore(), "acme", time.Hour, next)

	for range 3 {
		c, err := s.Credentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "token", c.Credential)
	}
	assert.Equal(t, 1, calls)
}

func TestCached_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	s := Cached(NewMemoryStore(), "acme", 0, SupplierFunc(func(context.Context) (Credentials, error) {
		return Credentials{}, boom
	}))
	_, err := s.Credentials(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFromStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := FromStore(store, "acme", Credentials{Identity: "default"})

	c, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", c.Identity)

	require.NoError(t, store.Save(ctx, "acme", &Credentials{Identity: "rotated"}, 0))
	c, _ = s.Credentials(ctx)
	assert.Equal(t, "rotated", c.Identity)
}
