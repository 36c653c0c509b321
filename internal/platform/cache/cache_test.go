package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopDeduperAlwaysFirst(t *testing.T) {
	d := NewDeduper(nil, "test:")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		first, err := d.FirstSeen(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.True(t, first)
	}
	assert.NoError(t, d.Forget(ctx, "k"))
}

func TestConnectWithoutAddr(t *testing.T) {
	rdb, err := Connect(context.Background(), "", "")
	require.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestRedisDeduper(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := Connect(ctx, addr, os.Getenv("TEST_REDIS_PASSWORD"))
	require.NoError(t, err)
	defer rdb.Close()

	d := NewDeduper(rdb, "test:")
	key := uuid.NewString()

	first, err := d.FirstSeen(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.FirstSeen(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, d.Forget(ctx, key))
	first, err = d.FirstSeen(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	require.NoError(t, d.Forget(ctx, key))
}
