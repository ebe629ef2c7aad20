package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LocalBackend(t *testing.T) {
	ctx := context.Background()
	c, ps, closeFn, err := New(CacheConfig{LocalGCInterval: time.Minute})
	require.NoError(t, err)
	defer closeFn()

	_, err = c.Get(ctx, SnapshotKey)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(nil))

	msgs, cancel, err := ps.Subscribe(ctx, EventsChannel)
	require.NoError(t, err)
	defer cancel()
	require.NoError(t, ps.Publish(ctx, EventsChannel, `{"type":"combat_started"}`))
	select {
	case m := <-msgs:
		assert.Equal(t, EventsChannel, m.Channel)
		assert.JSONEq(t, `{"type":"combat_started"}`, m.Payload)
	case <-time.After(time.Second):
		t.Fatal("no message relayed")
	}
}

func TestPushCapped(t *testing.T) {
	ctx := context.Background()
	c, _, closeFn, err := New(CacheConfig{})
	require.NoError(t, err)
	defer closeFn()

	for _, v := range []string{"1", "2", "3", "4"} {
		require.NoError(t, PushCapped(ctx, c, EventLogKey, v, 3))
	}
	got, err := c.LRange(ctx, EventLogKey, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3", "2"}, got)
}
