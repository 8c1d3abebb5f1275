package queue

import (
	"context"
	"testing"
	"time"

	"woostore/storefront/internal/config"
	"woostore/storefront/internal/domain/event"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStream(t *testing.T) (*RedisEventStream, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisEventStream(rdb, config.RedisConfig{ConsumerGroup: "storefront_consumer"}), rdb
}

func TestEnsureStream_Idempotent(t *testing.T) {
	ctx := context.Background()
	q, rdb := newStream(t)

	require.NoError(t, q.EnsureStream(ctx, event.OrderPlacedType))
	require.NoError(t, q.EnsureStream(ctx, event.OrderPlacedType))

	exists, err := rdb.Exists(ctx, "storefront:stream:OrderPlaced").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	pending, err := rdb.XPending(ctx, "storefront:stream:OrderPlaced", "storefront_consumer").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}

func TestPublishReadAck(t *testing.T) {
	ctx := context.Background()
	q, rdb := newStream(t)
	require.NoError(t, q.EnsureStream(ctx, event.OrderPlacedType))

	placed := &event.OrderPlaced{OrderID: 55, Number: "55", Total: "30.00", ItemCount: 3, PlacedAt: time.Unix(1700000000, 0).UTC()}
	id, err := q.Publish(ctx, placed)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := rdb.XRange(ctx, "storefront:stream:OrderPlaced", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "OrderPlaced", msgs[0].Values["event_type"])

	msg, err := q.Read(ctx, event.OrderPlacedType, "worker-1", 10*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, id, msg.ID)

	decoded, err := event.UnmarshalEvent[*event.OrderPlaced]([]byte(msg.Values["event_data"].(string)))
	require.NoError(t, err)
	assert.Equal(t, int64(55), decoded.OrderID)
	assert.Equal(t, 3, decoded.ItemCount)

	require.NoError(t, q.Ack(ctx, event.OrderPlacedType, msg.ID))
	pending, err := rdb.XPending(ctx, "storefront:stream:OrderPlaced", "storefront_consumer").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}
