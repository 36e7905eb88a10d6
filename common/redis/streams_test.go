package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamConsumerGroup(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	_, err := PublishJSONToStream(ctx, client, "site:routes", 10, map[string]string{"host": "before"})
	require.NoError(t, err)

	require.NoError(t, CreateConsumerGroup(ctx, client, "site:routes", "edge"))
	require.NoError(t, CreateConsumerGroup(ctx, client, "site:routes", "edge"))

	_, err = PublishJSONToStream(ctx, client, "site:routes", 10, map[string]string{"host": "bella"})
	require.NoError(t, err)

	msgs, err := ReadFromStream(ctx, client, "site:routes", "edge", "c1", 10, 10*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.JSONEq(t, `{"host":"bella"}`, msgs[0].Data)
	assert.WithinDuration(t, time.Now(), msgs[0].At, 5*time.Second)
	require.NoError(t, AckStream(ctx, client, "site:routes", "edge", msgs[0].ID))

	msgs, err = ReadFromStream(ctx, client, "site:routes", "edge", "c1", 10, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
