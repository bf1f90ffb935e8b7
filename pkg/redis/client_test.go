package redis

import (
	"context"
	"net"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient skips when no redis server is listening locally
func newTestClient(t *testing.T) *Client {
	t.Helper()

	conn, err := net.DialTimeout("tcp", "localhost:6379", 200*time.Millisecond)
	if err != nil {
		t.Skip("redis is not running on localhost:6379")
	}

	conn.Close()

	client := NewClient("localhost", "6379", "", "", 0, time.Minute)

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func TestSetAndGet(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	key := "deployment:argocd:redis-test:previous_version"

	require.NoError(t, client.Set(ctx, key, "42"))

	value, ok, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", value)
}

func TestGetMissing(t *testing.T) {
	client := newTestClient(t)

	_, ok, err := client.Get(context.Background(), "deployment:argocd:redis-test:never-set")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetUnreachable(t *testing.T) {
	client := NewClientFromOptions(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}, 0)
	defer client.Close()

	_, ok, err := client.Get(context.Background(), "deployment:argocd:guestbook:status")
	assert.Error(t, err)
	assert.False(t, ok)
}
