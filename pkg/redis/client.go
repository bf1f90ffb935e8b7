package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// Client is a redis client that also holds how long
// deployment metadata is kept before it expires
type Client struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewClient(host, port, username, password string, db int, ttl time.Duration) *Client {
	return NewClientFromOptions(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Username: username,
		Password: password,
		DB:       db,
	}, ttl)
}

func NewClientFromOptions(opts *goredis.Options, ttl time.Duration) *Client {
	return &Client{
		client: goredis.NewClient(opts),
		ttl:    ttl,
	}
}

// Set stores value under key, a zero ttl keeps the value forever
func (c *Client) Set(ctx context.Context, key, value string) error {
	_, err := c.client.Set(ctx, key, value, c.ttl).Result()
	if err != nil {
		return fmt.Errorf("error setting key %s. Error: %w", key, err)
	}

	return nil
}

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("error getting key %s. Error: %w", key, err)
	}

	return value, true, nil
}

// Ping checks that the server is reachable before a run starts writing to it
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.client.Close()
}
