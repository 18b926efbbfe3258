package redisstore

import (
	"context"
	"fmt"
	"tasc/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Client struct {
	Cfg config.Redis
	Rdb *redis.Client
}

func New(cfg config.Redis) *Client {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Client{Cfg: cfg, Rdb: c}
}

// Connect checks the server is reachable.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	log.Ctx(ctx).Debug().Str("addr", c.Cfg.Addr).Int("db", c.Cfg.DB).Msg("connected to redis")
	return nil
}

func (c *Client) Close() error {
	return c.Rdb.Close()
}

func (c *Client) taskKey(id string) string {
	return c.Cfg.KeyPrefix + "task:" + id
}

func (c *Client) nameKey(name string) string {
	return c.Cfg.KeyPrefix + "task-name:" + name
}
