package cache

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache using Redis as backend.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisCache(connectionString string, db int) (*RedisCache, error) {
	u, err := url.Parse(connectionString)
	if err != nil {
		return nil, err
	}

	password, _ := u.User.Password()
	client := redis.NewClient(&redis.Options{
		Addr:     u.Host,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client, ctx: ctx}, nil
}

func (c *RedisCache) Set(key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(c.ctx, key, data, ttl).Err()
}

func (c *RedisCache) Get(key string, dest interface{}) error {
	data, err := c.client.Get(c.ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrKeyNotFound
		}
		return err
	}

	return json.Unmarshal(data, dest)
}

func (c *RedisCache) Has(key string) (bool, error) {
	exists, err := c.client.Exists(c.ctx, key).Result()
	if err != nil {
		return false, err
	}

	return exists > 0, nil
}

func (c *RedisCache) Delete(key string) error {
	return c.client.Del(c.ctx, key).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
