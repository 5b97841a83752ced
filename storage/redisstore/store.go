// Package redisstore keeps secrets in Redis, under a key prefix.
package redisstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/potencialize/dashboard/core/auth"
)

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // ex.: "potencialize:"
}

type Store struct {
	client *redis.Client
	prefix string
}

var _ auth.SecretStore = (*Store)(nil)

// Open connects to Redis and pings it.
func Open(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "connecting to redis at %s", opts.Addr)
	}
	return &Store{client: client, prefix: opts.Prefix}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", auth.ErrSecretNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "reading secret %q", key)
	}
	return val, nil
}

// Set stores value without expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	err := s.client.Set(ctx, s.prefix+key, value, 0).Err()
	return errors.Wrapf(err, "storing secret %q", key)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, s.prefix+key).Result()
	if err != nil {
		return errors.Wrapf(err, "deleting secret %q", key)
	}
	if n == 0 {
		return auth.ErrSecretNotFound
	}
	return nil
}

func (s *Store) Close() error { return s.client.Close() }
