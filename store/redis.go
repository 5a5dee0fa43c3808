package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gclaussn/go-procdoc/model"
	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
)

const (
	redisKeyPrefix = "procdoc:document:"
	redisIndexKey  = "procdoc:documents" // set of all document names
)

// NewRedisStore creates a store, which keeps each document as a string value under the key procdoc:document:<name>.
func NewRedisStore(ctx context.Context, url string, customizers ...func(*Options)) (*RedisStore, error) {
	options := newOptions(customizers)

	redisOptions, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(redisOptions)

	pingCtx, cancel := context.WithTimeout(ctx, options.Timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to connect to Redis: %v", err), client.Close())
	}

	options.Logger.V(1).Info("connected to Redis", "addr", redisOptions.Addr, "db", redisOptions.DB)

	return &RedisStore{client: client, logger: options.Logger}, nil
}

type RedisStore struct {
	client *redis.Client
	logger logr.Logger
}

func (s *RedisStore) Save(ctx context.Context, name string, d *model.Document) error {
	if err := checkName(name); err != nil {
		return err
	}

	data, err := model.Marshal(d)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKeyPrefix+name, data, 0)
		pipe.SAdd(ctx, redisIndexKey, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save document %s: %v", name, err)
	}

	d.MarkSaved()

	s.logger.V(1).Info("saved document", "name", name)
	return nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (*model.Document, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, redisKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound("failed to load document", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %v", name, err)
	}

	return decode(name, data, s.logger)
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %v", err)
	}

	slices.Sort(names)
	return names, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisKeyPrefix+name)
		pipe.SRem(ctx, redisIndexKey, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %v", name, err)
	}
	if del.Val() == 0 {
		return notFound("failed to delete document", name)
	}

	s.logger.V(1).Info("deleted document", "name", name)
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
