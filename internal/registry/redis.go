package registry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/kivanctezoren/sanalkiwobot/internal/config"
)

// redisSet stores a registry as a redis set under "registry:<name>".
type redisSet struct {
	client *redis.Client
	key    string
}

func openRedisSet(cfg *config.RedisConfig, name string) (*redisSet, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &redisSet{client: client, key: "registry:" + name}, nil
}

func (s *redisSet) Add(ctx context.Context, id int64) error {
	return s.client.SAdd(ctx, s.key, id).Err()
}

func (s *redisSet) Remove(ctx context.Context, id int64) error {
	return s.client.SRem(ctx, s.key, id).Err()
}

func (s *redisSet) Contains(ctx context.Context, id int64) (bool, error) {
	return s.client.SIsMember(ctx, s.key, id).Result()
}

func (s *redisSet) All(ctx context.Context) ([]int64, error) {
	members, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}

	r := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("non-integer registry member %q: %w", m, err)
		}
		r = append(r, id)
	}
	return r, nil
}
