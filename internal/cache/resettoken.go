// Package cache holds short-lived auth state in Redis. Today that is only
// password-reset tokens, which need a TTL and exactly-once redemption.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unicorn-hrms/backend/internal/config"
)

var ErrTokenNotFound = errors.New("reset token not found")

const resetKeyPrefix = "pwdreset:"

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	dbNum := 0
	if cfg.DB != "" {
		n, err := strconv.Atoi(cfg.DB)
		if err != nil {
			return nil, errors.New("invalid REDIS_DB")
		}
		dbNum = n
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       dbNum,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// ResetTokenStore maps a reset token to the email it was issued for.
type ResetTokenStore struct {
	client *redis.Client
}

func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

func (s *ResetTokenStore) Save(ctx context.Context, token, email string, ttl time.Duration) error {
	return s.client.Set(ctx, resetKeyPrefix+token, email, ttl).Err()
}

// Spend returns the email for a live token and deletes it in the same
// operation, so two racing resets cannot both redeem it.
func (s *ResetTokenStore) Spend(ctx context.Context, token string) (string, error) {
	email, err := s.client.GetDel(ctx, resetKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return email, nil
}
