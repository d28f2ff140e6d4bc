// Package redisstore holds the Redis-backed adapters: short-lived
// verification codes that have no business in the durable store.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCodeNotFound = errors.New("verification code expired or never issued")

// OTPStore keeps one pending code per phone with a TTL enforced by Redis.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

func otpKey(phone string) string { return fmt.Sprintf("otp:%s", phone) }

func (s *OTPStore) Save(ctx context.Context, phone, code string) error {
	return s.client.Set(ctx, otpKey(phone), code, s.ttl).Err()
}

func (s *OTPStore) Get(ctx context.Context, phone string) (string, error) {
	code, err := s.client.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *OTPStore) Delete(ctx context.Context, phone string) error {
	return s.client.Del(ctx, otpKey(phone)).Err()
}
