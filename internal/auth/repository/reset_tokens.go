package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	resetTokenPrefix = "pm:reset:"      // pm:reset:{token} -> user_id
	resetUserPrefix  = "pm:reset:user:" // pm:reset:user:{user_id} -> latest token
)

var ErrResetTokenNotFound = errors.New("reset token not found or expired")

// ResetTokenRepository keeps single-use password reset tokens in Redis.
type ResetTokenRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewResetTokenRepository(client redis.UniversalClient, ttl time.Duration) *ResetTokenRepository {
	return &ResetTokenRepository{client: client, ttl: ttl}
}

// Create issues a new token for userID. A previously issued token for the
// same user stops working.
func (r *ResetTokenRepository) Create(ctx context.Context, userID string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	prev, err := r.client.Get(ctx, resetUserPrefix+userID).Result()
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("failed to read previous reset token: %w", err)
	}

	pipe := r.client.TxPipeline()
	if prev != "" {
		pipe.Del(ctx, resetTokenPrefix+prev)
	}
	pipe.Set(ctx, resetTokenPrefix+token, userID, r.ttl)
	pipe.Set(ctx, resetUserPrefix+userID, token, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}
	return token, nil
}

// Consume returns the user the token was issued for and invalidates it.
func (r *ResetTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	userID, err := r.client.GetDel(ctx, resetTokenPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrResetTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume reset token: %w", err)
	}
	r.client.Del(ctx, resetUserPrefix+userID)
	return userID, nil
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
