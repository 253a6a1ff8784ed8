package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

// ErrTokenNotFound is returned for unknown, expired or revoked refresh tokens.
var ErrTokenNotFound = errors.New("refresh token not found")

const refreshKeyPrefix = "auth:refresh:"

// RefreshTokenRepository keeps refresh sessions in Redis. Entries expire with
// the token so revocation is a delete.
type RefreshTokenRepository struct {
	client redis.Cmdable
	logger *zap.Logger
}

// NewRefreshTokenRepository constructs the store.
func NewRefreshTokenRepository(client redis.Cmdable, logger *zap.Logger) *RefreshTokenRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshTokenRepository{client: client, logger: logger}
}

func refreshKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return refreshKeyPrefix + hex.EncodeToString(sum[:])
}

// Save stores the token until its expiry.
func (r *RefreshTokenRepository) Save(ctx context.Context, token *models.RefreshToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("refresh token already expired")
	}
	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal refresh token: %w", err)
	}
	if err := r.client.Set(ctx, refreshKey(token.Token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set refresh token: %w", err)
	}
	return nil
}

// Find loads a live refresh token.
func (r *RefreshTokenRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	raw, err := r.client.Get(ctx, refreshKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("redis get refresh token: %w", err)
	}
	var stored models.RefreshToken
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal refresh token: %w", err)
	}
	return &stored, nil
}

// Revoke deletes the token. Unknown tokens yield ErrTokenNotFound.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	removed, err := r.client.Del(ctx, refreshKey(token)).Result()
	if err != nil {
		return fmt.Errorf("redis delete refresh token: %w", err)
	}
	if removed == 0 {
		r.logger.Debug("refresh token already gone")
		return ErrTokenNotFound
	}
	return nil
}
