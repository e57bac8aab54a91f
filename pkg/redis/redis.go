package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/bookshelf-backend/config"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "bookshelf:revoked:"

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", logger.Fields{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, logger.Fields{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

// TokenBlacklist records revoked token ids until their natural expiry.
type TokenBlacklist struct {
	rdb *redis.Client
}

func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rdb: rdb}
}

// Revoke stores the token id for the remaining lifetime of the token.
// Already expired tokens are ignored.
func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	logger.Debug("Revoking token", logger.Fields{
		"jti": tokenID,
		"ttl": ttl.String(),
	})

	if err := b.rdb.Set(ctx, blacklistPrefix+tokenID, "revoked", ttl).Err(); err != nil {
		logger.Error("Failed to revoke token", err, logger.Fields{"jti": tokenID})
		return err
	}
	return nil
}

// IsRevoked reports whether the token id has been revoked.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.rdb.Exists(ctx, blacklistPrefix+tokenID).Result()
	if err != nil {
		logger.Error("Failed to check token blacklist", err, logger.Fields{"jti": tokenID})
		return false, err
	}
	return n > 0, nil
}

// Ping is used by the readiness probe.
func (b *TokenBlacklist) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}
