package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oggyb/matchmaker/internal/config"
	"github.com/redis/go-redis/v9"
)

// LikedYouTTL is how long a cached "liked you" counter lives without reads.
const LikedYouTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// SetNX sets key only when it does not exist yet. Reports whether it was set.
func (c *RedisCache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return c.Client.SetNX(ctx, key, value, ttl).Result()
}

// TTL returns the remaining lifetime of key (negative when missing).
func (c *RedisCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.Client.TTL(ctx, key).Result()
}

// KeyForLikedYouCount generates Redis key for the number of pending likes a user received.
func (c *RedisCache) KeyForLikedYouCount(userID uint64) string {
	return fmt.Sprintf("likes:pending:count:%d", userID)
}

// KeyForOTP generates Redis key for the password-reset code record of an email.
func (c *RedisCache) KeyForOTP(email string) string {
	return "otp:code:" + email
}

// KeyForOTPCooldown generates Redis key that blocks resending a code too early.
func (c *RedisCache) KeyForOTPCooldown(email string) string {
	return "otp:cooldown:" + email
}

// KeyForUsedResetToken generates Redis key marking a reset token id as spent.
func (c *RedisCache) KeyForUsedResetToken(tokenID string) string {
	return "otp:reset:used:" + tokenID
}

// GetLikedYouCount reads a cached counter. ok is false on cache miss.
// A hit refreshes the TTL since the user is active.
func (c *RedisCache) GetLikedYouCount(ctx context.Context, userID uint64) (count int64, ok bool, err error) {
	key := c.KeyForLikedYouCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupt entry, treat as miss
		_ = c.Client.Del(ctx, key).Err()
		return 0, false, nil
	}
	_ = c.Client.Expire(ctx, key, LikedYouTTL).Err()
	return n, true, nil
}

func (c *RedisCache) SetLikedYouCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForLikedYouCount(userID), count, LikedYouTTL).Err()
}

// InvalidateLikedYouCount drops the cached counters; the next read recounts from DB.
func (c *RedisCache) InvalidateLikedYouCount(ctx context.Context, userIDs ...uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.KeyForLikedYouCount(id))
	}
	return c.Client.Del(ctx, keys...).Err()
}

// OTPRecord is what gets stored for an outstanding password-reset code.
type OTPRecord struct {
	Secret   string
	IssuedAt time.Time
}

// PutOTP stores the record under the email with the given TTL, replacing any previous one.
func (c *RedisCache) PutOTP(ctx context.Context, email string, rec OTPRecord, ttl time.Duration) error {
	key := c.KeyForOTP(email)
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "secret", rec.Secret, "issued_at", rec.IssuedAt.Unix())
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

// GetOTP returns the outstanding record. ok is false when none exists or it expired.
func (c *RedisCache) GetOTP(ctx context.Context, email string) (rec OTPRecord, ok bool, err error) {
	vals, err := c.Client.HGetAll(ctx, c.KeyForOTP(email)).Result()
	if err != nil {
		return OTPRecord{}, false, err
	}
	secret, issued := vals["secret"], vals["issued_at"]
	if secret == "" || issued == "" {
		return OTPRecord{}, false, nil
	}
	unix, err := strconv.ParseInt(issued, 10, 64)
	if err != nil {
		return OTPRecord{}, false, fmt.Errorf("corrupt otp record: %w", err)
	}
	return OTPRecord{Secret: secret, IssuedAt: time.Unix(unix, 0)}, true, nil
}

// ConsumeOTP deletes the record. Reports false if it was already gone,
// which makes a code single-use even under concurrent verification.
func (c *RedisCache) ConsumeOTP(ctx context.Context, email string) (bool, error) {
	n, err := c.Client.Del(ctx, c.KeyForOTP(email)).Result()
	return n > 0, err
}
