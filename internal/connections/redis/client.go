package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"cafe-ordering/internal/config"
	"cafe-ordering/internal/domain"
)

type Client struct {
	*redis.Client
}

func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	c := &Client{Client: redis.NewClient(opt)}
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return c, nil
}

// снимаем лок только если он всё ещё наш
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Acquire takes a single-writer lock on key. ErrLocked when someone else holds it.
func (c *Client) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := c.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLocked
	}
	return func() {
		_ = releaseScript.Run(context.Background(), c.Client, []string{key}, token).Err()
	}, nil
}

func sessionKey(id string) string { return "session:" + id }

func feedbackKey(id string) string { return "feedback:" + id }

func (c *Client) SaveSession(ctx context.Context, s *domain.CafeTableSession, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := c.Set(ctx, sessionKey(s.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to Redis: %w", err)
	}
	return nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*domain.CafeTableSession, error) {
	data, err := c.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NotFound("Session", id)
		}
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}
	var s domain.CafeTableSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// MarkFeedback sets the per-session feedback flag. False when it was already set.
func (c *Client) MarkFeedback(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	ok, err := c.SetNX(ctx, feedbackKey(sessionID), time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark feedback: %w", err)
	}
	return ok, nil
}

func (c *Client) ClearFeedback(ctx context.Context, sessionID string) error {
	return c.Del(ctx, feedbackKey(sessionID)).Err()
}
