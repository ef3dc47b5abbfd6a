package loyalty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefixAccount = "loyalty:account:"
	AccountCacheTTL  = 60 * time.Second
)

// AccountCache stores account snapshots between reads.
// Set never replaces a cached snapshot whose Version is the same or newer.
type AccountCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*Account, bool, error)
	Set(ctx context.Context, acc *Account) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// setIfNewer writes ARGV[1] unless the cached snapshot already carries version >= ARGV[2]
var setIfNewer = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
	local ok, cached = pcall(cjson.decode, current)
	if ok and type(cached) == 'table' and tonumber(cached.version) and tonumber(cached.version) >= tonumber(ARGV[2]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

type redisAccountCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisAccountCache returns nil when client is nil so reads go straight to the database
func NewRedisAccountCache(client *redis.Client, ttl time.Duration) AccountCache {
	if client == nil {
		return nil
	}
	return &redisAccountCache{redis: client, ttl: ttl}
}

func (c *redisAccountCache) Get(ctx context.Context, userID uuid.UUID) (*Account, bool, error) {
	raw, err := c.redis.Get(ctx, keyPrefixAccount+userID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached account: %w", err)
	}

	var acc Account
	if err := json.Unmarshal(raw, &acc); err != nil {
		return nil, false, fmt.Errorf("decode cached account: %w", err)
	}
	return &acc, true, nil
}

func (c *redisAccountCache) Set(ctx context.Context, acc *Account) error {
	raw, err := json.Marshal(acc)
	if err != nil {
		return err
	}
	keys := []string{keyPrefixAccount + acc.UserID.String()}
	if err := setIfNewer.Run(ctx, c.redis, keys, raw, acc.Version, c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("write cached account: %w", err)
	}
	return nil
}

func (c *redisAccountCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.redis.Del(ctx, keyPrefixAccount+userID.String()).Err()
}
