package publish

import (
	"context"
	"fmt"
	"time"

	"StockTrend/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

// KeyPrefix namespaces the series keys.
const KeyPrefix = "stocktrend:indicators:"

// setter is the subset of the redis client the sink uses.
type setter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

// RedisSink stores each series as a JSON string under KeyPrefix+symbol.
type RedisSink struct {
	rdb setter
	ttl time.Duration
	now func() time.Time
}

// NewRedisSink writes through rdb; a zero ttl keeps keys forever.
func NewRedisSink(rdb setter, ttl time.Duration) *RedisSink {
	return &RedisSink{rdb: rdb, ttl: ttl, now: time.Now}
}

// DialRedis connects to addr and verifies it answers.
func DialRedis(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (s *RedisSink) Name() string { return "redis" }

func Key(symbol string) string { return KeyPrefix + symbol }

func (s *RedisSink) Publish(ctx context.Context, symbol string, points []model.IndicatorPoint) error {
	data, err := encodeSeries(symbol, points, s.now())
	if err != nil {
		return fmt.Errorf("encode %s: %w", symbol, err)
	}
	if err := s.rdb.Set(ctx, Key(symbol), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", Key(symbol), err)
	}
	return nil
}
