package service

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// BalanceNotifier pushes balance changes to interested listeners.
// Best-effort: no delivery guarantee, and failures never surface to the
// transfer path.
type BalanceNotifier interface {
	PublishBalance(ctx context.Context, walletID uint, balance decimal.Decimal)
}

// RedisBalanceNotifier publishes balance updates on a per-wallet Redis
// channel; real-time clients subscribe to wallet:balance:<id>.
type RedisBalanceNotifier struct {
	rdb *redis.Client
}

// NewRedisBalanceNotifier wraps a Redis client.
func NewRedisBalanceNotifier(rdb *redis.Client) *RedisBalanceNotifier {
	return &RedisBalanceNotifier{rdb: rdb}
}

func (n *RedisBalanceNotifier) PublishBalance(ctx context.Context, walletID uint, balance decimal.Decimal) {
	channel := "wallet:balance:" + strconv.Itoa(int(walletID))
	if err := n.rdb.Publish(ctx, channel, balance.String()).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"wallet_id": walletID,
			"error":     err.Error(),
		}).Warn("Failed to publish balance update")
	}
}

// NopNotifier discards notifications; used when Redis is absent and in tests.
type NopNotifier struct{}

func (NopNotifier) PublishBalance(ctx context.Context, walletID uint, balance decimal.Decimal) {}
