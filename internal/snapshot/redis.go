package snapshot

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
)

// Redis keeps the snapshot JSON document under a single key.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis returns a Redis adapter storing the snapshot under key.
func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: key}
}

func (r *Redis) Load(ctx context.Context) []model.Product {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			obs.Warn(ctx, "snapshot_unreadable", zap.String("backend", "redis"), zap.String("key", r.key), zap.Error(err))
		}
		return []model.Product{}
	}
	products, err := Decode(data)
	if err != nil {
		obs.Warn(ctx, "snapshot_corrupt", zap.String("backend", "redis"), zap.String("key", r.key), zap.Error(err))
		return []model.Product{}
	}
	return products
}

func (r *Redis) Save(ctx context.Context, products []model.Product) error {
	data, err := Encode(products)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return errors.Wrap(err, "save redis snapshot")
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
