package brain

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"foodbot/domain/order"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis stores the registry as one JSON string value.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(cfg RedisConfig) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		key: Key,
	}
}

// Ping checks connectivity. Called once at startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Load(ctx context.Context) (map[string]order.Order, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]order.Order{}, nil
	}
	if err != nil {
		return nil, loadErr(err)
	}
	orders, err := Decode(data)
	if err != nil {
		return nil, loadErr(err)
	}
	return orders, nil
}

func (r *Redis) Save(ctx context.Context, orders map[string]order.Order) error {
	data, err := Encode(orders)
	if err != nil {
		return saveErr(err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return saveErr(err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
