package repositories

import (
	"context"
	"errors"
	"fmt"

	gametypes "github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/messages"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tabletop:game:"

// RedisRepository stores each game state under its own key. Retention is left
// to the server's eviction policy.
type RedisRepository struct {
	client *redis.Client
}

var _ Repository = &RedisRepository{}

func NewRedisRepository(ctx context.Context, connStr string) (*RedisRepository, error) {
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to reach redis: %v", err)
	}
	return NewRedisRepositoryFromClient(client), nil
}

// NewRedisRepositoryFromClient wraps an existing client.
func NewRedisRepositoryFromClient(client *redis.Client) *RedisRepository {
	return &RedisRepository{
		client: client,
	}
}

func redisKey(gameID string) string {
	return redisKeyPrefix + gameID
}

func (r *RedisRepository) Close(ctx context.Context) error {
	return r.client.Close()
}

func (r *RedisRepository) LoadGameState(ctx context.Context, gameID string) (*gametypes.GameState, error) {
	b, err := r.client.Get(ctx, redisKey(gameID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to get game state: %v", err)
	}

	return messages.DeserializeGameState(b)
}

func (r *RedisRepository) SaveGameState(ctx context.Context, gameID string, gameState *gametypes.GameState) error {
	b, err := messages.SerializeGameState(gameState)
	if err != nil {
		return fmt.Errorf("failed to serialize game state: %v", err)
	}

	if err := r.client.Set(ctx, redisKey(gameID), b, 0).Err(); err != nil {
		return fmt.Errorf("failed to set game state: %v", err)
	}

	return nil
}
