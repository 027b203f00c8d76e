package repositories

import (
	"context"
	"fmt"
	"net/url"

	gametypes "github.com/cbodonnell/tabletop/pkg/game/types"
)

// Repository is the durable key-value store for game states. Keys are game
// IDs. A SaveGameState that returned nil must be visible to the next
// LoadGameState of the same key.
type Repository interface {
	Close(ctx context.Context) error
	// LoadGameState returns *ErrNotFound when no state was saved for gameID.
	LoadGameState(ctx context.Context, gameID string) (*gametypes.GameState, error)
	SaveGameState(ctx context.Context, gameID string, gameState *gametypes.GameState) error
}

// NewRepositoryFromURL picks the repository implementation from the scheme
// of connStr: memory://, sqlite://<path>, postgres(ql)://..., redis://...
func NewRepositoryFromURL(ctx context.Context, connStr string) (Repository, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %v", err)
	}

	switch u.Scheme {
	case "memory":
		return NewInMemoryRepository(), nil
	case "sqlite":
		path := u.Host + u.Path
		if path == "" {
			path = ":memory:"
		}
		repository, err := NewSQLiteRepository(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite repository: %v", err)
		}
		return repository, nil
	case "postgres", "postgresql":
		repository, err := NewPostgresRepository(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres repository: %v", err)
		}
		return repository, nil
	case "redis", "rediss":
		repository, err := NewRedisRepository(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis repository: %v", err)
		}
		return repository, nil
	default:
		return nil, fmt.Errorf("unknown database type %s", u.Scheme)
	}
}
