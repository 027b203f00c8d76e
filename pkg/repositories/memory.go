package repositories

import (
	"context"
	"fmt"
	"sync"

	gametypes "github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/messages"
)

// InMemoryRepository keeps serialized records in a map. Records are stored
// encoded so callers never share memory with the repository.
type InMemoryRepository struct {
	lock    sync.RWMutex
	records map[string][]byte
}

var _ Repository = &InMemoryRepository{}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string][]byte),
	}
}

func (r *InMemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *InMemoryRepository) LoadGameState(ctx context.Context, gameID string) (*gametypes.GameState, error) {
	r.lock.RLock()
	b, ok := r.records[gameID]
	r.lock.RUnlock()
	if !ok {
		return nil, &ErrNotFound{}
	}
	return messages.DeserializeGameState(b)
}

func (r *InMemoryRepository) SaveGameState(ctx context.Context, gameID string, gameState *gametypes.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := messages.SerializeGameState(gameState)
	if err != nil {
		return fmt.Errorf("failed to serialize game state: %v", err)
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.records[gameID] = b
	return nil
}
