package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	gametypes "github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/log"
	"github.com/cbodonnell/tabletop/pkg/messages"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores one row per game. A pool is used because every
// game actor persists independently.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = &PostgresRepository{}

// NewPostgresRepository connects to the database and applies the embedded migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %v", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %v", err)
	}
	log.Info("Connected to %s as %s", database, username)

	migrations, err := readMigrations("postgres")
	if err != nil {
		pool.Close()
		return nil, err
	}
	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) LoadGameState(ctx context.Context, gameID string) (*gametypes.GameState, error) {
	q := `
	SELECT state FROM game_states WHERE game_id = $1;
	`
	var b []byte
	if err := r.pool.QueryRow(ctx, q, gameID).Scan(&b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan game state: %v", err)
	}

	return messages.DeserializeGameState(b)
}

func (r *PostgresRepository) SaveGameState(ctx context.Context, gameID string, gameState *gametypes.GameState) error {
	b, err := messages.SerializeGameState(gameState)
	if err != nil {
		return fmt.Errorf("failed to serialize game state: %v", err)
	}

	q := `
	INSERT INTO game_states (game_id, state, updated_at) VALUES ($1, $2, $3)
	ON CONFLICT (game_id) DO UPDATE SET state = $2, updated_at = $3;
	`
	if _, err := r.pool.Exec(ctx, q, gameID, b, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to upsert game state: %v", err)
	}

	return nil
}
