package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gametypes "github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/messages"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = &SQLiteRepository{}

// NewSQLiteRepository opens the database at path and applies the embedded migrations.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// sqlite serializes writers anyway, and an in-memory database only
	// exists on the connection that created it
	db.SetMaxOpenConns(1)

	migrations, err := readMigrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) LoadGameState(ctx context.Context, gameID string) (*gametypes.GameState, error) {
	q := `
	SELECT state FROM game_states WHERE game_id = ?;
	`
	var b []byte
	if err := r.db.QueryRowContext(ctx, q, gameID).Scan(&b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan game state: %v", err)
	}

	return messages.DeserializeGameState(b)
}

func (r *SQLiteRepository) SaveGameState(ctx context.Context, gameID string, gameState *gametypes.GameState) error {
	b, err := messages.SerializeGameState(gameState)
	if err != nil {
		return fmt.Errorf("failed to serialize game state: %v", err)
	}

	q := `
	INSERT INTO game_states (game_id, state, updated_at) VALUES (?, ?, ?)
	ON CONFLICT (game_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at;
	`
	if _, err := r.db.ExecContext(ctx, q, gameID, b, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to upsert game state: %v", err)
	}

	return nil
}
